package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// FromOpenAPI extracts a named component schema from an OpenAPI document and
// returns it as a dereferenced Object. Local references are inlined; recursive
// components are rejected because a form tree must be finite. Property order
// follows the encoder (alphabetical) since OpenAPI maps carry no order.
func FromOpenAPI(ctx context.Context, doc Document, component string) (*Object, error) {
	component = strings.TrimSpace(component)
	if component == "" {
		return nil, fmt.Errorf("schema: component name is required (%s)", doc.Location())
	}

	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("schema: load openapi %s: %w", doc.Location(), err)
	}
	if spec.Components == nil || spec.Components.Schemas == nil {
		return nil, fmt.Errorf("schema: openapi %s declares no component schemas", doc.Location())
	}
	ref, ok := spec.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("schema: component %q not found in %s", component, doc.Location())
	}

	if err := inlineRefs(ref, make(map[*openapi3.Schema]struct{}), "#/components/schemas/"+component); err != nil {
		return nil, err
	}

	data, err := json.Marshal(ref.Value)
	if err != nil {
		return nil, fmt.Errorf("schema: encode component %q: %w", component, err)
	}
	return DecodeObject(data)
}

func inlineRefs(ref *openapi3.SchemaRef, stack map[*openapi3.Schema]struct{}, path string) error {
	if ref == nil || ref.Value == nil {
		return nil
	}
	value := ref.Value
	if _, cycling := stack[value]; cycling {
		return Malformed(path, "recursive schema reference %q", ref.Ref)
	}
	ref.Ref = ""
	stack[value] = struct{}{}
	defer delete(stack, value)

	for name, prop := range value.Properties {
		if err := inlineRefs(prop, stack, path+"/properties/"+EscapeToken(name)); err != nil {
			return err
		}
	}
	if err := inlineRefs(value.Items, stack, path+"/items"); err != nil {
		return err
	}
	if err := inlineRefs(value.Not, stack, path+"/not"); err != nil {
		return err
	}
	if err := inlineRefs(value.AdditionalProperties.Schema, stack, path+"/additionalProperties"); err != nil {
		return err
	}
	for keyword, list := range map[string]openapi3.SchemaRefs{
		"allOf": value.AllOf,
		"anyOf": value.AnyOf,
		"oneOf": value.OneOf,
	} {
		for idx, member := range list {
			if err := inlineRefs(member, stack, fmt.Sprintf("%s/%s/%d", path, keyword, idx)); err != nil {
				return err
			}
		}
	}
	return nil
}
