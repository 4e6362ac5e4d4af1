package fieldtree

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-applyform/pkg/layout"
	"github.com/goliatone/go-applyform/pkg/schema"
	"github.com/goliatone/go-applyform/pkg/validation"
)

// FieldWarning is a validation warning matched to a layout field and
// rewritten for display.
type FieldWarning struct {
	validation.Warning
	Formatted  string `json:"formatted"`
	HTMLField  string `json:"htmlField"`
	Definition string `json:"definition"`
}

// CollectWarnings matches warnings to the layout's fields and returns them in
// layout order for an error summary. Warnings no field claims are left out.
func CollectWarnings(nodes []layout.Node, root *schema.Node, warnings []validation.Warning, opts ...Option) ([]FieldWarning, error) {
	if root == nil {
		return nil, schema.Malformed("", "schema is nil")
	}
	all := make([]Option, 0, len(opts)+1)
	all = append(all, opts...)
	b := newBuilder(root, append(all, WithWarnings(warnings)))
	var out []FieldWarning
	if err := b.collect(nodes, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *builder) collect(nodes []layout.Node, location string, out *[]FieldWarning) error {
	for idx, node := range nodes {
		at := fmt.Sprintf("%s[%d]", location, idx)
		switch node.Type {
		case layout.TypeSection:
			if err := b.collect(node.Children, at+".children", out); err != nil {
				return err
			}
		case layout.TypeField:
			res, err := b.resolve(node, at)
			if err != nil {
				return err
			}
			*out = append(*out, b.fieldWarnings(res)...)
		}
	}
	return nil
}

// requiredType is the validator's error type for a missing property. Those
// errors are raised on the parent object, including ones a conditional then
// group imposes.
const requiredType = "required"

// fieldWarnings returns the warnings addressed directly at the field's path,
// or failing that, a required-property warning raised on its parent object
// that names the field.
func (b *builder) fieldWarnings(res resolved) []FieldWarning {
	if len(b.warnings) == 0 {
		return nil
	}
	path := schema.PointerToPath(res.definition)
	fieldName := res.names[len(res.names)-1]
	htmlField := strings.Join(res.names, b.delimiter)

	var out []FieldWarning
	for _, warning := range b.warnings {
		if warning.Field != path {
			continue
		}
		out = append(out, FieldWarning{
			Warning:    warning,
			Formatted:  formatWarning(warning.Message, fieldName, res.schema.Title),
			HTMLField:  htmlField,
			Definition: res.definition,
		})
	}
	if len(out) > 0 {
		return out
	}

	parentNames := res.names[:len(res.names)-1]
	parent, ok := b.root.Lookup(parentNames...)
	if !ok {
		return nil
	}
	parent = parent.Effective()
	parentPath := pathFromNames(parentNames)
	quoted := "'" + fieldName + "'"
	for _, warning := range b.warnings {
		if warning.Field != parentPath || warning.Type != requiredType || !strings.Contains(warning.Message, quoted) {
			continue
		}
		formatted := formatWarning(warning.Message, fieldName, res.schema.Title)
		if title := plainText(parent.Title); title != "" {
			formatted = title + " " + formatted
		}
		return []FieldWarning{{
			Warning:    warning,
			Formatted:  formatted,
			HTMLField:  htmlField,
			Definition: res.definition,
		}}
	}
	return nil
}

func pathFromNames(names []string) string {
	if len(names) == 0 {
		return "$"
	}
	pointer := ""
	for _, name := range names {
		pointer += "/properties/" + schema.EscapeToken(name)
	}
	return schema.PointerToPath(pointer)
}

// formatWarning rewrites validator messages for display: the property name
// becomes the field title and the stock phrasing is shortened.
func formatWarning(message, fieldName, title string) string {
	display := strings.Replace(plainText(title), "?", "", 1)
	if display == "" {
		display = "Field"
	}
	msg := strings.Replace(message, fieldName, display, 1)
	msg = strings.ReplaceAll(msg, "'", "")
	msg = strings.Replace(msg, "[] should be non-empty", display+" is required", 1)
	msg = strings.Replace(msg, "is a required property", "is required", 1)
	return msg
}
