// Package validation runs submitted form data against the full form schema,
// conditional rules included, and reports the failures as field-addressed
// warnings.
package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/goliatone/go-applyform/pkg/schema"
)

// Warning is one validation failure. Field is a $.a.b path to the object that
// failed; required-property failures point at the parent object and name the
// property in Message.
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Value   any    `json:"value,omitempty"`
}

// SchemaIssue represents a schema authoring error with optional location
// metadata.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult captures the outcome of CheckSchema.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// Validate checks data against doc. doc should be the unpruned schema so the
// if/then groups are evaluated. Failures come back as warnings; the error is
// reserved for schemas the validator cannot compile.
func Validate(doc *schema.Object, data map[string]any) ([]Warning, error) {
	compiled, err := compile(doc)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	result, err := compiled.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validation: validate data: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	warnings := make([]Warning, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		warnings = append(warnings, warningFromResult(resultErr))
	}
	return warnings, nil
}

// CheckSchema reports whether doc can drive a form: it must parse into a
// schema tree and compile as a draft-7 schema.
func CheckSchema(doc *schema.Object) SchemaValidationResult {
	result := SchemaValidationResult{Valid: true}
	if _, err := schema.Parse(doc); err != nil {
		result.Valid = false
		result.Issues = append(result.Issues, issueFromError(err))
	}
	if _, err := compile(doc); err != nil {
		result.Valid = false
		result.Issues = append(result.Issues, issueFromError(err))
	}
	return result
}

func compile(doc *schema.Object) (*gojsonschema.Schema, error) {
	if doc == nil {
		return nil, errors.New("validation: schema is nil")
	}
	raw := doc.ToMap()
	// the draft is pinned below; an unknown $schema URL would fail compilation
	delete(raw, "$schema")

	loader := gojsonschema.NewSchemaLoader()
	loader.Draft = gojsonschema.Draft7
	loader.AutoDetect = false
	compiled, err := loader.Compile(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema: %w", err)
	}
	return compiled, nil
}

func warningFromResult(resultErr gojsonschema.ResultError) Warning {
	warning := Warning{
		Field:   contextToPath(resultErr.Context()),
		Type:    resultErr.Type(),
		Message: resultErr.Description(),
		Value:   resultErr.Value(),
	}
	details := resultErr.Details()
	switch resultErr.Type() {
	case "required":
		if property, ok := details["property"].(string); ok {
			warning.Message = fmt.Sprintf("'%s' is a required property", property)
			warning.Value = nil
		}
	case "array_min_items":
		if fmt.Sprint(details["min"]) == "1" {
			warning.Message = "[] should be non-empty"
		}
	}
	return warning
}

// contextSeparator splits gojsonschema contexts without breaking property
// names that contain dots.
const contextSeparator = "\x00"

// contextToPath turns a gojsonschema context such as (root).items.0.label
// into $.items[0].label, naming properties the way schema.PointerToPath does.
func contextToPath(ctx *gojsonschema.JsonContext) string {
	if ctx == nil {
		return "$"
	}
	path := "$"
	for _, part := range strings.Split(ctx.String(contextSeparator), contextSeparator) {
		if part == "" || part == gojsonschema.STRING_CONTEXT_ROOT {
			continue
		}
		if _, err := strconv.Atoi(part); err == nil {
			path += "[" + part + "]"
			continue
		}
		path = schema.AppendPathName(path, part)
	}
	return path
}

func issueFromError(err error) SchemaIssue {
	if err == nil {
		return SchemaIssue{Message: "unknown error"}
	}
	var malformed *schema.MalformedError
	if errors.As(err, &malformed) {
		return SchemaIssue{
			Path:    malformed.Path,
			Field:   fieldPathFromPointer(malformed.Path),
			Message: strings.TrimSpace(malformed.Reason),
		}
	}

	msg := strings.TrimSpace(err.Error())
	msg = strings.TrimPrefix(msg, "validation: ")
	return SchemaIssue{Message: msg}
}

// fieldPathFromPointer keeps the property names of a schema pointer, dotted.
// Composition indexes and keywords are skipped.
func fieldPathFromPointer(pointer string) string {
	tokens, err := schema.ParsePointer(pointer)
	if err != nil || len(tokens) == 0 {
		return ""
	}

	out := make([]string, 0, len(tokens))
	for idx := 0; idx < len(tokens); idx++ {
		switch tokens[idx] {
		case "properties":
			if idx+1 < len(tokens) {
				out = append(out, tokens[idx+1])
				idx++
			}
		case "items":
			out = append(out, "items")
		case "oneOf", "anyOf", "allOf":
			if idx+1 < len(tokens) && isNumeric(tokens[idx+1]) {
				idx++
			}
		}
	}
	return strings.Join(out, ".")
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
