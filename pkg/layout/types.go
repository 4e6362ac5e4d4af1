// Package layout models the layout description of an application form: an
// ordered tree of field references and named sections, kept separate from the
// schema that describes the data.
package layout

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-applyform/pkg/schema"
)

// NodeType tags a layout node.
type NodeType string

const (
	TypeField   NodeType = "field"
	TypeSection NodeType = "section"
)

// Number is a section number as printed in the heading ("1", "2a"). It
// accepts JSON strings and numbers.
type Number string

// UnmarshalJSON accepts both string and numeric section numbers.
func (n *Number) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*n = Number(strings.TrimSpace(str))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("layout: section number must be a string or number: %w", err)
	}
	*n = Number(num.String())
	return nil
}

// Node is one entry of a layout tree. Field nodes point into the schema with a
// /properties/... JSON pointer; section nodes group ordered children under a
// heading.
type Node struct {
	Type NodeType `json:"type" yaml:"type"`

	// Definition is the schema pointer of a field node.
	Definition string `json:"definition,omitempty" yaml:"definition,omitempty"`
	// Widget forces a widget for a field node instead of inferring one.
	Widget string `json:"widget,omitempty" yaml:"widget,omitempty"`
	// Schema overlays keywords on the referenced definition (inline wins).
	Schema *schema.Object `json:"schema,omitempty" yaml:"schema,omitempty"`

	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Number   Number `json:"number,omitempty" yaml:"number,omitempty"`
	Children []Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Field returns a field node for the given definition pointer.
func Field(definition string) Node {
	return Node{Type: TypeField, Definition: definition}
}

// Section returns a section node wrapping children in order.
func Section(name, label string, children ...Node) Node {
	return Node{Type: TypeSection, Name: name, Label: label, Children: children}
}

// IsField reports whether the node references a schema field.
func (n Node) IsField() bool {
	return n.Type == TypeField
}

// IsSection reports whether the node groups children.
func (n Node) IsSection() bool {
	return n.Type == TypeSection
}

// Validate checks the structural shape of a layout tree. It does not resolve
// definitions against a schema; the field-tree builder does that.
func Validate(nodes []Node) error {
	return validateNodes(nodes, "")
}

func validateNodes(nodes []Node, location string) error {
	for idx, node := range nodes {
		at := fmt.Sprintf("%s[%d]", location, idx)
		switch node.Type {
		case TypeField:
			def := strings.TrimSpace(node.Definition)
			if def == "" {
				return fmt.Errorf("layout: field at %s has no definition", at)
			}
			if !strings.HasPrefix(def, "/properties/") {
				return fmt.Errorf("layout: field at %s definition %q must start with /properties/", at, def)
			}
			if len(node.Children) > 0 {
				return fmt.Errorf("layout: field at %s cannot have children", at)
			}
		case TypeSection:
			if strings.TrimSpace(node.Name) == "" {
				return fmt.Errorf("layout: section at %s has no name", at)
			}
			if err := validateNodes(node.Children, at+".children"); err != nil {
				return err
			}
		default:
			return fmt.Errorf("layout: node at %s has unsupported type %q", at, node.Type)
		}
	}
	return nil
}
