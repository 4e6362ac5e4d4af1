// Package fieldtree joins a layout with a pruned schema and the current form
// data, producing the ordered tree of fields and sections a renderer walks.
package fieldtree

import (
	"github.com/goliatone/go-applyform/pkg/schema"
	"github.com/goliatone/go-applyform/pkg/widgets"
)

// Kind tags a field-tree node.
type Kind string

const (
	KindField   Kind = "field"
	KindSection Kind = "section"
)

// Choice is one entry of a select, multi-select, or radio control.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Node is a resolved field or section. Trees are rebuilt on every pass and
// never mutated after Build returns.
type Node struct {
	Kind Kind `json:"kind"`

	// Field nodes.
	Name        string       `json:"name,omitempty"`
	ID          string       `json:"id,omitempty"`
	Definition  string       `json:"definition,omitempty"`
	Path        string       `json:"path,omitempty"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Widget      string       `json:"widget,omitempty"`
	Value       any          `json:"value,omitempty"`
	Errors      []string     `json:"errors,omitempty"`
	Required    bool         `json:"required,omitempty"`
	Disabled    bool         `json:"disabled,omitempty"`
	MinLength   *int         `json:"minLength,omitempty"`
	MaxLength   *int         `json:"maxLength,omitempty"`
	Options     []Choice     `json:"options,omitempty"`
	EmptyLabel  string       `json:"emptyLabel,omitempty"`
	Schema      *schema.Node `json:"-"`

	// Section nodes.
	Label    string `json:"label,omitempty"`
	Number   string `json:"number,omitempty"`
	Anchor   string `json:"anchor,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// IsField reports whether n is a resolved field.
func (n Node) IsField() bool { return n.Kind == KindField }

// IsSection reports whether n is a resolved section.
func (n Node) IsSection() bool { return n.Kind == KindSection }

// Fields flattens a tree into its fields in render order.
func Fields(nodes []Node) []Node {
	var out []Node
	for _, node := range nodes {
		if node.IsSection() {
			out = append(out, Fields(node.Children)...)
			continue
		}
		out = append(out, node)
	}
	return out
}

// ForPrint returns a copy of nodes with every field rendered read-only:
// attachment widgets become PrintAttachment and everything else Print.
func ForPrint(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for idx, node := range nodes {
		if node.IsSection() {
			node.Children = ForPrint(node.Children)
		} else {
			node.Widget = widgets.PrintVariant(node.Widget)
		}
		out[idx] = node
	}
	return out
}
