package schema

import (
	"dario.cat/mergo"
)

// Kind is the tag of a schema Node.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
	// KindNone marks pass-through containers (for example a bare allOf wrapper).
	KindNone Kind = ""
)

// Valid reports whether k is a known tag.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindNumber, KindInteger, KindBoolean, KindArray, KindObject, KindNone:
		return true
	default:
		return false
	}
}

// Numeric reports whether values of this kind are numbers.
func (k Kind) Numeric() bool {
	return k == KindNumber || k == KindInteger
}

// Property pairs a property name with its schema, keeping declaration order.
type Property struct {
	Name string
	Node *Node
}

// Conditional is one if/then pair of a conditional group. If and Then hold
// the subschema as written: an *Object or a boolean schema.
type Conditional struct {
	If   any `json:"if"`
	Then any `json:"then"`
}

// ConditionalFromPair copies the if/then members of pair.
func ConditionalFromPair(pair *Object) Conditional {
	ifValue, _ := pair.Get("if")
	thenValue, _ := pair.Get("then")
	return Conditional{If: cloneValue(ifValue), Then: cloneValue(thenValue)}
}

// IfObject returns the if subschema when it is an object.
func (c Conditional) IfObject() (*Object, bool) {
	obj, ok := c.If.(*Object)
	return obj, ok
}

// ThenObject returns the then subschema when it is an object.
func (c Conditional) ThenObject() (*Object, bool) {
	obj, ok := c.Then.(*Object)
	return obj, ok
}

// Clone deep-copies both subschemas.
func (c Conditional) Clone() Conditional {
	return Conditional{If: cloneValue(c.If), Then: cloneValue(c.Then)}
}

// Node is the typed form of one schema property.
type Node struct {
	Kind        Kind
	Nullable    bool
	Title       string
	Description string
	Format      string
	Pattern     string
	Enum        []any
	Default     any
	Const       any
	Required    []string
	MinLength   *int
	MaxLength   *int
	Minimum     *float64
	Maximum     *float64

	// Properties is only populated for objects.
	Properties []Property
	// Items is only populated for arrays.
	Items *Node
	// AllOf holds composition members kept in the schema, typically a single
	// wrapped definition.
	AllOf []*Node
	// Conditionals holds a conditional group attached to this node. It is
	// empty once the document went through conditional extraction.
	Conditionals []Conditional

	// Raw is the source fragment the node was parsed from.
	Raw *Object
}

// Property looks up a direct child property.
func (n *Node) Property(name string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	for _, prop := range n.Properties {
		if prop.Name == name {
			return prop.Node, true
		}
	}
	return nil, false
}

// IsRequired reports whether name is listed in the node's required set.
func (n *Node) IsRequired(name string) bool {
	if n == nil {
		return false
	}
	for _, required := range n.Required {
		if required == name {
			return true
		}
	}
	return false
}

// Effective folds a single-member allOf into the node. Keywords declared on
// the node itself win over the wrapped definition, so
// {allOf:[{type:string}], title:"Name"} reads as a string titled "Name".
func (n *Node) Effective() *Node {
	if n == nil || len(n.AllOf) != 1 {
		return n
	}
	base := n.AllOf[0].Effective().Clone()
	base.Raw = nil
	overlay := n.Clone()
	overlay.AllOf = nil
	if err := mergo.Merge(overlay, base); err != nil {
		return n
	}
	return overlay
}

// Clone returns a deep copy of the node tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Enum = append([]any(nil), n.Enum...)
	out.Required = append([]string(nil), n.Required...)
	if n.MinLength != nil {
		v := *n.MinLength
		out.MinLength = &v
	}
	if n.MaxLength != nil {
		v := *n.MaxLength
		out.MaxLength = &v
	}
	if n.Minimum != nil {
		v := *n.Minimum
		out.Minimum = &v
	}
	if n.Maximum != nil {
		v := *n.Maximum
		out.Maximum = &v
	}
	if len(n.Properties) > 0 {
		out.Properties = make([]Property, len(n.Properties))
		for idx, prop := range n.Properties {
			out.Properties[idx] = Property{Name: prop.Name, Node: prop.Node.Clone()}
		}
	}
	out.Items = n.Items.Clone()
	if len(n.AllOf) > 0 {
		out.AllOf = make([]*Node, len(n.AllOf))
		for idx, member := range n.AllOf {
			out.AllOf[idx] = member.Clone()
		}
	}
	if len(n.Conditionals) > 0 {
		out.Conditionals = make([]Conditional, len(n.Conditionals))
		for idx, cond := range n.Conditionals {
			out.Conditionals[idx] = cond.Clone()
		}
	}
	out.Raw = n.Raw.Clone()
	return &out
}
