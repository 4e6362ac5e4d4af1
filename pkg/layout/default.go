package layout

import "github.com/goliatone/go-applyform/pkg/schema"

// FromSchema derives a layout listing every top-level property of root as a
// field, in declaration order. Forms shipped without a layout file use it.
func FromSchema(root *schema.Node) []Node {
	root = root.Effective()
	if root == nil {
		return nil
	}
	nodes := make([]Node, 0, len(root.Properties))
	for _, prop := range root.Properties {
		nodes = append(nodes, Field("/properties/"+schema.EscapeToken(prop.Name)))
	}
	return nodes
}
