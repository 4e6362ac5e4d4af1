package schema

// RequiredPaths lists the slash-joined property paths of required leaf fields
// (a/b). A required object expands to its own required children and is not
// listed itself. Conditional requirements are not evaluated.
func RequiredPaths(root *Node) []string {
	var out []string
	collectRequired(root, "", &out)
	return out
}

func collectRequired(node *Node, prefix string, out *[]string) {
	node = node.Effective()
	if node == nil {
		return
	}
	for _, name := range node.Required {
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		child, ok := node.Property(name)
		if !ok {
			// required without a matching property still marks the path
			*out = append(*out, path)
			continue
		}
		if child.Effective().Kind == KindObject {
			collectRequired(child, path, out)
			continue
		}
		*out = append(*out, path)
	}
}

// Condense flattens "properties" wrappers so nested fields can be addressed
// by property name alone: {properties:{a:{properties:{b:{...}}}}} becomes
// {a:{b:{...}}}. Other keywords are copied unchanged.
func Condense(obj *Object) *Object {
	out := NewObject()
	for _, key := range obj.Keys() {
		value, _ := obj.Get(key)
		if key == "properties" {
			if props, ok := value.(*Object); ok {
				condensed := Condense(props)
				for _, name := range condensed.Keys() {
					child, _ := condensed.Get(name)
					out.Set(name, child)
				}
				continue
			}
		}
		if child, ok := value.(*Object); ok {
			out.Set(key, Condense(child))
			continue
		}
		out.Set(key, cloneValue(value))
	}
	return out
}
