package schema

import (
	"math"
	"strings"
)

// IsConditionalPair reports whether value is an object holding exactly the
// keys "if" and "then".
func IsConditionalPair(value any) bool {
	obj, ok := value.(*Object)
	if !ok || obj.Len() != 2 {
		return false
	}
	return obj.Has("if") && obj.Has("then")
}

// Parse converts a dereferenced schema document into a typed Node tree.
// Unresolved $ref entries, non-list allOf values, and arrays without items are
// reported as MalformedError.
func Parse(doc *Object) (*Node, error) {
	if doc == nil {
		return nil, Malformed("", "schema is nil")
	}
	return parseNode(doc, "")
}

func parseNode(obj *Object, path string) (*Node, error) {
	if ref := obj.StringValue("$ref"); ref != "" {
		return nil, Malformed(path, "unresolved $ref %q", ref)
	}

	node := &Node{
		Title:       obj.StringValue("title"),
		Description: obj.StringValue("description"),
		Format:      obj.StringValue("format"),
		Raw:         obj,
	}
	node.Default, _ = obj.Get("default")
	node.Const, _ = obj.Get("const")
	if pattern, ok := obj.Get("pattern"); ok {
		str, ok := pattern.(string)
		if !ok {
			return nil, Malformed(path, "pattern must be a string")
		}
		node.Pattern = str
	}

	if err := parseType(node, obj, path); err != nil {
		return nil, err
	}

	if raw, ok := obj.Get("enum"); ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, Malformed(path, "enum must be an array")
		}
		node.Enum = append([]any(nil), list...)
	}

	if raw, ok := obj.Get("required"); ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, Malformed(path, "required must be an array")
		}
		for idx, item := range list {
			name, ok := item.(string)
			if !ok || strings.TrimSpace(name) == "" {
				return nil, Malformed(path, "required[%d] must be a string", idx)
			}
			node.Required = append(node.Required, name)
		}
	}

	var err error
	if node.MinLength, err = readInt(obj, "minLength", path); err != nil {
		return nil, err
	}
	if node.MaxLength, err = readInt(obj, "maxLength", path); err != nil {
		return nil, err
	}
	if node.Minimum, err = readFloat(obj, "minimum", path); err != nil {
		return nil, err
	}
	if node.Maximum, err = readFloat(obj, "maximum", path); err != nil {
		return nil, err
	}

	if raw, ok := obj.Get("properties"); ok {
		props, ok := raw.(*Object)
		if !ok {
			return nil, Malformed(path, "properties must be an object")
		}
		for _, name := range props.Keys() {
			value, _ := props.Get(name)
			childPath := path + "/properties/" + EscapeToken(name)
			child, ok := value.(*Object)
			if !ok {
				return nil, Malformed(childPath, "property schema must be an object")
			}
			parsed, err := parseNode(child, childPath)
			if err != nil {
				return nil, err
			}
			node.Properties = append(node.Properties, Property{Name: name, Node: parsed})
		}
	}

	if raw, ok := obj.Get("items"); ok {
		itemPath := path + "/items"
		var itemObj *Object
		switch typed := raw.(type) {
		case *Object:
			itemObj = typed
		case []any:
			// tuple validation: the first entry describes the rendered element
			if len(typed) > 0 {
				itemObj, _ = typed[0].(*Object)
			}
			itemPath += "/0"
		}
		if itemObj == nil {
			return nil, Malformed(itemPath, "items must be a schema object")
		}
		items, err := parseNode(itemObj, itemPath)
		if err != nil {
			return nil, err
		}
		node.Items = items
	}

	if raw, ok := obj.Get("allOf"); ok {
		if err := parseAllOf(node, raw, path+"/allOf"); err != nil {
			return nil, err
		}
	}

	switch {
	case node.Kind == KindNone && len(node.Properties) > 0:
		node.Kind = KindObject
	case node.Kind == KindNone && node.Items != nil:
		node.Kind = KindArray
	}
	if node.Kind == KindArray && node.Items == nil {
		return nil, Malformed(path, "array schema has no items")
	}
	return node, nil
}

func parseType(node *Node, obj *Object, path string) error {
	raw, ok := obj.Get("type")
	if !ok {
		return nil
	}
	var candidates []string
	switch typed := raw.(type) {
	case string:
		candidates = []string{typed}
	case []any:
		for _, entry := range typed {
			str, ok := entry.(string)
			if !ok {
				return Malformed(path, "type entries must be strings")
			}
			candidates = append(candidates, str)
		}
	default:
		return Malformed(path, "type must be a string or an array of strings")
	}
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "null" {
			node.Nullable = true
			continue
		}
		kind := Kind(candidate)
		if kind == KindNone || !kind.Valid() {
			return Malformed(path, "unsupported type %q", candidate)
		}
		if node.Kind == KindNone {
			node.Kind = kind
		}
	}
	return nil
}

func parseAllOf(node *Node, raw any, path string) error {
	list, ok := raw.([]any)
	if !ok {
		return Malformed(path, "allOf must be an array")
	}
	if len(list) == 0 {
		return Malformed(path, "allOf must not be empty")
	}

	pairs := len(list) > 1
	for _, entry := range list {
		if !IsConditionalPair(entry) {
			pairs = false
			break
		}
	}
	if pairs {
		for _, entry := range list {
			node.Conditionals = append(node.Conditionals, ConditionalFromPair(entry.(*Object)))
		}
		return nil
	}

	for idx, entry := range list {
		member, ok := entry.(*Object)
		if !ok {
			return Malformed(path, "allOf[%d] must be an object", idx)
		}
		parsed, err := parseNode(member, path+"/"+itoa(idx))
		if err != nil {
			return err
		}
		node.AllOf = append(node.AllOf, parsed)
	}
	return nil
}

func readInt(obj *Object, key, path string) (*int, error) {
	raw, ok := obj.Get(key)
	if !ok {
		return nil, nil
	}
	value, ok := raw.(float64)
	if !ok || value != math.Trunc(value) {
		return nil, Malformed(path, "%s must be an integer", key)
	}
	out := int(value)
	return &out, nil
}

func readFloat(obj *Object, key, path string) (*float64, error) {
	raw, ok := obj.Get(key)
	if !ok {
		return nil, nil
	}
	value, ok := raw.(float64)
	if !ok {
		return nil, Malformed(path, "%s must be a number", key)
	}
	return &value, nil
}
