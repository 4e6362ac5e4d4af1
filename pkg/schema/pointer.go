package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// EscapeToken escapes a property name for use inside a JSON pointer.
func EscapeToken(token string) string {
	return pointerEscaper.Replace(token)
}

// ParsePointer splits a JSON pointer into unescaped reference tokens. The
// empty pointer addresses the root and yields no tokens.
func ParsePointer(pointer string) ([]string, error) {
	pointer = strings.TrimSpace(pointer)
	pointer = strings.TrimPrefix(pointer, "#")
	if pointer == "" {
		return nil, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("schema: invalid JSON pointer %q", pointer)
	}
	parts := strings.Split(pointer[1:], "/")
	for idx, part := range parts {
		parts[idx] = pointerUnescaper.Replace(part)
	}
	return parts, nil
}

// PropertyNames returns the property names addressed by a /properties/...
// pointer, skipping the "properties" and "items" keywords.
func PropertyNames(pointer string) ([]string, error) {
	tokens, err := ParsePointer(pointer)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tokens)/2)
	for idx := 0; idx < len(tokens); idx++ {
		switch tokens[idx] {
		case "properties":
			if idx+1 >= len(tokens) {
				return nil, fmt.Errorf("schema: pointer %q ends after properties", pointer)
			}
			names = append(names, tokens[idx+1])
			idx++
		case "items":
		default:
			return nil, fmt.Errorf("schema: pointer %q has unexpected token %q", pointer, tokens[idx])
		}
	}
	return names, nil
}

// Resolve walks a /properties/<name> (and /items) pointer from n. Wrapped
// single-member allOf nodes are looked through on the way.
func (n *Node) Resolve(pointer string) (*Node, error) {
	tokens, err := ParsePointer(pointer)
	if err != nil {
		return nil, err
	}
	current := n
	for idx := 0; idx < len(tokens); idx++ {
		if current == nil {
			return nil, fmt.Errorf("schema: pointer %q does not resolve", pointer)
		}
		current = current.Effective()
		switch tokens[idx] {
		case "properties":
			if idx+1 >= len(tokens) {
				return nil, fmt.Errorf("schema: pointer %q ends after properties", pointer)
			}
			name := tokens[idx+1]
			child, ok := current.Property(name)
			if !ok {
				return nil, fmt.Errorf("schema: property %q not found for pointer %q", name, pointer)
			}
			current = child
			idx++
		case "items":
			if current.Items == nil {
				return nil, fmt.Errorf("schema: pointer %q addresses items of a non-array", pointer)
			}
			current = current.Items
		default:
			return nil, fmt.Errorf("schema: pointer %q has unexpected token %q", pointer, tokens[idx])
		}
	}
	return current, nil
}

// Lookup follows property names (no "properties" keywords) from n.
func (n *Node) Lookup(names ...string) (*Node, bool) {
	current := n
	for _, name := range names {
		if current == nil {
			return nil, false
		}
		child, ok := current.Effective().Property(name)
		if !ok {
			return nil, false
		}
		current = child
	}
	return current, current != nil
}

var jsonPathSpecial = regexp.MustCompile(`[\s~!@#$%^&*()+\-=\[\]{};':"\\|,.<>/?]`)

// PointerToPath converts /properties/a/properties/b into the $.a.b path used
// by validation messages. Names with special characters use bracket notation.
func PointerToPath(pointer string) string {
	names, err := PropertyNames(pointer)
	if err != nil || len(names) == 0 {
		return "$"
	}
	path := "$"
	for _, name := range names {
		path = AppendPathName(path, name)
	}
	return path
}

// AppendPathName adds a property step to a $-rooted path: .name, or
// ['name'] when the name holds characters a dotted path cannot carry.
func AppendPathName(path, name string) string {
	if jsonPathSpecial.MatchString(name) {
		return path + "['" + name + "']"
	}
	return path + "." + name
}

// FieldName joins the property names of a definition pointer with the
// submission delimiter, producing the form control name (a--b).
func FieldName(pointer, delimiter string) string {
	names, err := PropertyNames(pointer)
	if err != nil {
		return ""
	}
	return strings.Join(names, delimiter)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
