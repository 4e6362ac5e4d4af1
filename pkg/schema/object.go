package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Object is a JSON object that keeps its keys in document order. Schema
// documents are decoded into Objects so property order, which drives render
// order, survives every transformation. Values are *Object, []any, string,
// float64, bool, or nil.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// ObjectFromMap converts a plain map (and any nested maps) into an Object.
// Keys are sorted because map iteration order carries no meaning.
func ObjectFromMap(src map[string]any) *Object {
	out := NewObject()
	keys := make([]string, 0, len(src))
	for key := range src {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		out.Set(key, fromPlain(src[key]))
	}
	return out
}

func fromPlain(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return ObjectFromMap(typed)
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = fromPlain(item)
		}
		return out
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	default:
		return value
	}
}

// Len reports the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in document order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	value, ok := o.values[key]
	return value, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores value under key. New keys are appended; existing keys keep their
// position.
func (o *Object) Set(key string, value any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Delete removes key if present.
func (o *Object) Delete(key string) {
	if o == nil {
		return
	}
	if _, exists := o.values[key]; !exists {
		return
	}
	delete(o.values, key)
	for idx, existing := range o.keys {
		if existing == key {
			o.keys = append(o.keys[:idx:idx], o.keys[idx+1:]...)
			break
		}
	}
}

// StringValue reads key as a trimmed string, returning "" for other types.
func (o *Object) StringValue(key string) string {
	value, _ := o.Get(key)
	str, _ := value.(string)
	return strings.TrimSpace(str)
}

// Object reads key as a nested Object.
func (o *Object) Object(key string) (*Object, bool) {
	value, _ := o.Get(key)
	obj, ok := value.(*Object)
	return obj, ok && obj != nil
}

// Clone returns a deep copy.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	out := &Object{
		keys:   append([]string(nil), o.keys...),
		values: make(map[string]any, len(o.values)),
	}
	for key, value := range o.values {
		out.values[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case *Object:
		return typed.Clone()
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}

// Equal reports whether both objects hold the same keys and values. Key order
// is ignored, matching JSON object semantics.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for _, key := range o.Keys() {
		left, _ := o.Get(key)
		right, ok := other.Get(key)
		if !ok || !equalValue(left, right) {
			return false
		}
	}
	return true
}

func equalValue(left, right any) bool {
	switch typed := left.(type) {
	case *Object:
		other, ok := right.(*Object)
		return ok && typed.Equal(other)
	case []any:
		other, ok := right.([]any)
		if !ok || len(typed) != len(other) {
			return false
		}
		for idx := range typed {
			if !equalValue(typed[idx], other[idx]) {
				return false
			}
		}
		return true
	default:
		return left == right
	}
}

// ToMap converts the Object into plain maps for consumers that expect
// encoding/json shaped values.
func (o *Object) ToMap() map[string]any {
	if o == nil {
		return nil
	}
	out := make(map[string]any, len(o.keys))
	for _, key := range o.keys {
		out[key] = toPlain(o.values[key])
	}
	return out
}

func toPlain(value any) any {
	switch typed := value.(type) {
	case *Object:
		return typed.ToMap()
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = toPlain(item)
		}
		return out
	default:
		return value
	}
}

// MarshalJSON encodes the object preserving key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, key := range o.keys {
		if idx > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		encodedValue, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, fmt.Errorf("schema: encode %q: %w", key, err)
		}
		buf.Write(encodedValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("schema: decode object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("schema: document root must be an object")
	}
	decoded, err := decodeJSONObject(dec)
	if err != nil {
		return err
	}
	*o = *decoded
	return nil
}

func decodeJSONObject(dec *json.Decoder) (*Object, error) {
	out := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("schema: decode object: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("schema: object key must be a string, got %v", tok)
		}
		value, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("schema: decode object: %w", err)
	}
	return out, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("schema: unexpected end of document")
		}
		return nil, fmt.Errorf("schema: decode value: %w", err)
	}
	switch typed := tok.(type) {
	case json.Delim:
		switch typed {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			list := make([]any, 0)
			for dec.More() {
				item, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("schema: decode array: %w", err)
			}
			return list, nil
		default:
			return nil, fmt.Errorf("schema: unexpected delimiter %q", typed)
		}
	default:
		return typed, nil
	}
}

// UnmarshalYAML decodes a YAML mapping preserving key order.
func (o *Object) UnmarshalYAML(node *yaml.Node) error {
	value, err := decodeYAMLNode(node)
	if err != nil {
		return err
	}
	decoded, ok := value.(*Object)
	if !ok {
		return fmt.Errorf("schema: yaml line %d: document root must be a mapping", node.Line)
	}
	*o = *decoded
	return nil
}

func decodeYAMLNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return decodeYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return decodeYAMLNode(node.Alias)
	case yaml.MappingNode:
		out := NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			value, err := decodeYAMLNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			out.Set(keyNode.Value, value)
		}
		return out, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := decodeYAMLNode(child)
			if err != nil {
				return nil, err
			}
			list = append(list, item)
		}
		return list, nil
	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("schema: yaml line %d: %w", node.Line, err)
		}
		return fromPlain(value), nil
	default:
		return nil, fmt.Errorf("schema: yaml line %d: unsupported node kind %d", node.Line, node.Kind)
	}
}

// DecodeObject parses a JSON or YAML payload into an Object. JSON is tried
// first when the payload starts with '{'.
func DecodeObject(data []byte) (*Object, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("schema: document is empty")
	}
	out := NewObject()
	if trimmed[0] == '{' {
		if err := out.UnmarshalJSON(trimmed); err == nil {
			return out, nil
		}
	}
	if err := yaml.Unmarshal(trimmed, out); err != nil {
		return nil, fmt.Errorf("schema: parse document: %w", err)
	}
	return out, nil
}
