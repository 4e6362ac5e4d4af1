package formdata

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Encode flattens data into entries. Object keys are visited in sorted order,
// arrays in index order. Nil leaves produce no entry; empty objects and
// arrays are written as "{}" and "[]".
func Encode(data map[string]any, opts ...Option) []Entry {
	c := newCodec(opts)
	var entries []Entry
	c.encodeObject("", data, &entries)
	return entries
}

func (c *codec) join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + c.delimiter + key
}

func (c *codec) encodeObject(prefix string, obj map[string]any, out *[]Entry) {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		c.encodeValue(c.join(prefix, key), obj[key], out)
	}
}

func (c *codec) encodeValue(key string, value any, out *[]Entry) {
	switch typed := value.(type) {
	case nil:
	case map[string]any:
		if len(typed) == 0 {
			*out = append(*out, Entry{Key: key, Value: "{}"})
			return
		}
		c.encodeObject(key, typed, out)
	case []any:
		if len(typed) == 0 {
			*out = append(*out, Entry{Key: key, Value: "[]"})
			return
		}
		for idx, item := range typed {
			c.encodeValue(key+"["+strconv.Itoa(idx)+"]", item, out)
		}
	case []string:
		items := make([]any, len(typed))
		for idx, item := range typed {
			items[idx] = item
		}
		c.encodeValue(key, items, out)
	default:
		*out = append(*out, Entry{Key: key, Value: stringify(typed)})
	}
}

func stringify(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case int32:
		return strconv.FormatInt(int64(typed), 10)
	case json.Number:
		return typed.String()
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
