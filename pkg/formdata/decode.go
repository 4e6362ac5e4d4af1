package formdata

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-applyform/pkg/schema"
)

var indexSuffix = regexp.MustCompile(`\[(\d+)\]$`)

// step is one move along a decoded key: an object key or an array index.
type step struct {
	key   string
	index int
	isIdx bool
}

// Decode rebuilds nested data from entries, coercing leaves with the schema
// node found at the same path. Entries with out-of-range indexes are dropped;
// Decode itself never fails. Absent keys never appear in the result.
func Decode(entries []Entry, root *schema.Node, opts ...Option) map[string]any {
	c := newCodec(opts)
	return c.decode(entries, root)
}

func (c *codec) decode(entries []Entry, root *schema.Node) map[string]any {
	result := map[string]any{}
	for _, entry := range entries {
		steps, ok := c.parseKey(entry.Key)
		if !ok {
			c.logger.Warn("dropping form entry", zap.String("key", entry.Key))
			continue
		}
		node := nodeAt(root, steps)
		raw := entry.Value
		updated := setPath(result, steps, func(existing any) any {
			return merge(existing, Coerce(node, raw))
		})
		result = updated.(map[string]any)
	}
	return result
}

// parseKey splits "tasks[1]--title" into [tasks, 1, title].
func (c *codec) parseKey(key string) ([]step, bool) {
	if strings.TrimSpace(key) == "" {
		return nil, false
	}
	var steps []step
	for _, part := range strings.Split(key, c.delimiter) {
		var indexes []int
		for {
			match := indexSuffix.FindStringSubmatchIndex(part)
			if match == nil {
				break
			}
			idx, err := strconv.Atoi(part[match[2]:match[3]])
			if err != nil || idx > c.maxIndex {
				return nil, false
			}
			indexes = append([]int{idx}, indexes...)
			part = part[:match[0]]
		}
		if part == "" {
			return nil, false
		}
		steps = append(steps, step{key: part})
		for _, idx := range indexes {
			steps = append(steps, step{index: idx, isIdx: true})
		}
	}
	return steps, true
}

// nodeAt follows steps through the schema. It returns nil when the path is
// not described.
func nodeAt(root *schema.Node, steps []step) *schema.Node {
	current := root
	for _, st := range steps {
		if current == nil {
			return nil
		}
		current = current.Effective()
		if st.isIdx {
			current = current.Items
			continue
		}
		child, ok := current.Property(st.key)
		if !ok {
			return nil
		}
		current = child
	}
	return current
}

// setPath writes through current along steps, creating objects and growing
// arrays with nil holes as needed, and returns the updated container.
func setPath(current any, steps []step, leaf func(existing any) any) any {
	if len(steps) == 0 {
		return leaf(current)
	}
	st := steps[0]
	if st.isIdx {
		list, _ := current.([]any)
		for len(list) <= st.index {
			list = append(list, nil)
		}
		list[st.index] = setPath(list[st.index], steps[1:], leaf)
		return list
	}
	obj, ok := current.(map[string]any)
	if !ok {
		obj = map[string]any{}
	}
	obj[st.key] = setPath(obj[st.key], steps[1:], leaf)
	return obj
}

// merge combines a repeated key: lists accumulate, anything else is replaced
// unless the new value is nil.
func merge(existing, value any) any {
	prev, prevIsList := existing.([]any)
	next, nextIsList := value.([]any)
	switch {
	case prevIsList && nextIsList:
		return append(prev, next...)
	case prevIsList && value == nil:
		return prev
	default:
		return value
	}
}

// Coerce converts one raw wire value using the schema node that describes it.
// Empty strings are unset (nil) for strings, numbers, booleans, and arrays.
// Values that do not parse as the declared type are kept raw for the
// validator to report. Without a declared type, "true"/"false" become
// booleans and JSON objects or arrays are parsed.
func Coerce(node *schema.Node, raw string) any {
	node = node.Effective()
	kind := schema.KindNone
	if node != nil {
		kind = node.Kind
	}

	switch kind {
	case schema.KindString:
		if raw == "" {
			return nil
		}
		if strings.EqualFold(node.Format, "uuid") {
			if id, err := uuid.Parse(raw); err == nil {
				return id.String()
			}
		}
		return raw
	case schema.KindNumber:
		if raw == "" {
			return nil
		}
		if value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && !math.IsInf(value, 0) {
			return value
		}
		return raw
	case schema.KindInteger:
		if raw == "" {
			return nil
		}
		trimmed := strings.TrimSpace(raw)
		if value, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return value
		}
		if value, err := strconv.ParseFloat(trimmed, 64); err == nil && value == math.Trunc(value) && math.Abs(value) < 1<<53 {
			return int64(value)
		}
		return raw
	case schema.KindBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "":
			return nil
		case "true", "on":
			return true
		case "false":
			return false
		default:
			return raw
		}
	case schema.KindArray:
		if raw == "" {
			return nil
		}
		if strings.HasPrefix(strings.TrimSpace(raw), "[") {
			if list, ok := parseJSON(raw).([]any); ok {
				return list
			}
		}
		return []any{Coerce(node.Items, raw)}
	case schema.KindObject:
		if strings.HasPrefix(strings.TrimSpace(raw), "{") {
			if obj, ok := parseJSON(raw).(map[string]any); ok {
				return obj
			}
		}
		return raw
	default:
		return infer(raw)
	}
}

func infer(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if parsed := parseJSON(trimmed); parsed != nil {
			return parsed
		}
	}
	return raw
}

func parseJSON(raw string) any {
	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
