package formdata

import (
	"strings"

	"github.com/goliatone/go-applyform/pkg/schema"
)

// actionPrefix marks framework-injected submission keys.
const actionPrefix = "$ACTION"

// Prune drops nil values and objects left with no values, recursively.
// Array items that prune to nothing are removed; arrays themselves are kept,
// possibly empty. data is not modified.
func Prune(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		if pruned, keep := pruneValue(value); keep {
			out[key] = pruned
		}
	}
	return out
}

func pruneValue(value any) (any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, false
	case map[string]any:
		pruned := Prune(typed)
		return pruned, len(pruned) > 0
	case []any:
		list := make([]any, 0, len(typed))
		for _, item := range typed {
			if pruned, keep := pruneValue(item); keep {
				list = append(list, pruned)
			}
		}
		return list, true
	default:
		return value, true
	}
}

// Shape turns a raw submission into schema-shaped data: reserved framework
// keys are stripped, entries decoded, and the result pruned.
func Shape(entries []Entry, root *schema.Node, opts ...Option) map[string]any {
	c := newCodec(opts)
	kept := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if c.isReserved(entry.Key) {
			continue
		}
		kept = append(kept, entry)
	}
	return Prune(c.decode(kept, root))
}

func (c *codec) isReserved(key string) bool {
	if strings.HasPrefix(key, actionPrefix) {
		return true
	}
	_, ok := c.reserved[key]
	return ok
}
