package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-applyform/pkg/schema"
)

// Widget identifiers understood by the rendering layer.
const (
	WidgetText            = "Text"
	WidgetTextArea        = "TextArea"
	WidgetSelect          = "Select"
	WidgetMultiSelect     = "MultiSelect"
	WidgetRadio           = "Radio"
	WidgetCheckbox        = "Checkbox"
	WidgetAttachment      = "Attachment"
	WidgetAttachmentArray = "AttachmentArray"
	WidgetPrint           = "Print"
	WidgetPrintAttachment = "PrintAttachment"
)

// longTextThreshold is the maxLength above which strings render as a
// TextArea.
const longTextThreshold = 255

// Matcher decides whether a widget should handle the supplied schema node.
// The node has already been through Effective.
type Matcher func(node *schema.Node) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for schema nodes from registered matchers. Higher
// priority wins; ties fall back to registration order. Resolution falls back
// to WidgetText when no matcher applies.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. The
// latest registration wins among equal names.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget for a node. A non-empty explicit widget (from the
// layout) is returned untouched.
func (r *Registry) Resolve(explicit string, node *schema.Node) string {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed
	}
	node = node.Effective()
	if r == nil || node == nil {
		return WidgetText
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order > rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(node) {
			return entry.name
		}
	}
	return WidgetText
}

// UsesOptions reports whether a widget renders an option list.
func UsesOptions(widget string) bool {
	switch widget {
	case WidgetSelect, WidgetMultiSelect, WidgetRadio:
		return true
	default:
		return false
	}
}

// PrintVariant maps a widget to its read-only print counterpart.
func PrintVariant(widget string) string {
	switch widget {
	case WidgetAttachment, WidgetAttachmentArray:
		return WidgetPrintAttachment
	default:
		return WidgetPrint
	}
}

func isUUIDString(node *schema.Node) bool {
	return node != nil && node.Kind == schema.KindString && strings.EqualFold(node.Format, "uuid")
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetAttachment, 100, isUUIDString)

	r.Register(WidgetAttachmentArray, 90, func(node *schema.Node) bool {
		return node.Kind == schema.KindArray && isUUIDString(node.Items.Effective())
	})

	r.Register(WidgetMultiSelect, 80, func(node *schema.Node) bool {
		if node.Kind != schema.KindArray {
			return false
		}
		items := node.Items.Effective()
		return items != nil && len(items.Enum) > 0
	})

	// remaining arrays and enums render as a single select
	r.Register(WidgetSelect, 70, func(node *schema.Node) bool {
		return node.Kind == schema.KindArray || len(node.Enum) > 0
	})

	r.Register(WidgetCheckbox, 60, func(node *schema.Node) bool {
		return node.Kind == schema.KindBoolean
	})

	r.Register(WidgetTextArea, 50, func(node *schema.Node) bool {
		return node.MaxLength != nil && *node.MaxLength > longTextThreshold
	})
}
