package fieldtree

import (
	"fmt"
	"strings"

	"dario.cat/mergo"
	"go.uber.org/zap"

	"github.com/goliatone/go-applyform/pkg/layout"
	"github.com/goliatone/go-applyform/pkg/schema"
	"github.com/goliatone/go-applyform/pkg/validation"
	"github.com/goliatone/go-applyform/pkg/widgets"
)

// DefaultDelimiter joins property names into control names (address--zip).
const DefaultDelimiter = "--"

const selectEmptyLabel = "- Select -"

// Option customises Build and CollectWarnings.
type Option func(*builder)

// WithWarnings attaches validation warnings to the fields they address.
func WithWarnings(warnings []validation.Warning) Option {
	return func(b *builder) {
		b.warnings = warnings
	}
}

// WithRegistry replaces the default widget registry.
func WithRegistry(registry *widgets.Registry) Option {
	return func(b *builder) {
		if registry != nil {
			b.registry = registry
		}
	}
}

// WithDelimiter sets the delimiter used for control ids.
func WithDelimiter(delimiter string) Option {
	return func(b *builder) {
		if delimiter != "" {
			b.delimiter = delimiter
		}
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

type builder struct {
	root      *schema.Node
	registry  *widgets.Registry
	delimiter string
	warnings  []validation.Warning
	required  map[string]struct{}
	logger    *zap.Logger
}

func newBuilder(root *schema.Node, opts []Option) *builder {
	b := &builder{
		root:      root,
		delimiter: DefaultDelimiter,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.registry == nil {
		b.registry = widgets.NewRegistry()
	}
	b.required = make(map[string]struct{})
	for _, path := range schema.RequiredPaths(root) {
		b.required[path] = struct{}{}
	}
	return b
}

// Build resolves every layout node against root and data. A field whose
// definition does not resolve aborts the build with a *ConfigError. Schema
// properties no layout node references are ignored.
func Build(nodes []layout.Node, root *schema.Node, data map[string]any, opts ...Option) ([]Node, error) {
	if root == nil {
		return nil, schema.Malformed("", "schema is nil")
	}
	b := newBuilder(root, opts)
	tree, err := b.build(nodes, data, "")
	if err != nil {
		return nil, err
	}
	b.logger.Debug("field tree built",
		zap.Int("nodes", len(tree)),
		zap.Int("warnings", len(b.warnings)),
	)
	return tree, nil
}

func (b *builder) build(nodes []layout.Node, data map[string]any, location string) ([]Node, error) {
	out := make([]Node, 0, len(nodes))
	for idx, node := range nodes {
		at := fmt.Sprintf("%s[%d]", location, idx)
		switch node.Type {
		case layout.TypeField:
			field, err := b.field(node, data, at)
			if err != nil {
				return nil, err
			}
			out = append(out, field)
		case layout.TypeSection:
			children, err := b.build(node.Children, data, at+".children")
			if err != nil {
				return nil, err
			}
			out = append(out, Node{
				Kind:     KindSection,
				Name:     node.Name,
				Label:    plainText(node.Label),
				Number:   string(node.Number),
				Anchor:   layout.SectionAnchor(node.Name),
				Children: children,
			})
		default:
			return nil, fmt.Errorf("fieldtree: layout %s has unsupported type %q", at, node.Type)
		}
	}
	return out, nil
}

// resolved is a layout field joined with its schema.
type resolved struct {
	definition string
	names      []string
	schema     *schema.Node
}

func (b *builder) resolve(node layout.Node, location string) (resolved, error) {
	target, err := b.root.Resolve(node.Definition)
	if err != nil {
		return resolved{}, &ConfigError{Definition: node.Definition, Location: location, Err: err}
	}
	names, err := schema.PropertyNames(node.Definition)
	if err != nil || len(names) == 0 {
		return resolved{}, &ConfigError{Definition: node.Definition, Location: location, Err: err}
	}
	merged, err := overlay(target.Effective(), node.Schema)
	if err != nil {
		return resolved{}, &ConfigError{Definition: node.Definition, Location: location, Err: err}
	}
	return resolved{definition: node.Definition, names: names, schema: merged}, nil
}

func (b *builder) field(node layout.Node, data map[string]any, location string) (Node, error) {
	res, err := b.resolve(node, location)
	if err != nil {
		return Node{}, err
	}
	fieldSchema := res.schema

	name := node.Name
	if name == "" {
		name = res.names[len(res.names)-1]
	}
	widget := b.registry.Resolve(node.Widget, fieldSchema)
	opts, emptyLabel := enumOptions(widget, fieldSchema)
	_, required := b.required[strings.Join(res.names, "/")]

	var messages []string
	for _, warning := range b.fieldWarnings(res) {
		messages = append(messages, warning.Formatted)
	}

	return Node{
		Kind:        KindField,
		Name:        name,
		ID:          strings.Join(res.names, b.delimiter),
		Definition:  res.definition,
		Path:        schema.PointerToPath(res.definition),
		Title:       plainText(fieldSchema.Title),
		Description: richText(fieldSchema.Description),
		Widget:      widget,
		Value:       lookup(data, res.names),
		Errors:      messages,
		Required:    required,
		Disabled:    isNullType(fieldSchema),
		MinLength:   fieldSchema.MinLength,
		MaxLength:   fieldSchema.MaxLength,
		Options:     opts,
		EmptyLabel:  emptyLabel,
		Schema:      fieldSchema,
	}, nil
}

// overlay merges an inline layout schema over the resolved definition. Inline
// keywords win.
func overlay(base *schema.Node, inline *schema.Object) (*schema.Node, error) {
	if inline == nil || inline.Len() == 0 {
		return base, nil
	}
	override, err := schema.Parse(inline)
	if err != nil {
		return nil, err
	}

	raw := schema.NewObject()
	if base.Raw != nil {
		raw = base.Raw.Clone()
	}
	for _, key := range inline.Keys() {
		value, _ := inline.Get(key)
		raw.Set(key, value)
	}

	fill := base.Clone()
	fill.Raw = nil
	override.Raw = nil
	if err := mergo.Merge(override, fill); err != nil {
		return nil, fmt.Errorf("fieldtree: merge inline schema: %w", err)
	}
	override.Raw = raw
	return override, nil
}

func lookup(data map[string]any, names []string) any {
	var current any = data
	for _, name := range names {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = obj[name]
		if !ok {
			return nil
		}
	}
	return current
}

func isNullType(node *schema.Node) bool {
	return node.Kind == schema.KindNone && node.Raw.StringValue("type") == "null"
}
