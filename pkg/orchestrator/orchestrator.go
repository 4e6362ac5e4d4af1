package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-applyform/pkg/conditional"
	"github.com/goliatone/go-applyform/pkg/fieldtree"
	"github.com/goliatone/go-applyform/pkg/formdata"
	"github.com/goliatone/go-applyform/pkg/layout"
	"github.com/goliatone/go-applyform/pkg/schema"
	"github.com/goliatone/go-applyform/pkg/validation"
	"github.com/goliatone/go-applyform/pkg/widgets"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects the loader used for Source-based requests.
func WithLoader(loader schema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithRegistry injects a widget registry.
func WithRegistry(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDelimiter sets the flat-encoding delimiter shared by control ids and
// submissions.
func WithDelimiter(delimiter string) Option {
	return func(o *Orchestrator) {
		if delimiter != "" {
			o.delimiter = delimiter
		}
	}
}

// WithLogger sets the logger handed to every stage.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTransformer registers a Transformer that runs on every prepared form.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.transformers = append(o.transformers, t)
		}
	}
}

// Orchestrator coordinates the pipeline from schema document to field tree
// and from submission entries back to validated data. It holds no per-form
// state and is safe for concurrent use once constructed.
type Orchestrator struct {
	loader       schema.Loader
	registry     *widgets.Registry
	delimiter    string
	logger       *zap.Logger
	transformers []Transformer
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		delimiter: formdata.DefaultDelimiter,
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.registry == nil {
		o.registry = widgets.NewRegistry()
	}
	return o
}

// Form is a prepared form: the schema with its conditional groups extracted,
// the parsed tree, and the layout that renders it.
type Form struct {
	ID string
	// Original is the schema as loaded; validation runs against it so the
	// conditional groups are evaluated.
	Original *schema.Object
	// Pruned is Original without conditional groups.
	Pruned   *schema.Object
	Schema   *schema.Node
	Layout   []layout.Node
	Rules    conditional.Rules
	Warnings []conditional.Warning
	// Print renders every field with its read-only widget.
	Print bool
}

// PrepareRequest describes where a form's schema comes from.
type PrepareRequest struct {
	ID string
	// Source is loaded with the configured loader. Optional when Document is
	// supplied.
	Source   schema.Source
	Document *schema.Document
	// Component selects an OpenAPI component schema instead of treating the
	// document as a JSON Schema.
	Component string
	// Layout defaults to the top-level properties of the schema.
	Layout []layout.Node
}

// Prepare loads, extracts, and parses a form schema and checks the layout
// shape. Layout definitions are resolved later, by Render.
func (o *Orchestrator) Prepare(ctx context.Context, req PrepareRequest) (*Form, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		return nil, err
	}

	var original *schema.Object
	if req.Component != "" {
		original, err = schema.FromOpenAPI(ctx, doc, req.Component)
	} else {
		original, err = doc.Object()
	}
	if err != nil {
		return nil, fmt.Errorf("orchestrator: decode schema: %w", err)
	}

	result, err := conditional.Extract(original, "", conditional.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: extract conditionals: %w", err)
	}
	root, err := schema.Parse(result.Schema)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parse schema: %w", err)
	}
	nodes := req.Layout
	if len(nodes) == 0 {
		nodes = layout.FromSchema(root)
	}
	if err := layout.Validate(nodes); err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	form := &Form{
		ID:       req.ID,
		Original: original,
		Pruned:   result.Schema,
		Schema:   root,
		Layout:   nodes,
		Rules:    result.Rules,
		Warnings: result.Warnings,
	}
	for _, transformer := range o.transformers {
		if err := transformer.Transform(ctx, form); err != nil {
			return nil, fmt.Errorf("orchestrator: transform form: %w", err)
		}
	}

	o.logger.Debug("form prepared",
		zap.String("form", form.ID),
		zap.Int("rules", len(form.Rules)),
		zap.Int("warnings", len(form.Warnings)),
	)
	return form, nil
}

func (o *Orchestrator) resolveDocument(ctx context.Context, req PrepareRequest) (schema.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return schema.Document{}, errors.New("orchestrator: source or document is required")
	}
	if o.loader == nil {
		return schema.Document{}, errors.New("orchestrator: loader is not configured")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return schema.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

// Rendered is everything a page needs to draw a form.
type Rendered struct {
	ID       string                   `json:"id"`
	Fields   []fieldtree.Node         `json:"fields"`
	Nav      []layout.NavItem         `json:"nav,omitempty"`
	Warnings []fieldtree.FieldWarning `json:"warnings,omitempty"`
	Rules    conditional.Rules        `json:"rules,omitempty"`
}

// Render builds the field tree for data, attaching any validation warnings
// to their fields and to the ordered summary.
func (o *Orchestrator) Render(ctx context.Context, form *Form, data map[string]any, warnings []validation.Warning) (Rendered, error) {
	if err := ctx.Err(); err != nil {
		return Rendered{}, err
	}
	if form == nil {
		return Rendered{}, errors.New("orchestrator: form is nil")
	}

	opts := []fieldtree.Option{
		fieldtree.WithRegistry(o.registry),
		fieldtree.WithDelimiter(o.delimiter),
		fieldtree.WithLogger(o.logger),
		fieldtree.WithWarnings(warnings),
	}
	tree, err := fieldtree.Build(form.Layout, form.Schema, data, opts...)
	if err != nil {
		return Rendered{}, fmt.Errorf("orchestrator: build field tree: %w", err)
	}
	if form.Print {
		tree = fieldtree.ForPrint(tree)
	}
	summary, err := fieldtree.CollectWarnings(form.Layout, form.Schema, warnings, opts...)
	if err != nil {
		return Rendered{}, fmt.Errorf("orchestrator: collect warnings: %w", err)
	}

	return Rendered{
		ID:       form.ID,
		Fields:   tree,
		Nav:      layout.NavItems(form.Layout),
		Warnings: summary,
		Rules:    form.Rules,
	}, nil
}

// Submission is a decoded and validated form submission.
type Submission struct {
	Data     map[string]any       `json:"data"`
	Warnings []validation.Warning `json:"warnings,omitempty"`
}

// Valid reports whether validation produced no warnings.
func (s Submission) Valid() bool {
	return len(s.Warnings) == 0
}

// Submit shapes raw entries into data and validates it against the original
// schema.
func (o *Orchestrator) Submit(ctx context.Context, form *Form, entries []formdata.Entry) (Submission, error) {
	if err := ctx.Err(); err != nil {
		return Submission{}, err
	}
	if form == nil {
		return Submission{}, errors.New("orchestrator: form is nil")
	}

	data := formdata.Shape(entries, form.Schema,
		formdata.WithDelimiter(o.delimiter),
		formdata.WithLogger(o.logger),
	)
	warnings, err := validation.Validate(form.Original, data)
	if err != nil {
		return Submission{}, fmt.Errorf("orchestrator: validate submission: %w", err)
	}
	return Submission{Data: data, Warnings: warnings}, nil
}
