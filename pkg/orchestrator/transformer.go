package orchestrator

import "context"

// Transformer mutates a prepared Form before it is handed back. Implementations
// can swap the layout, adjust widgets, or drop rules.
type Transformer interface {
	Transform(ctx context.Context, form *Form) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *Form) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *Form) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// PrintTransformer renders every field read-only, for printable copies of a
// submitted application.
func PrintTransformer() Transformer {
	return TransformerFunc(func(_ context.Context, form *Form) error {
		if form != nil {
			form.Print = true
		}
		return nil
	})
}
