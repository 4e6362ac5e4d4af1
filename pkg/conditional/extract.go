// Package conditional pulls grouped if/then validation rules out of a form
// schema so the remaining tree can be merged and rendered, while the rules
// stay addressable for a separate validator.
package conditional

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-applyform/pkg/schema"
)

const allOfKey = "allOf"

// ErrDuplicateRule reports two conditional groups collapsing onto the same
// rule path (array members share their parent's path).
var ErrDuplicateRule = errors.New("conditional: duplicate rule path")

// Rules maps a schema path to the if/then pairs extracted there.
type Rules map[string][]schema.Conditional

// Warning describes an allOf group that was dropped because its members are
// not clean if/then pairs.
type Warning struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	path := w.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s: %s", path, w.Reason)
}

// Result is the outcome of an extraction pass.
type Result struct {
	Schema   *schema.Object
	Rules    Rules
	Warnings []Warning
}

// Option customises Extract.
type Option func(*extractor)

// WithLogger logs dropped groups at warn level.
func WithLogger(logger *zap.Logger) Option {
	return func(e *extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

type extractor struct {
	logger   *zap.Logger
	rules    Rules
	warnings []Warning
}

// Extract walks doc and removes every allOf whose members are all exactly
// {if, then} pairs, recording the group under basePath joined with the object
// keys walked to reach it (list members keep their owner's path).
// Single-member allOf lists are kept. Multi-member lists with any other member
// shape are dropped with a Warning. A non-list or empty allOf is a
// schema.MalformedError. doc is not modified.
func Extract(doc *schema.Object, basePath string, opts ...Option) (Result, error) {
	e := &extractor{
		logger: zap.NewNop(),
		rules:  make(Rules),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if doc == nil {
		return Result{}, schema.Malformed(basePath, "schema is nil")
	}

	pruned, err := e.walkObject(doc, basePath)
	if err != nil {
		return Result{}, err
	}
	return Result{Schema: pruned, Rules: e.rules, Warnings: e.warnings}, nil
}

func (e *extractor) walkObject(obj *schema.Object, path string) (*schema.Object, error) {
	out := schema.NewObject()
	for _, key := range obj.Keys() {
		value, _ := obj.Get(key)

		if key == allOfKey {
			keep, err := e.allOf(value, path)
			if err != nil {
				return nil, err
			}
			if keep != nil {
				out.Set(key, keep)
			}
			continue
		}

		switch typed := value.(type) {
		case *schema.Object:
			child, err := e.walkObject(typed, path+"/"+schema.EscapeToken(key))
			if err != nil {
				return nil, err
			}
			out.Set(key, child)
		case []any:
			list, err := e.walkList(typed, path)
			if err != nil {
				return nil, err
			}
			out.Set(key, list)
		default:
			out.Set(key, value)
		}
	}
	return out, nil
}

// walkList recurses into object members at the owning node's path: neither
// the list key nor the member index is part of a rule path.
func (e *extractor) walkList(list []any, path string) ([]any, error) {
	out := make([]any, 0, len(list))
	for _, item := range list {
		obj, ok := item.(*schema.Object)
		if !ok {
			out = append(out, item)
			continue
		}
		child, err := e.walkObject(obj, path)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

// allOf returns the list to keep under the allOf key, or nil to drop it.
func (e *extractor) allOf(value any, path string) ([]any, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, schema.Malformed(path+"/"+allOfKey, "allOf must be an array")
	}
	switch len(list) {
	case 0:
		return nil, schema.Malformed(path+"/"+allOfKey, "allOf must not be empty")
	case 1:
		return e.walkList(list, path)
	}

	for idx, item := range list {
		if schema.IsConditionalPair(item) {
			continue
		}
		warning := Warning{
			Path:   path,
			Reason: fmt.Sprintf("allOf[%d] is not an if/then pair; group dropped", idx),
		}
		e.warnings = append(e.warnings, warning)
		e.logger.Warn("dropping unrecognised allOf group",
			zap.String("path", warning.Path),
			zap.Int("index", idx),
			zap.Int("members", len(list)),
		)
		return nil, nil
	}

	if _, exists := e.rules[path]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateRule, path)
	}
	group := make([]schema.Conditional, 0, len(list))
	for _, item := range list {
		group = append(group, schema.ConditionalFromPair(item.(*schema.Object)))
	}
	e.rules[path] = group
	return nil, nil
}
