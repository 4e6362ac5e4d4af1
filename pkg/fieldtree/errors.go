package fieldtree

import (
	"errors"
	"fmt"
)

// ErrUnknownField marks a layout field whose definition does not resolve in
// the schema. It is a form authoring bug, never a user condition.
var ErrUnknownField = errors.New("fieldtree: unknown field")

// ConfigError locates a layout configuration error.
type ConfigError struct {
	Definition string
	Location   string
	Err        error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("fieldtree: layout %s references %q", e.Location, e.Definition)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes ErrUnknownField and the resolution error.
func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnknownField}
	}
	return []error{ErrUnknownField, e.Err}
}
