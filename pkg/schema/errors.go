package schema

import (
	"errors"
	"fmt"
)

// ErrMalformedSchema marks schema documents that cannot be processed. Such
// errors come from form authoring mistakes and are never recoverable at runtime.
var ErrMalformedSchema = errors.New("schema: malformed schema")

// MalformedError locates a malformed schema fragment by JSON pointer.
type MalformedError struct {
	Path   string
	Reason string
}

func (e *MalformedError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("schema: %s at %s", e.Reason, path)
}

// Unwrap lets callers match with errors.Is(err, ErrMalformedSchema).
func (e *MalformedError) Unwrap() error {
	return ErrMalformedSchema
}

// Malformed builds a MalformedError with a formatted reason.
func Malformed(path, format string, args ...any) error {
	return &MalformedError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
