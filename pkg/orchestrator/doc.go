// Package orchestrator wires the form pipeline: load a schema document,
// extract its conditional groups, build the field tree for a layout, and turn
// submissions back into validated data.
package orchestrator
