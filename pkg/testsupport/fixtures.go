// Package testsupport loads form fixtures for tests across the module.
package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/goliatone/go-applyform/pkg/formdata"
	"github.com/goliatone/go-applyform/pkg/layout"
	"github.com/goliatone/go-applyform/pkg/schema"
)

// LoadDocument reads a schema fixture into a Document with a file source.
func LoadDocument(t *testing.T, path string) schema.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T.
func LoadDocumentFromPath(path string) (schema.Document, error) {
	if path == "" {
		return schema.Document{}, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := schema.NewDocument(schema.SourceFromFile(path), data)
	if err != nil {
		return schema.Document{}, fmt.Errorf("testsupport: new document: %w", err)
	}
	return doc, nil
}

// LoadLayout parses a JSON or YAML layout fixture.
func LoadLayout(t *testing.T, path string) []layout.Node {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	nodes, err := layout.Parse(data, path)
	if err != nil {
		t.Fatalf("parse layout: %v", err)
	}
	return nodes
}

// LoadEntries reads a JSON array of {"key", "value"} submission entries.
func LoadEntries(t *testing.T, path string) []formdata.Entry {
	t.Helper()

	var entries []formdata.Entry
	MustReadJSON(t, path, &entries)
	return entries
}

// MustReadJSON decodes a JSON fixture into out.
func MustReadJSON(t *testing.T, path string, out any) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal fixture %s: %v", path, err)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
