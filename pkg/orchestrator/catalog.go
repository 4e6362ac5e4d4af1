package orchestrator

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/goliatone/go-applyform/pkg/layout"
	"github.com/goliatone/go-applyform/pkg/schema"
)

const schemaSuffix = ".schema"

// Catalog holds the prepared forms of a forms directory, keyed by id.
type Catalog struct {
	mu    sync.RWMutex
	forms map[string]*Form
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{forms: make(map[string]*Form)}
}

// LoadCatalog prepares every <id>.schema.{json,yaml,yml} in fsys, pairing it
// with <id>.layout.* when present. Forms without a layout list their
// top-level properties.
func LoadCatalog(ctx context.Context, o *Orchestrator, fsys fs.FS) (*Catalog, error) {
	if o == nil {
		o = New()
	}
	layouts, err := layout.LoadFS(fsys)
	if err != nil {
		return nil, err
	}

	catalog := NewCatalog()
	if fsys == nil {
		return catalog, nil
	}

	err = fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		id, ok := layout.FormID(name, schemaSuffix)
		if !ok {
			return nil
		}
		if _, exists := catalog.forms[id]; exists {
			return fmt.Errorf("orchestrator: duplicate schema for form %q (file %s)", id, name)
		}

		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("orchestrator: read %s: %w", name, err)
		}
		doc, err := schema.NewDocument(schema.SourceFromFS(name), raw)
		if err != nil {
			return err
		}
		nodes, _ := layouts.Layout(id)
		form, err := o.Prepare(ctx, PrepareRequest{ID: id, Document: &doc, Layout: nodes})
		if err != nil {
			return fmt.Errorf("form %s: %w", id, err)
		}
		catalog.forms[id] = form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// Add registers a prepared form, replacing any form with the same id.
func (c *Catalog) Add(form *Form) {
	if form == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forms[form.ID] = form
}

// Form returns the form registered under id.
func (c *Catalog) Form(id string) (*Form, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	form, ok := c.forms[id]
	return form, ok
}

// IDs lists registered form ids in sorted order.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.forms))
	for id := range c.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
