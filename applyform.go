// Package applyform renders grant application forms from a JSON Schema and a
// layout description, and turns flat form submissions back into nested data
// validated against the same schema.
//
// Most callers want a Catalog of forms loaded from a directory:
//
//	catalog, err := applyform.LoadDir(ctx, "forms", applyform.WithLogger(logger))
//	form, _ := catalog.Form("sf424")
//	page, err := applyform.NewOrchestrator().Render(ctx, form, data, nil)
package applyform

import (
	"context"
	"errors"
	"os"

	"github.com/goliatone/go-applyform/internal/loader"
	"github.com/goliatone/go-applyform/pkg/orchestrator"
	"github.com/goliatone/go-applyform/pkg/schema"
)

// LoaderOptions configures the document loader returned by NewLoader.
type LoaderOptions = loader.Options

// Form is a prepared form.
type Form = orchestrator.Form

// Catalog holds prepared forms keyed by id.
type Catalog = orchestrator.Catalog

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewLoader constructs a loader for file, fs.FS, and HTTP sources while
// keeping the concrete type hidden from consumers.
func NewLoader(options LoaderOptions) schema.Loader {
	return loader.New(options)
}

// WithLogger is a shorthand for orchestrator.WithLogger.
var WithLogger = orchestrator.WithLogger

// PrepareFile loads a schema file and pairs it with an optional layout file.
// An empty layoutPath lists the schema's top-level properties.
func PrepareFile(ctx context.Context, id, schemaPath, layoutPath string, options ...orchestrator.Option) (*Form, error) {
	opts := append([]orchestrator.Option{orchestrator.WithLoader(loader.New(loader.Options{}))}, options...)
	req := orchestrator.PrepareRequest{ID: id, Source: schema.SourceFromFile(schemaPath)}
	if layoutPath != "" {
		nodes, err := readLayout(layoutPath)
		if err != nil {
			return nil, err
		}
		req.Layout = nodes
	}
	return orchestrator.New(opts...).Prepare(ctx, req)
}

// LoadDir prepares every form under dir. See orchestrator.LoadCatalog for
// the file naming rules.
func LoadDir(ctx context.Context, dir string, options ...orchestrator.Option) (*Catalog, error) {
	if dir == "" {
		return nil, errors.New("applyform: forms directory is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("applyform: " + dir + " is not a directory")
	}
	return orchestrator.LoadCatalog(ctx, orchestrator.New(options...), os.DirFS(dir))
}
