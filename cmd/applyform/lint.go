package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-applyform/pkg/conditional"
	"github.com/goliatone/go-applyform/pkg/layout"
	"github.com/goliatone/go-applyform/pkg/orchestrator"
	"github.com/goliatone/go-applyform/pkg/schema"
	"github.com/goliatone/go-applyform/pkg/validation"
)

type violation struct {
	file     string
	location string
	message  string
}

func newLintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lint [schema files...]",
		Short: "Check form schemas and their layouts",
		Long: `Check that each schema parses into a form tree and compiles as a draft-7
schema, report allOf groups that cannot be extracted, and resolve every field of
the matching <id>.layout.* file. Without arguments every <id>.schema.* file in
the forms directory is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				found, err := schemaFiles(a.cfg.FormsDir)
				if err != nil {
					return err
				}
				paths = found
			}

			var violations []violation
			for _, path := range paths {
				linted, err := a.lintFile(cmd.Context(), path)
				if err != nil {
					return fmt.Errorf("lint %s: %w", path, err)
				}
				violations = append(violations, linted...)
			}
			if len(violations) == 0 {
				return nil
			}
			report(cmd.ErrOrStderr(), violations)
			return fmt.Errorf("lint: %d problem(s) found", len(violations))
		},
	}
}

func (a *app) lintFile(ctx context.Context, path string) ([]violation, error) {
	doc, err := a.loader().Load(ctx, schema.SourceFromFile(path))
	if err != nil {
		return nil, err
	}
	obj, err := doc.Object()
	if err != nil {
		return []violation{{file: path, location: "document", message: err.Error()}}, nil
	}

	var result []violation
	check := validation.CheckSchema(obj)
	for _, issue := range check.Issues {
		result = append(result, violation{file: path, location: formatLocation(issue.Path), message: issue.Message})
	}
	if !check.Valid {
		return result, nil
	}

	extracted, err := conditional.Extract(obj, "")
	if err != nil {
		return append(result, violation{file: path, location: "allOf", message: err.Error()}), nil
	}
	for _, warning := range extracted.Warnings {
		result = append(result, violation{file: path, location: formatLocation(warning.Path), message: warning.Reason})
	}

	layoutPath, ok := siblingLayout(path)
	if !ok {
		return result, nil
	}
	raw, err := os.ReadFile(layoutPath)
	if err != nil {
		return nil, err
	}
	nodes, err := layout.Parse(raw, layoutPath)
	if err != nil {
		return append(result, violation{file: layoutPath, location: "layout", message: err.Error()}), nil
	}
	orch := a.orchestrator()
	form, err := orch.Prepare(ctx, orchestrator.PrepareRequest{Document: &doc, Layout: nodes})
	if err != nil {
		return append(result, violation{file: layoutPath, location: "layout", message: err.Error()}), nil
	}
	if _, err := orch.Render(ctx, form, nil, nil); err != nil {
		result = append(result, violation{file: layoutPath, location: "layout", message: err.Error()})
	}
	return result, nil
}

func schemaFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if _, ok := layout.FormID(path, ".schema"); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// siblingLayout finds <id>.layout.{json,yaml,yml} next to <id>.schema.*.
func siblingLayout(schemaPath string) (string, bool) {
	id, ok := layout.FormID(schemaPath, ".schema")
	if !ok {
		return "", false
	}
	dir := filepath.Dir(schemaPath)
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		candidate := filepath.Join(dir, id+".layout"+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

func report(w io.Writer, violations []violation) {
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].location == violations[j].location {
				return violations[i].message < violations[j].message
			}
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		fmt.Fprintf(w, "%s: %s -> %s\n", v.file, v.location, v.message)
	}
}

func formatLocation(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return "(root)"
	}
	return strings.ReplaceAll(path, "/", " > ")
}
