package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-applyform/pkg/conditional"
	"github.com/goliatone/go-applyform/pkg/formdata"
	"github.com/goliatone/go-applyform/pkg/orchestrator"
	"github.com/goliatone/go-applyform/pkg/schema"
)

type extractOutput struct {
	Schema   *schema.Object        `json:"schema"`
	Rules    conditional.Rules     `json:"rules"`
	Warnings []conditional.Warning `json:"warnings,omitempty"`
}

func newExtractCmd(a *app) *cobra.Command {
	var component string
	cmd := &cobra.Command{
		Use:   "extract <schema>",
		Short: "Print a schema with its conditional groups extracted",
		Long: `Load a JSON or YAML schema (file path or URL), pull every allOf group of
if/then pairs out of it, and print the pruned schema, the rules keyed by path,
and any groups that were dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src := parseSource(args[0])
			if src == nil {
				return errors.New("schema source is required")
			}
			doc, err := a.loader().Load(ctx, src)
			if err != nil {
				return err
			}
			var obj *schema.Object
			if component != "" {
				obj, err = schema.FromOpenAPI(ctx, doc, component)
			} else {
				obj, err = doc.Object()
			}
			if err != nil {
				return err
			}
			result, err := conditional.Extract(obj, "", conditional.WithLogger(a.logger))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), extractOutput{
				Schema:   result.Schema,
				Rules:    result.Rules,
				Warnings: result.Warnings,
			})
		},
	}
	cmd.Flags().StringVar(&component, "component", "", "read an OpenAPI component schema instead of a plain JSON Schema")
	return cmd
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		dataFile string
		printed  bool
	)
	cmd := &cobra.Command{
		Use:   "render <form-id>",
		Short: "Print the field tree of a stored form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var extra []orchestrator.Option
			if printed {
				extra = append(extra, orchestrator.WithTransformer(orchestrator.PrintTransformer()))
			}
			orch := a.orchestrator(extra...)
			form, err := a.form(ctx, orch, args[0])
			if err != nil {
				return err
			}
			var data map[string]any
			if dataFile != "" {
				if err := readJSON(dataFile, &data); err != nil {
					return err
				}
			}
			rendered, err := orch.Render(ctx, form, data, nil)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rendered)
		},
	}
	cmd.Flags().StringVar(&dataFile, "data", "", "JSON file with current form data")
	cmd.Flags().BoolVar(&printed, "print", false, "use read-only print widgets")
	return cmd
}

func newEncodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <data.json>",
		Short: "Flatten nested form data into submission entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data map[string]any
			if err := readJSON(args[0], &data); err != nil {
				return err
			}
			entries := formdata.Encode(data, formdata.WithDelimiter(a.cfg.Delimiter))
			if entries == nil {
				entries = []formdata.Entry{}
			}
			return writeJSON(cmd.OutOrStdout(), entries)
		},
	}
}

func newDecodeCmd(a *app) *cobra.Command {
	var validate bool
	cmd := &cobra.Command{
		Use:   "decode <form-id> <entries.json>",
		Short: "Rebuild nested data from submission entries",
		Long: `Decode a JSON array of {"key", "value"} entries against the schema of a
stored form. With --validate the entries go through the full submission path:
reserved keys are stripped, empty values pruned, and the result validated.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			orch := a.orchestrator()
			form, err := a.form(ctx, orch, args[0])
			if err != nil {
				return err
			}
			var entries []formdata.Entry
			if err := readJSON(args[1], &entries); err != nil {
				return err
			}
			if validate {
				sub, err := orch.Submit(ctx, form, entries)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), sub)
			}
			data := formdata.Decode(entries, form.Schema,
				formdata.WithDelimiter(a.cfg.Delimiter),
				formdata.WithLogger(a.logger),
			)
			return writeJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "shape and validate like a form submission")
	return cmd
}
