package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-applyform/internal/prompt"
	"github.com/goliatone/go-applyform/pkg/formdata"
	"github.com/goliatone/go-applyform/pkg/validation"
)

type fillOutput struct {
	Entries  []formdata.Entry     `json:"entries"`
	Data     map[string]any       `json:"data"`
	Warnings []validation.Warning `json:"warnings,omitempty"`
}

func newFillCmd(a *app) *cobra.Command {
	var dataFile string
	cmd := &cobra.Command{
		Use:   "fill <form-id>",
		Short: "Fill a stored form interactively",
		Long: `Prompt for every field of a stored form in layout order, then print the
submission entries, the decoded data, and any validation warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			orch := a.orchestrator()
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

			driver := a.driver
			if driver == nil {
				driver = prompt.NewSurveyDriver(os.Stdin, os.Stderr)
			}
			entries, err := prompt.Fill(ctx, driver, rendered.Fields)
			if err != nil {
				return err
			}
			sub, err := orch.Submit(ctx, form, entries)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), fillOutput{
				Entries:  entries,
				Data:     sub.Data,
				Warnings: sub.Warnings,
			})
		},
	}
	cmd.Flags().StringVar(&dataFile, "data", "", "JSON file with values offered as defaults")
	return cmd
}
