package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/goliatone/go-applyform/internal/config"
	"github.com/goliatone/go-applyform/internal/loader"
	"github.com/goliatone/go-applyform/internal/logging"
	"github.com/goliatone/go-applyform/internal/prompt"
	"github.com/goliatone/go-applyform/pkg/orchestrator"
	"github.com/goliatone/go-applyform/pkg/schema"
)

// app carries the resolved configuration shared by every command.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	logger *zap.Logger
	driver prompt.Driver
}

func newApp() *app {
	return &app{v: config.New(), logger: zap.NewNop()}
}

func newRootCmd(a *app) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "applyform",
		Short:         "Render and process grant application forms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, configFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "path to a YAML config file")
	flags.String("forms-dir", "", "directory holding <id>.schema.* and <id>.layout.* files")
	flags.String("delimiter", "", "nested key delimiter for control ids and submissions")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("debug", false, "human-readable development logging")
	for key, name := range map[string]string{
		config.KeyFormsDir:       "forms-dir",
		config.KeyDelimiter:      "delimiter",
		config.KeyLogLevel:       "log-level",
		config.KeyLogDevelopment: "debug",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	root.AddCommand(
		newExtractCmd(a),
		newRenderCmd(a),
		newEncodeCmd(a),
		newDecodeCmd(a),
		newFillCmd(a),
		newServeCmd(a),
		newLintCmd(a),
	)
	return root
}

func (a *app) loader() *loader.Loader {
	return loader.New(loader.Options{
		AllowHTTP: a.cfg.HTTP.Allow,
		Timeout:   a.cfg.HTTP.Timeout,
		Retries:   a.cfg.HTTP.Retries,
		Logger:    a.logger,
	})
}

func (a *app) orchestrator(extra ...orchestrator.Option) *orchestrator.Orchestrator {
	opts := []orchestrator.Option{
		orchestrator.WithLoader(a.loader()),
		orchestrator.WithDelimiter(a.cfg.Delimiter),
		orchestrator.WithLogger(a.logger),
	}
	return orchestrator.New(append(opts, extra...)...)
}

func (a *app) catalog(ctx context.Context, orch *orchestrator.Orchestrator) (*orchestrator.Catalog, error) {
	info, err := os.Stat(a.cfg.FormsDir)
	if err != nil {
		return nil, fmt.Errorf("forms directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("forms directory: %s is not a directory", a.cfg.FormsDir)
	}
	return orchestrator.LoadCatalog(ctx, orch, os.DirFS(a.cfg.FormsDir))
}

func (a *app) form(ctx context.Context, orch *orchestrator.Orchestrator, id string) (*orchestrator.Form, error) {
	catalog, err := a.catalog(ctx, orch)
	if err != nil {
		return nil, err
	}
	form, ok := catalog.Form(id)
	if !ok {
		return nil, fmt.Errorf("form %q not found in %s", id, a.cfg.FormsDir)
	}
	return form, nil
}

func parseSource(raw string) schema.Source {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return schema.SourceFromURL(path)
	}
	return schema.SourceFromFile(path)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
