package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-applyform/internal/config"
	"github.com/goliatone/go-applyform/internal/server"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	serverReadTimeout      = 10 * time.Second
	serverWriteTimeout     = 15 * time.Second
	serverIdleTimeout      = 60 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored forms over HTTP",
		Long: `Start an HTTP server exposing the forms directory:

  GET  /forms                   list form ids
  GET  /forms/{id}              field tree, navigation, and rules
  POST /forms/{id}/submissions  shape and validate a submission`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("address", "", "address to listen on")
	if err := a.v.BindPFlag(config.KeyAddress, cmd.Flags().Lookup("address")); err != nil {
		panic(err)
	}
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	orch := a.orchestrator()
	catalog, err := a.catalog(ctx, orch)
	if err != nil {
		return err
	}

	srv := server.New(catalog, orch,
		server.WithLogger(a.logger),
		server.WithSink(server.LogSink(a.logger)),
	)
	httpServer := &http.Server{
		Addr:         a.cfg.Address,
		Handler:      srv.Routes(),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening",
			zap.String("address", a.cfg.Address),
			zap.Strings("forms", catalog.IDs()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.logger.Info("server shutdown complete")
	return nil
}
