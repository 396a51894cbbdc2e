package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/taskhive/taskhive/config"
	"github.com/taskhive/taskhive/internal/server"
)

const shutdownTimeout = 30 * time.Second

func NewServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the HTTP API and the reminder scheduler",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, l, cleanup, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, l)
	if err != nil {
		l.Error(ctx, "Failed to create server", "error", err)
		return err
	}

	config.Watch(func(next *config.Config) {
		l.SetLevelName(next.Logger.Level)
		l.Info(context.Background(), "Configuration reloaded", "log_level", next.Logger.Level)
	}, func(err error) {
		l.Warn(context.Background(), "Configuration reload failed", "error", err)
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	srv.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		l.Info(ctx, "Starting server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		l.Info(context.Background(), "Shutting down server")
	case err = <-errCh:
		if err != nil {
			l.Error(context.Background(), "Server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		l.Error(shutdownCtx, "Server forced to shutdown", "error", serr)
	}
	srv.Cleanup(shutdownCtx)

	l.Info(shutdownCtx, "Server exited")
	return err
}
