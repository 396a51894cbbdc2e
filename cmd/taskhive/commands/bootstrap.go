package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/taskhive/taskhive/config"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/tracing"
	"github.com/taskhive/taskhive/version"
)

const traceFlushTimeout = 10 * time.Second

// bootstrap loads the configuration, creates the process logger and
// installs the tracer provider. cleanup flushes spans before closing the
// log output.
func bootstrap(configPath string) (*config.Config, *logger.Logger, func(), error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	l.SetVersion(version.Version)

	shutdown, err := tracing.Setup(context.Background(), cfg.Tracing, tracing.Resource{
		Service:     cfg.AppName,
		Version:     version.Version,
		Environment: cfg.RunMode,
	})
	if err != nil {
		closeLog()
		return nil, nil, nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	if cfg.Tracing != nil && cfg.Tracing.Enabled {
		l.Info(context.Background(), "Tracing enabled", "endpoint", cfg.Tracing.Endpoint, "sampling_rate", cfg.Tracing.SamplingRate)
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), traceFlushTimeout)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			l.Warn(ctx, "Failed to flush traces", "error", err)
		}
		closeLog()
	}
	return cfg, l, cleanup, nil
}
