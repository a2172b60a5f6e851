// Package app wires the build-step runner together: configuration,
// logging, the installation registry, and the invoker lifecycle.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fugi/antrun/internal/config"
	"github.com/fugi/antrun/internal/ctxlog"
	"github.com/fugi/antrun/internal/envvars"
	"github.com/fugi/antrun/internal/install"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *install.Registry
	job      *config.Job
	hostEnv  envvars.Vars
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and
// installation registry. Failure to load configuration is a fatal startup
// error and panics; the entrypoint recovers and reports it.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	registry := install.NewRegistry()
	if cfg.InstallationsPath != "" {
		installations, err := install.LoadFile(cfg.InstallationsPath)
		if err != nil {
			panic(fmt.Errorf("failed to load installations: %w", err))
		}
		registry.Replace(installations)
		logger.Debug("Installation registry loaded.", "count", registry.Len())
	}

	hostEnv := envvars.FromOS()

	job, err := config.LoadJob(ctx, cfg.JobPath, hostEnv)
	if err != nil {
		panic(fmt.Errorf("failed to load job: %w", err))
	}
	logger.Debug("Job definition loaded.", "steps", len(job.Steps))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: registry,
		job:      job,
		hostEnv:  hostEnv,
	}
}

// Registry returns the application's installation registry. This is
// primarily for testing.
func (a *App) Registry() *install.Registry {
	return a.registry
}
