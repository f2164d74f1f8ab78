// Package app wires one invocation together: it builds the instance-scoped
// logger, loads the manifest through the chosen loader, and orchestrates
// resolution, graph construction, planning and execution for the requested
// command.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/wasmbuildgo/internal/ctxlog"
	"github.com/vk/wasmbuildgo/internal/manifest"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	manifest *manifest.Manifest
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with the manifest loaded and validated. A
// failure to load the manifest is a fatal startup error and panics; the
// command surface recovers it into a clean exit.
func NewApp(outW io.Writer, appConfig *Config, loader manifest.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	m, err := loader.Load(ctx, appConfig.ManifestPath)
	if err != nil {
		panic(fmt.Errorf("failed to load manifest: %w", err))
	}
	logger.Debug("Manifest loaded and translated into unified model.")

	return &App{
		outW:     outW,
		logger:   logger,
		manifest: m,
	}
}

// Manifest returns the loaded manifest. This is primarily for testing.
func (a *App) Manifest() *manifest.Manifest {
	return a.manifest
}
