package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/opgrid/internal/ctxlog"
	"github.com/specialistvlad/opgrid/internal/loader"
	"github.com/specialistvlad/opgrid/internal/plan"
	"github.com/specialistvlad/opgrid/internal/progress"
	"github.com/specialistvlad/opgrid/internal/registry"
	"github.com/specialistvlad/opgrid/internal/sink"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	ctx        context.Context
	logger     *slog.Logger
	config     *Config
	loader     *loader.Loader
	recorder   *progress.Recorder
	console    *sink.Console
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. Extra modules are
// registered next to the loader's own work functions so custom plans can
// reference them. A plan that cannot be loaded or built is a fatal startup
// error and panics.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, cfg.NoColor, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	opts := []loader.Option{
		loader.WithMods(cfg.Mods...),
		loader.WithModules(modules...),
	}
	if cfg.PlanPath != "" {
		def, err := plan.Load(ctx, cfg.PlanPath)
		if err != nil {
			panic(fmt.Errorf("failed to load plan: %w", err))
		}
		logger.Debug("Plan loaded.", "path", cfg.PlanPath, "operations", def.Count())
		opts = append(opts, loader.WithPlan(def))
	}

	l, err := loader.New(ctx, opts...)
	if err != nil {
		panic(fmt.Errorf("failed to build operation tree: %w", err))
	}
	logger.Debug("Operation tree built.", "root", l.Root().Name(), "mods", len(cfg.Mods))

	return &App{
		outW:     outW,
		ctx:      ctx,
		logger:   logger,
		config:   cfg,
		loader:   l,
		recorder: &progress.Recorder{Keep: 1},
		console:  sink.NewConsole(outW, cfg.NoColor),
	}
}

// Loader returns the application's loader. This is primarily for testing.
func (a *App) Loader() *loader.Loader {
	return a.loader
}

// LastProgress returns the most recent snapshot emitted by the run.
func (a *App) LastProgress() (progress.Snapshot, bool) {
	return a.recorder.Last()
}
