package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/opgrid/internal/ctxlog"
	"github.com/specialistvlad/opgrid/internal/progress"
	"github.com/specialistvlad/opgrid/internal/report"
	"github.com/specialistvlad/opgrid/internal/sink"
	"github.com/specialistvlad/opgrid/internal/sources"
)

// Run initializes the configured mods against the source directory. The
// artifact report is written even when initialization fails.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	if a.config.StatusPort > 0 {
		a.statusServer()
		defer a.closeStatusServer()
	}

	sinks := []progress.Sink{a.recorder.Sink(), a.console.Sink()}
	if a.config.ProgressURL != "" {
		publisher, err := sink.DialSocketIO(ctx, sink.SocketIOConfig{URL: a.config.ProgressURL})
		if err != nil {
			a.logger.Warn("Progress publisher unavailable, continuing without it.", "error", err)
		} else {
			defer publisher.Close()
			sinks = append(sinks, publisher.Sink())
		}
	}

	dir := sources.Dir{
		Root:    a.config.SourcesDir,
		Include: a.config.Include,
		Out:     a.config.OutDir,
	}

	a.logger.Info("🚀 Initializing mods...", "mods", a.loader.Mods(), "sources", dir.Root)
	var errs []error
	if err := a.loader.Initialize(ctx, dir.Fetch, dir.Commit, progress.Fanout(sinks...)); err != nil {
		errs = append(errs, fmt.Errorf("initialization failed: %w", err))
	} else {
		a.logger.Info("🏁 Initialization finished.")
	}

	if a.config.ArtifactsPath != "" {
		tree := a.loader.Root().ExportTree(a.config.Types())
		if err := report.WriteFile(ctx, a.config.ArtifactsPath, tree); err != nil {
			errs = append(errs, fmt.Errorf("failed to export artifacts: %w", err))
		}
	}

	a.logger.Debug("App.Run method finished.")
	return errors.Join(errs...)
}
