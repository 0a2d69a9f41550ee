package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/specialistvlad/opgrid/internal/artifact"
	"github.com/specialistvlad/opgrid/internal/ctxlog"
	"github.com/specialistvlad/opgrid/internal/oppath"
)

// healthHandler reports liveness.
func (app *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// progressHandler serves the latest snapshot, or 204 before the first one.
func (app *App) progressHandler(w http.ResponseWriter, r *http.Request) {
	last, ok := app.recorder.Last()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	app.writeJSON(w, last)
}

// artifactsHandler serves the export tree of the operation named by the
// path query parameter (the root when empty), filtered by the comma
// separated types parameter.
func (app *App) artifactsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	types, err := artifact.ParseTypes(query.Get("types"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op := app.loader.Root()
	if raw := query.Get("path"); raw != "" {
		addr, err := oppath.Parse(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		found, ok := op.Find(addr)
		if !ok {
			http.Error(w, fmt.Sprintf("operation %q not found", raw), http.StatusNotFound)
			return
		}
		op = found
	}
	app.writeJSON(w, op.ExportTree(types))
}

func (app *App) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.FromContext(app.ctx).Warn("Failed to write status response.", "error", err)
	}
}

func (app *App) statusMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", app.healthHandler)
	mux.HandleFunc("GET /progress", app.progressHandler)
	mux.HandleFunc("GET /artifacts", app.artifactsHandler)
	return mux
}

// statusServer initializes and runs the status HTTP server.
func (app *App) statusServer() {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Configuring status server.")

	addr := fmt.Sprintf(":%d", app.config.StatusPort)
	app.httpServer = &http.Server{
		Addr:              addr,
		Handler:           app.statusMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("🩺 Status server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Status server failed unexpectedly", "error", err)
		}
	}()
}

func (app *App) closeStatusServer() error {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Closing status server...")

	if app.httpServer == nil {
		logger.Debug("Status server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(app.ctx), 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down status server...")
	if err := app.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Status server shutdown failed", "error", err)
		return err
	}

	logger.Debug("Status server shut down gracefully.")
	return nil
}
