package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/specialistvlad/opgrid/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, a *App, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.statusMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestStatusServer(t *testing.T) {
	cfg, err := NewConfig(Config{SourcesDir: writeSources(t), Mods: []string{"alpha"}})
	require.NoError(t, err)
	a, logs := SetupAppTest(t, cfg)

	t.Run("health", func(t *testing.T) {
		rec := serve(t, a, "/health")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK\n", rec.Body.String())
		assert.Contains(t, logs.String(), "Health check endpoint hit.")
	})

	t.Run("progress before the run", func(t *testing.T) {
		rec := serve(t, a, "/progress")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	require.NoError(t, a.Run(context.Background()))

	t.Run("progress after the run", func(t *testing.T) {
		rec := serve(t, a, "/progress")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var snap progress.Snapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		assert.Equal(t, progress.Snapshot{Stages: []string{"LoadMods"}, Progress: []float64{1}}, snap)
	})

	t.Run("artifacts of the whole tree", func(t *testing.T) {
		rec := serve(t, a, "/artifacts?types=info")
		require.Equal(t, http.StatusOK, rec.Code)

		var tree map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
		assert.Contains(t, tree, "target_sources")
		assert.Contains(t, tree, "API Setup")
	})

	t.Run("artifacts of a subtree", func(t *testing.T) {
		rec := serve(t, a, "/artifacts?path=LoadMods.Source%20Modification&types=operation")
		require.Equal(t, http.StatusOK, rec.Code)

		var tree map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
		assert.Contains(t, tree, "Injection Load")
		assert.NotContains(t, tree, "target_sources")
	})

	testCases := []struct {
		name   string
		target string
		code   int
	}{
		{"unknown type", "/artifacts?types=bogus", http.StatusBadRequest},
		{"empty path segment", "/artifacts?path=LoadMods..x", http.StatusBadRequest},
		{"unknown operation", "/artifacts?path=LoadMods.Nope", http.StatusNotFound},
		{"wrong root", "/artifacts?path=Other", http.StatusNotFound},
		{"wrong method", "/health", http.StatusMethodNotAllowed},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			method := http.MethodGet
			if tc.code == http.StatusMethodNotAllowed {
				method = http.MethodPost
			}
			rec := httptest.NewRecorder()
			a.statusMux().ServeHTTP(rec, httptest.NewRequest(method, tc.target, nil))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestCloseStatusServer_NotRunning(t *testing.T) {
	cfg, err := NewConfig(Config{SourcesDir: "src"})
	require.NoError(t, err)
	a, _ := SetupAppTest(t, cfg)
	assert.NoError(t, a.closeStatusServer())
}
