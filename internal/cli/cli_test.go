package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/opgrid/internal/artifact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("positional sources", func(t *testing.T) {
		cfg, exit, err := Parse([]string{"game/src"}, &bytes.Buffer{})
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, "game/src", cfg.SourcesDir)
		assert.Equal(t, "**/*", cfg.Include)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Empty(t, cfg.PlanPath)
	})

	t.Run("every flag", func(t *testing.T) {
		cfg, exit, err := Parse([]string{
			"--sources", "src",
			"-p", "plans/",
			"--include", "**/*.js",
			"--out", "build",
			"--mod", "alpha",
			"--mod", "beta,gamma",
			"--artifacts", "report.yaml",
			"--artifact-types", "error,info",
			"--progress-url", "http://localhost:3000/",
			"--status-port", "8081",
			"--log-format", "JSON",
			"--log-level", "debug",
			"--no-color",
		}, &bytes.Buffer{})
		require.NoError(t, err)
		require.False(t, exit)

		assert.Equal(t, "src", cfg.SourcesDir)
		assert.Equal(t, "plans/", cfg.PlanPath)
		assert.Equal(t, "**/*.js", cfg.Include)
		assert.Equal(t, "build", cfg.OutDir)
		assert.Equal(t, []string{"alpha", "beta", "gamma"}, cfg.Mods)
		assert.Equal(t, "report.yaml", cfg.ArtifactsPath)
		assert.Equal(t, artifact.Types(artifact.Error, artifact.Info), cfg.Types())
		assert.Equal(t, "http://localhost:3000/", cfg.ProgressURL)
		assert.Equal(t, 8081, cfg.StatusPort)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.True(t, cfg.NoColor)
	})

	t.Run("long plan flag wins over shorthand", func(t *testing.T) {
		cfg, _, err := Parse([]string{"-p", "short.hcl", "--plan", "long.hcl", "src"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "long.hcl", cfg.PlanPath)
	})

	t.Run("help", func(t *testing.T) {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse([]string{"-h"}, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("no sources prints usage", func(t *testing.T) {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(nil, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "SOURCES_DIR")
	})
}

func TestParse_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opgrid.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources = "from-file"
mods = ["alpha"]
log_level = "warn"
artifacts = "out.json"
`), 0o600))

	t.Run("file supplies defaults", func(t *testing.T) {
		cfg, exit, err := Parse([]string{"--config", path}, &bytes.Buffer{})
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, "from-file", cfg.SourcesDir)
		assert.Equal(t, []string{"alpha"}, cfg.Mods)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "out.json", cfg.ArtifactsPath)
	})

	t.Run("explicit flags win", func(t *testing.T) {
		cfg, _, err := Parse([]string{"--config", path, "--log-level", "error", "--mod", "beta", "cli-src"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "cli-src", cfg.SourcesDir)
		assert.Equal(t, []string{"beta"}, cfg.Mods)
		assert.Equal(t, "error", cfg.LogLevel)
	})
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"--workers", "3"}, "flag provided but not defined: -workers"},
		{"bad log format", []string{"--log-format", "xml", "src"}, "invalid log format"},
		{"bad log level", []string{"--log-level", "trace", "src"}, "invalid log level"},
		{"bad artifact types", []string{"--artifact-types", "bogus", "src"}, "unknown artifact type"},
		{"bad report extension", []string{"--artifacts", "out.csv", "src"}, "unsupported artifact export extension"},
		{"missing config file", []string{"--config", "does-not-exist.toml", "src"}, "failed to read config file"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, exit, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.False(t, exit)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}
