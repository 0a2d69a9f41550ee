package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A plan with a syntax error makes app.NewApp panic while loading it.
	invalidHCL := `
		operation "LoadMods" {
			work = "LoadMods"
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	planPath := filepath.Join(tempDir, "plan.hcl")
	require.NoError(t, os.WriteFile(planPath, []byte(invalidHCL), 0o600), "failed to set up test file")

	args := []string{"--plan", planPath, tempDir}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, args)

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	require.Contains(t, runErr.Error(), "application startup panicked")
	require.Contains(t, runErr.Error(), "failed to load plan")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return shouldExit=true.
	out := &bytes.Buffer{}
	err := run(out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "main.js"), []byte("main()"), 0o600))
	outDir := t.TempDir()
	report := filepath.Join(t.TempDir(), "artifacts.json")

	out := &bytes.Buffer{}
	err := run(out, []string{
		"--mod", "alpha",
		"--out", outDir,
		"--artifacts", report,
		"--no-color",
		srcDir,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(outDir, "main.js"))
	require.NoError(t, err)
	require.Equal(t, "main()", string(got))
	require.FileExists(t, report)
	require.Contains(t, out.String(), "LoadMods (100.0%)")
}
