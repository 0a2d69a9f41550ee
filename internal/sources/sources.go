// Package sources supplies target sources from a directory and persists
// modified sources to another, for use as loader callbacks.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/specialistvlad/opgrid/internal/ctxlog"
)

// DefaultInclude selects every file.
const DefaultInclude = "**/*"

// ErrUnsafePath is returned when a source path would escape the output
// directory.
var ErrUnsafePath = errors.New("source path escapes the output directory")

// Dir reads sources from Root and writes modified sources to Out. Paths
// are slash-separated and relative to the directory.
type Dir struct {
	Root    string
	Include string
	Out     string
}

// Fetch reads every file under Root matching Include.
func (d Dir) Fetch(ctx context.Context) (map[string]string, error) {
	logger := ctxlog.FromContext(ctx).With("root", d.Root)
	include := d.Include
	if include == "" {
		include = DefaultInclude
	}
	if !doublestar.ValidatePattern(include) {
		return nil, fmt.Errorf("invalid include pattern %q", include)
	}

	info, err := os.Stat(d.Root)
	if err != nil {
		return nil, fmt.Errorf("reading sources: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reading sources: %s is not a directory", d.Root)
	}

	fsys := os.DirFS(d.Root)
	matches, err := doublestar.Glob(fsys, include, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", d.Root, err)
	}

	out := make(map[string]string, len(matches))
	for _, path := range matches {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		out[path] = string(data)
	}
	logger.Debug("Fetched target sources.", "include", include, "count", len(out))
	return out, nil
}

// Commit writes every modified source under Out, creating directories as
// needed. Nothing is written when Out is empty.
func (d Dir) Commit(ctx context.Context, modified map[string]string) error {
	logger := ctxlog.FromContext(ctx)
	if d.Out == "" {
		logger.Info("No output directory configured, modified sources discarded.", "count", len(modified))
		return nil
	}

	for path, src := range modified {
		local := filepath.FromSlash(path)
		if !filepath.IsLocal(local) {
			return fmt.Errorf("%w: %q", ErrUnsafePath, path)
		}
		target := filepath.Join(d.Out, local)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", path, err)
		}
		if err := os.WriteFile(target, []byte(src), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	logger.Info("Committed modified sources.", "out", d.Out, "count", len(modified))
	return nil
}
