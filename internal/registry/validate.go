package registry

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/opgrid/internal/ctxlog"
)

// Validate checks that every work identifier referenced by a plan is
// registered. refs maps an operation's dotted path to its work identifier.
// All missing identifiers are reported together.
func (r *Registry) Validate(ctx context.Context, refs map[string]string) error {
	logger := ctxlog.FromContext(ctx)

	paths := make([]string, 0, len(refs))
	for path := range refs {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	var errs []string
	for _, path := range paths {
		if !r.Has(refs[path]) {
			errs = append(errs, fmt.Sprintf("operation '%s': work '%s' is not registered", path, refs[path]))
		}
	}

	if len(errs) > 0 {
		logger.Error("Registry validation failed.", "errors", len(errs))
		return fmt.Errorf("%w:\n- %s", ErrUnknownWork, strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.", "operations", len(refs))
	return nil
}
