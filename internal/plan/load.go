package plan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/opgrid/internal/ctxlog"
)

// ErrNoRoot is returned when the plan files declare no top-level operation,
// or more than one.
var ErrNoRoot = errors.New("plan must declare exactly one top-level operation")

// Load reads every .hcl file under the given paths and returns the single
// root definition they declare. Directories are searched recursively and
// paths that do not exist are skipped.
func Load(ctx context.Context, paths ...string) (*Definition, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Plan loader started.", "path_count", len(paths))

	files, err := findPlanFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered plan files.", "count", len(files))

	parser := hclparse.NewParser()
	var roots []*Definition
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		defs, err := decodeFile(ctx, hclFile, file)
		if err != nil {
			return nil, err
		}
		roots = append(roots, defs...)
	}
	return single(roots)
}

// Parse decodes a plan held in memory. filename is used in diagnostics.
func Parse(ctx context.Context, src []byte, filename string) (*Definition, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	defs, err := decodeFile(ctx, hclFile, filename)
	if err != nil {
		return nil, err
	}
	return single(defs)
}

func decodeFile(ctx context.Context, file *hcl.File, filename string) ([]*Definition, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	defs := make([]*Definition, 0, len(root.Operations))
	for _, block := range root.Operations {
		def, err := translate(ctx, block)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// translate converts the HCL block tree into Definitions, filling defaults.
func translate(ctx context.Context, b *operationBlock) (*Definition, error) {
	logger := ctxlog.FromContext(ctx).With("operation", b.Name)
	logger.Debug("Translating HCL operation block.", "work", b.Work)

	def := &Definition{
		Name:              b.Name,
		Work:              b.Work,
		OwnEstimate:       DefaultOwnEstimate,
		Contribution:      DefaultContribution,
		Binding:           b.Binding,
		Group:             b.Group,
		ShowSubOperations: true,
		Source:            source(b.Body),
	}
	if b.OwnEstimate != nil {
		def.OwnEstimate = *b.OwnEstimate
	}
	if b.Contribution != nil {
		def.Contribution = *b.Contribution
	}
	if b.ShowSubOperations != nil {
		def.ShowSubOperations = *b.ShowSubOperations
	}
	if b.Meta != nil && !b.Meta.IsNull() {
		if !b.Meta.IsWhollyKnown() {
			return nil, fmt.Errorf("%s: operation '%s': meta must be a known value", def.Source, b.Name)
		}
		def.Meta = *b.Meta
	}
	if def.Binding != "" && def.Group != "" {
		return nil, fmt.Errorf("%s: operation '%s': binding and group are mutually exclusive", def.Source, b.Name)
	}

	for _, child := range b.Operations {
		c, err := translate(ctx, child)
		if err != nil {
			return nil, err
		}
		def.Children = append(def.Children, c)
	}
	return def, nil
}

// source renders the declaration position of a block body as file:line.
func source(body hcl.Body) string {
	if body == nil {
		return "<unknown>"
	}
	rng := body.MissingItemRange()
	return fmt.Sprintf("%s:%d", rng.Filename, rng.Start.Line)
}

func single(roots []*Definition) (*Definition, error) {
	if len(roots) != 1 {
		names := make([]string, 0, len(roots))
		for _, r := range roots {
			names = append(names, r.Name)
		}
		return nil, fmt.Errorf("%w, found %d %v", ErrNoRoot, len(roots), names)
	}
	return roots[0], nil
}

// findPlanFiles expands paths into a sorted, de-duplicated list of .hcl files.
func findPlanFiles(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(path), "**/*.hcl")
		if err != nil {
			return nil, fmt.Errorf("error searching %s: %w", path, err)
		}
		for _, m := range matches {
			add(filepath.Join(path, filepath.FromSlash(m)))
		}
	}
	slices.Sort(files)
	return files, nil
}
