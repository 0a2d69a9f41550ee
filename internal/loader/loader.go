package loader

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/specialistvlad/opgrid/internal/ctxlog"
	"github.com/specialistvlad/opgrid/internal/operation"
	"github.com/specialistvlad/opgrid/internal/oppath"
	"github.com/specialistvlad/opgrid/internal/plan"
	"github.com/specialistvlad/opgrid/internal/progress"
	"github.com/specialistvlad/opgrid/internal/registry"
)

//go:embed plan.hcl
var defaultPlan []byte

// DefaultPlanName is the diagnostic file name of the embedded plan.
const DefaultPlanName = "loader/plan.hcl"

// FetchFunc supplies the target sources keyed by path.
type FetchFunc func(ctx context.Context) (map[string]string, error)

// CommitFunc persists the modified sources keyed by path.
type CommitFunc func(ctx context.Context, modified map[string]string) error

// Loader owns one stage tree and drives runs of it.
type Loader struct {
	root     *operation.Operation
	registry *registry.Registry
	mods     []string
}

type options struct {
	def     *plan.Definition
	mods    []string
	modules []registry.Module
}

// Option configures a Loader.
type Option func(*options)

// WithPlan replaces the embedded stage tree.
func WithPlan(def *plan.Definition) Option {
	return func(o *options) { o.def = def }
}

// WithMods sets the mods to load, in the order given.
func WithMods(mods ...string) Option {
	return func(o *options) { o.mods = append(o.mods, mods...) }
}

// WithModules registers extra work functions for custom plans.
func WithModules(modules ...registry.Module) Option {
	return func(o *options) { o.modules = append(o.modules, modules...) }
}

// DefaultPlan parses the embedded stage tree.
func DefaultPlan(ctx context.Context) (*plan.Definition, error) {
	return plan.Parse(ctx, defaultPlan, DefaultPlanName)
}

// New builds the stage tree and registers the stage work functions.
func New(ctx context.Context, opts ...Option) (*Loader, error) {
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}

	seen := make(map[string]struct{}, len(cfg.mods))
	for _, mod := range cfg.mods {
		if !oppath.ValidName(mod) {
			return nil, fmt.Errorf("invalid mod name %q: must be non-empty and must not contain %q", mod, oppath.Separator)
		}
		if _, dup := seen[mod]; dup {
			return nil, fmt.Errorf("mod %q listed more than once", mod)
		}
		seen[mod] = struct{}{}
	}

	def := cfg.def
	if def == nil {
		var err error
		if def, err = DefaultPlan(ctx); err != nil {
			return nil, fmt.Errorf("loading embedded plan: %w", err)
		}
	}

	reg := registry.New()
	reg.Load(&Module{Mods: cfg.mods})
	reg.Load(cfg.modules...)

	root, err := plan.Build(ctx, def, reg)
	if err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("Loader created.", "root", root.Name(), "mods", cfg.mods)
	return &Loader{root: root, registry: reg, mods: cfg.mods}, nil
}

// Root returns the stage tree.
func (l *Loader) Root() *operation.Operation { return l.root }

// Mods returns the configured mods.
func (l *Loader) Mods() []string { return append([]string(nil), l.mods...) }

// Initialize runs the stage tree once. fetch and commit are passed to the
// root work function as its initial arguments.
func (l *Loader) Initialize(ctx context.Context, fetch FetchFunc, commit CommitFunc, sink progress.Sink) error {
	if fetch == nil || commit == nil {
		return fmt.Errorf("loader: fetch and commit callbacks are required")
	}
	return l.root.Execute(ctx, sink, fetch, commit)
}
