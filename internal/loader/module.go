package loader

import (
	"context"
	"fmt"
	"maps"

	"github.com/specialistvlad/opgrid/internal/artifact"
	"github.com/specialistvlad/opgrid/internal/ctxlog"
	"github.com/specialistvlad/opgrid/internal/operation"
	"github.com/specialistvlad/opgrid/internal/registry"
)

// Group binding names that ordering stages fill with one member per mod.
const (
	GenerateBindingsGroup = "generateBindings"
	PlanInjectionsGroup   = "planInjections"
)

// Module registers the stage work functions of the default plan, plus the
// generic Sequence and Placeholder works for custom plans.
type Module struct {
	Mods []string
}

type stage = operation.WorkFunc

// Register registers the handlers with the registry.
func (m *Module) Register(r *registry.Registry) {
	works := map[string]stage{
		"LoadMods":                    m.loadMods,
		"ModAcquisition":              m.modAcquisition,
		"ModLoadOrdering":             modLoadOrdering,
		"SourceModification":          sequenceOf("CachedLoad", "InjectionLoad"),
		"CachedLoad":                  cachedLoad,
		"InjectionLoad":               sequenceOf("InjectionBindingAcquisition", "InjectionBindingOrdering", "InjectionBindingGeneration", "InjectionPlanning", "InjectionApplication", "ModdedSourceGeneration"),
		"InjectionBindingAcquisition": bindingAcquisition,
		"InjectionBindingOrdering":    bindingOrdering,
		"InjectionBindingGeneration":  optionalGroup(GenerateBindingsGroup),
		"GenerateModBindings":         generateModBindings,
		"InjectionPlanning":           optionalGroup(PlanInjectionsGroup),
		"PlanModInjections":           planModInjections,
		"InjectionApplication":        injectionApplication,
		"ModdedSourceGeneration":      moddedSourceGeneration,
		"LoadModifiedSources":         loadModifiedSources,
		"ModPreInitialization":        placeholder,
		"APISetup":                    sequenceOf("APIAcquisition", "APILoadOrdering", "APILoading"),
		"APIAcquisition":              placeholder,
		"APILoadOrdering":             placeholder,
		"APILoading":                  placeholder,
		"FinalInitialization":         placeholder,
		"Sequence":                    sequence,
		"Placeholder":                 placeholder,
	}
	for name, fn := range works {
		r.RegisterWork(name, fn)
	}
}

func (m *Module) loadMods(ctx context.Context, op *operation.Operation, subs operation.Callbacks, report operation.ProgressFunc, args ...any) error {
	fetch, commit, err := harnessArgs(args)
	if err != nil {
		return err
	}

	sources, err := fetch(ctx)
	if err != nil {
		if a, recErr := op.Record(artifact.Error, "fetch_failed", err.Error()); recErr == nil {
			a.Log(ctx, "Fetching target sources failed.")
		}
		return fmt.Errorf("fetching target sources: %w", err)
	}
	a, err := op.Record(artifact.Info, "target_sources", sizes(sources))
	if err != nil {
		return err
	}
	a.Log(ctx, "Fetched target sources.", "count", len(sources))
	if err := report(ctx, 1); err != nil {
		return err
	}

	st := newState(sources, commit)
	return sequenceOf(
		"ModAcquisition",
		"ModLoadOrdering",
		"SourceModification",
		"LoadModifiedSources",
		"ModPreInitialization",
		"APISetup",
		"FinalInitialization",
	)(ctx, op, subs, report, st)
}

func (m *Module) modAcquisition(ctx context.Context, op *operation.Operation, _ operation.Callbacks, report operation.ProgressFunc, args ...any) error {
	st, err := stateArg(args)
	if err != nil {
		return err
	}
	st.mods = append([]string(nil), m.Mods...)
	if _, err := op.Record(artifact.Debug, "mods", st.mods); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Mods acquired.", "count", len(st.mods))
	return report(ctx, 1)
}

// modLoadOrdering keeps the configured order and fans out one planning
// member per mod under the InjectionPlanning stage.
func modLoadOrdering(ctx context.Context, op *operation.Operation, _ operation.Callbacks, report operation.ProgressFunc, args ...any) error {
	st, err := stateArg(args)
	if err != nil {
		return err
	}
	if _, err := op.Record(artifact.Debug, "load_order", st.mods); err != nil {
		return err
	}
	return fanOut(ctx, op, report, st.mods, "InjectionPlanning", PlanInjectionsGroup, "PlanModInjections", planModInjections)
}

func cachedLoad(ctx context.Context, op *operation.Operation, _ operation.Callbacks, report operation.ProgressFunc, args ...any) error {
	st, err := stateArg(args)
	if err != nil {
		return err
	}
	if _, err := op.Record(artifact.Debug, "cache", map[string]int{"hits": 0, "misses": len(st.sources)}); err != nil {
		return err
	}
	return report(ctx, 1)
}

func bindingAcquisition(ctx context.Context, op *operation.Operation, _ operation.Callbacks, report operation.ProgressFunc, args ...any) error {
	st, err := stateArg(args)
	if err != nil {
		return err
	}
	if _, err := op.Record(artifact.Debug, "binding_sources", st.paths()); err != nil {
		return err
	}
	return report(ctx, 1)
}

func bindingOrdering(ctx context.Context, op *operation.Operation, _ operation.Callbacks, report operation.ProgressFunc, args ...any) error {
	st, err := stateArg(args)
	if err != nil {
		return err
	}
	return fanOut(ctx, op, report, st.mods, "InjectionBindingGeneration", GenerateBindingsGroup, "GenerateModBindings", generateModBindings)
}

func generateModBindings(ctx context.Context, op *operation.Operation, _ operation.Callbacks, report operation.ProgressFunc, args ...any) error {
	st, err := stateArg(args)
	if err != nil {
		return err
	}
	st.bindings[op.Name()] = st.paths()
	if _, err := op.Record(artifact.Debug, "bindings", st.bindings[op.Name()]); err != nil {
		return err
	}
	return report(ctx, 1)
}

func planModInjections(ctx context.Context, op *operation.Operation, _ operation.Callbacks, report operation.ProgressFunc, args ...any) error {
	st, err := stateArg(args)
	if err != nil {
		return err
	}
	targets := st.bindings[op.Name()]
	if targets == nil {
		targets = []string{}
	}
	p := injectionPlan{Mod: op.Name(), Targets: targets}
	st.plans = append(st.plans, p)
	if _, err := op.Record(artifact.Operation, "plan", p); err != nil {
		return err
	}
	return report(ctx, 1)
}

func injectionApplication(ctx context.Context, op *operation.Operation, _ operation.Callbacks, report operation.ProgressFunc, args ...any) error {
	st, err := stateArg(args)
	if err != nil {
		return err
	}
	st.modified = maps.Clone(st.sources)
	if st.modified == nil {
		st.modified = map[string]string{}
	}
	for i, p := range st.plans {
		ctxlog.FromContext(ctx).Debug("Applying injection plan.", "mod", p.Mod, "targets", len(p.Targets))
		if err := report(ctx, float64(i+1)/float64(len(st.plans))); err != nil {
			return err
		}
	}
	if _, err := op.Record(artifact.Debug, "applied", len(st.plans)); err != nil {
		return err
	}
	return report(ctx, 1)
}

func moddedSourceGeneration(ctx context.Context, op *operation.Operation, _ operation.Callbacks, report operation.ProgressFunc, args ...any) error {
	st, err := stateArg(args)
	if err != nil {
		return err
	}
	if _, err := op.Record(artifact.Source, "modified_sources", sizes(st.modified)); err != nil {
		return err
	}
	return report(ctx, 1)
}

func loadModifiedSources(ctx context.Context, op *operation.Operation, _ operation.Callbacks, report operation.ProgressFunc, args ...any) error {
	st, err := stateArg(args)
	if err != nil {
		return err
	}
	if err := st.commit(ctx, st.modified); err != nil {
		if a, recErr := op.Record(artifact.Error, "commit_failed", err.Error()); recErr == nil {
			a.Log(ctx, "Committing modified sources failed.")
		}
		return fmt.Errorf("committing modified sources: %w", err)
	}
	return report(ctx, 1)
}

// fanOut appends one member per mod to the group of the first operation in
// the tree whose work is targetWork. Members already present from an earlier
// run are kept.
func fanOut(ctx context.Context, op *operation.Operation, report operation.ProgressFunc, mods []string, targetWork, group, memberWork string, fn stage) error {
	logger := ctxlog.FromContext(ctx)
	target := findByWork(op.Root(), targetWork)
	if target == nil {
		logger.Warn("No stage to fan out to.", "work", targetWork)
		return report(ctx, 1)
	}

	for i, mod := range mods {
		if _, exists := target.Child(mod); !exists {
			_, err := target.Create(mod, operation.Work{Name: memberWork, Fn: fn}, 1, 1, operation.WithGroup(group))
			if err != nil {
				return err
			}
			logger.Debug("Appended group member.", "target", target.FullName(), "group", group, "mod", mod)
		}
		if err := report(ctx, float64(i+1)/float64(len(mods))); err != nil {
			return err
		}
	}
	return report(ctx, 1)
}

func findByWork(root *operation.Operation, work string) *operation.Operation {
	var found *operation.Operation
	root.Walk(func(op *operation.Operation, _ int) {
		if found == nil && op.WorkName() == work {
			found = op
		}
	})
	return found
}

// sequenceOf calls the named bindings in order, passing the arguments on.
func sequenceOf(names ...string) stage {
	return func(ctx context.Context, _ *operation.Operation, subs operation.Callbacks, _ operation.ProgressFunc, args ...any) error {
		for _, name := range names {
			if err := subs.Call(ctx, name, args...); err != nil {
				return err
			}
		}
		return nil
	}
}

// optionalGroup calls a group binding if any member was ever attached.
func optionalGroup(name string) stage {
	return func(ctx context.Context, _ *operation.Operation, subs operation.Callbacks, _ operation.ProgressFunc, args ...any) error {
		if !subs.Has(name) {
			return nil
		}
		return subs.Call(ctx, name, args...)
	}
}

// sequence calls every binding of op in declaration order.
func sequence(ctx context.Context, op *operation.Operation, subs operation.Callbacks, _ operation.ProgressFunc, args ...any) error {
	for _, name := range op.BindingNames() {
		if err := subs.Call(ctx, name, args...); err != nil {
			return err
		}
	}
	return nil
}

func placeholder(ctx context.Context, _ *operation.Operation, _ operation.Callbacks, report operation.ProgressFunc, _ ...any) error {
	return report(ctx, 1)
}
