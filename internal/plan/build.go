package plan

import (
	"context"
	"fmt"

	"github.com/specialistvlad/opgrid/internal/artifact"
	"github.com/specialistvlad/opgrid/internal/ctxlog"
	"github.com/specialistvlad/opgrid/internal/operation"
	"github.com/specialistvlad/opgrid/internal/registry"
)

// MetaArtifact is the name of the info artifact holding a definition's meta.
const MetaArtifact = "meta"

// Build validates def against reg and creates the operation tree it
// describes. Children are attached in declaration order; a child with
// neither binding nor group is bound under its work identifier.
func Build(ctx context.Context, def *Definition, reg *registry.Registry) (*operation.Operation, error) {
	if err := reg.Validate(ctx, def.WorkRefs()); err != nil {
		return nil, err
	}
	root, err := build(def, reg, nil)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Operation tree built.", "root", root.Name(), "operations", def.Count(), "total_estimate", root.TotalEstimate())
	return root, nil
}

func build(def *Definition, reg *registry.Registry, parent *operation.Operation) (*operation.Operation, error) {
	work, err := reg.Work(def.Work)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.Source, err)
	}

	var opts []operation.Option
	if !def.ShowSubOperations {
		opts = append(opts, operation.WithHiddenSubOperations())
	}
	if parent != nil {
		opts = append(opts, operation.WithParent(parent))
		switch {
		case def.Group != "":
			opts = append(opts, operation.WithGroup(def.Group))
		case def.Binding != "":
			opts = append(opts, operation.WithBinding(def.Binding))
		}
	}

	op, err := operation.New(def.Name, work, def.OwnEstimate, def.Contribution, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.Source, err)
	}
	if !def.Meta.IsNull() {
		if _, err := op.Record(artifact.Info, MetaArtifact, def.Meta); err != nil {
			return nil, fmt.Errorf("%s: %w", def.Source, err)
		}
	}

	for _, child := range def.Children {
		if _, err := build(child, reg, op); err != nil {
			return nil, err
		}
	}
	return op, nil
}
