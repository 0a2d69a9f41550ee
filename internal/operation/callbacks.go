package operation

import (
	"context"
	"slices"
)

// Callback invokes a binding: a single child, or every member of a group
// in order.
type Callback func(ctx context.Context, args ...any) error

// Callbacks exposes the bindings of the executing operation to its work
// function. Lookups go to the live binding table, so bindings attached to
// the operation during its own run can be invoked too.
type Callbacks struct {
	run       *run
	op        *Operation
	frame     *frame
	displayed bool
}

// Get returns the callback bound to name.
func (c Callbacks) Get(name string) (Callback, bool) {
	if c.op == nil {
		return nil, false
	}
	switch c.op.bindingKind(name) {
	case singleBinding:
		child, _ := c.op.Bound(name)
		return func(ctx context.Context, args ...any) error {
			return c.runChild(ctx, child, args)
		}, true
	case groupBinding:
		return func(ctx context.Context, args ...any) error {
			// The cursor reads the live group each step; members appended
			// before it reaches the end are executed in this pass.
			for i := 0; ; i++ {
				member, ok := c.op.groupMember(name, i)
				if !ok {
					return nil
				}
				if err := c.runChild(ctx, member, args); err != nil {
					return err
				}
			}
		}, true
	default:
		return nil, false
	}
}

// Call invokes the binding registered under name.
func (c Callbacks) Call(ctx context.Context, name string, args ...any) error {
	cb, ok := c.Get(name)
	if !ok {
		path := "<detached>"
		if c.op != nil {
			path = c.op.FullName()
		}
		return structural(path, ErrUnknownBinding, "%q", name)
	}
	return cb(ctx, args...)
}

// Has reports whether name is bound.
func (c Callbacks) Has(name string) bool {
	return c.op != nil && c.op.bindingKind(name) != noBinding
}

// Names returns the bound names in sorted order.
func (c Callbacks) Names() []string {
	if c.op == nil {
		return nil
	}
	names := c.op.BindingNames()
	slices.Sort(names)
	return names
}

func (c Callbacks) runChild(ctx context.Context, child *Operation, args []any) error {
	if c.frame.popped {
		return structural(c.op.FullName(), ErrStaleCallback, "binding invoked after return")
	}
	if err := c.run.execute(ctx, child, c.displayed, args); err != nil {
		return err
	}
	c.frame.completedChildWork += child.contribution
	return nil
}
