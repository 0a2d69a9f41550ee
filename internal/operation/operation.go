package operation

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/specialistvlad/opgrid/internal/artifact"
	"github.com/specialistvlad/opgrid/internal/oppath"
	"github.com/specialistvlad/opgrid/internal/progress"
)

// WorkFunc is the body of an operation. It must invoke each of its bindings
// exactly once (a group once in total) and may report its own progress any
// number of times. args are whatever the invoking callback was given.
type WorkFunc func(ctx context.Context, op *Operation, subs Callbacks, report ProgressFunc, args ...any) error

// ProgressFunc reports the fraction (0-1) of the work function's own
// estimate that is done.
type ProgressFunc func(ctx context.Context, fraction float64) error

// Work pairs a work function with the identifier it is known by. The name
// is the default binding key under the parent.
type Work struct {
	Name string
	Fn   WorkFunc
}

// Operation is a named unit of work with a declared own workload and a
// fixed contribution to its parent's workload.
type Operation struct {
	name              string
	work              Work
	ownEstimate       float64
	contribution      float64
	showSubOperations bool

	// mu guards everything below; the fields above never change.
	mu             sync.RWMutex
	parent         *Operation
	children       []*Operation
	bindings       *bindingTable
	childWorkTotal float64
	artifacts      []*artifact.Artifact
	executing      bool
}

type options struct {
	hideSubOperations bool
	binding           string
	group             string
	parent            *Operation
}

// Option configures an Operation at construction time.
type Option func(*options)

// WithHiddenSubOperations keeps descendants out of progress stage names.
func WithHiddenSubOperations() Option {
	return func(o *options) { o.hideSubOperations = true }
}

// WithBinding sets the single binding name used when attaching to a parent.
func WithBinding(name string) Option {
	return func(o *options) { o.binding = name }
}

// WithGroup attaches to the parent as a member of the named group.
func WithGroup(name string) Option {
	return func(o *options) { o.group = name }
}

// WithParent attaches the new operation to parent immediately.
func WithParent(parent *Operation) Option {
	return func(o *options) { o.parent = parent }
}

// New builds an operation and, when WithParent is given, attaches it.
func New(name string, work Work, ownEstimate, contribution float64, opts ...Option) (*Operation, error) {
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}

	if !oppath.ValidName(name) {
		return nil, structural(name, ErrInvalidName, "name must be non-empty and must not contain %q", oppath.Separator)
	}
	if err := validateWork(name, work); err != nil {
		return nil, err
	}
	if !validEstimate(ownEstimate) || !validEstimate(contribution) {
		return nil, structural(name, ErrInvalidEstimate, "own=%v contribution=%v", ownEstimate, contribution)
	}
	if cfg.binding != "" && cfg.group != "" {
		return nil, structural(name, ErrInvalidOptions, "cannot bind both as %q and into group %q", cfg.binding, cfg.group)
	}
	if cfg.parent == nil && (cfg.binding != "" || cfg.group != "") {
		return nil, structural(name, ErrInvalidOptions, "binding requires a parent")
	}

	op := &Operation{
		name:              name,
		work:              work,
		ownEstimate:       ownEstimate,
		contribution:      contribution,
		showSubOperations: !cfg.hideSubOperations,
		bindings:          newBindingTable(),
	}

	if cfg.parent != nil {
		var err error
		if cfg.group != "" {
			err = cfg.parent.AttachToGroup(op, cfg.group)
		} else {
			err = cfg.parent.Attach(op, cfg.binding)
		}
		if err != nil {
			return nil, err
		}
	}
	return op, nil
}

// Create builds a child of o. It is New with WithParent(o).
func (o *Operation) Create(name string, work Work, ownEstimate, contribution float64, opts ...Option) (*Operation, error) {
	return New(name, work, ownEstimate, contribution, append(opts, WithParent(o))...)
}

// ValidateWork applies the naming rules New enforces on work, reporting
// errors against the work's own name.
func ValidateWork(work Work) error {
	return validateWork(work.Name, work)
}

func validateWork(name string, work Work) error {
	switch {
	case work.Fn == nil:
		return structural(name, ErrInvalidWork, "work function is nil")
	case strings.TrimSpace(work.Name) == "":
		return structural(name, ErrInvalidWork, "work function must be named (cannot be anonymous)")
	case numeric(work.Name):
		return structural(name, ErrInvalidWork, "work function name %q cannot be numeric", work.Name)
	}
	return nil
}

// numeric mirrors integer parsing: an optional sign followed by a digit is
// enough to read as a number.
func numeric(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "+-")
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func validEstimate(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// Name returns the human-readable operation name.
func (o *Operation) Name() string { return o.name }

// WorkName returns the work function identifier, the default binding key.
func (o *Operation) WorkName() string { return o.work.Name }

// OwnEstimate returns the predicted work of the operation's own function.
func (o *Operation) OwnEstimate() float64 { return o.ownEstimate }

// Contribution returns the fixed weight this operation adds to its parent.
func (o *Operation) Contribution() float64 { return o.contribution }

// ShowSubOperations reports whether descendants appear in progress stages.
func (o *Operation) ShowSubOperations() bool { return o.showSubOperations }

// ChildWorkTotal returns the summed contribution of all attached children.
func (o *Operation) ChildWorkTotal() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.childWorkTotal
}

// TotalEstimate is ChildWorkTotal plus OwnEstimate.
func (o *Operation) TotalEstimate() float64 {
	return o.ChildWorkTotal() + o.ownEstimate
}

// Parent returns the parent operation, or nil for a root.
func (o *Operation) Parent() *Operation {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.parent
}

// Executing reports whether the operation's execution frame is active.
func (o *Operation) Executing() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.executing
}

// Children returns the attached children in attach order.
func (o *Operation) Children() []*Operation {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]*Operation, len(o.children))
	copy(out, o.children)
	return out
}

// Child returns the direct child with the given operation name.
func (o *Operation) Child(name string) (*Operation, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, c := range o.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Address returns the root-first path of the operation.
func (o *Operation) Address() *oppath.Address {
	var names []string
	for cur := o; cur != nil; cur = cur.Parent() {
		names = append(names, cur.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return oppath.New(names...)
}

// FullName returns the dotted root-to-operation path.
func (o *Operation) FullName() string {
	return o.Address().String()
}

// Root returns the top-most ancestor.
func (o *Operation) Root() *Operation {
	cur := o
	for p := cur.Parent(); p != nil; p = cur.Parent() {
		cur = p
	}
	return cur
}

// Find resolves a path whose first segment names o itself.
func (o *Operation) Find(addr *oppath.Address) (*Operation, bool) {
	if addr.Len() == 0 || addr.Root() != o.name {
		return nil, false
	}
	cur := o
	for _, name := range addr.Path[1:] {
		next, ok := cur.Child(name)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Walk visits o and every descendant depth first, parents before children.
func (o *Operation) Walk(fn func(op *Operation, depth int)) {
	o.walk(fn, 0)
}

func (o *Operation) walk(fn func(*Operation, int), depth int) {
	fn(o, depth)
	for _, c := range o.Children() {
		c.walk(fn, depth+1)
	}
}

// frame returns the static projection inputs of o.
func (o *Operation) frame() progress.Frame {
	return progress.Frame{
		ChildWorkTotal: o.ChildWorkTotal(),
		OwnEstimate:    o.ownEstimate,
		Contribution:   o.contribution,
	}
}
