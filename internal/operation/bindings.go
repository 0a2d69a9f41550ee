package operation

import "slices"

type bindingKind int

const (
	noBinding bindingKind = iota
	singleBinding
	groupBinding
)

// bindingTable resolves invocation names to a single child or an ordered
// group. Groups are growable slices read by index so that members appended
// during a run are visible to an in-flight iteration. The owning
// operation's mutex guards it.
type bindingTable struct {
	singles map[string]*Operation
	groups  map[string][]*Operation
	order   []string
}

func newBindingTable() *bindingTable {
	return &bindingTable{
		singles: make(map[string]*Operation),
		groups:  make(map[string][]*Operation),
	}
}

func (b *bindingTable) kind(name string) bindingKind {
	if _, ok := b.singles[name]; ok {
		return singleBinding
	}
	if _, ok := b.groups[name]; ok {
		return groupBinding
	}
	return noBinding
}

// checkSingle reports the conflicting kind, if any, for a new single binding.
func (b *bindingTable) checkSingle(name string) (bindingKind, bool) {
	k := b.kind(name)
	return k, k == noBinding
}

// checkGroup reports the conflicting kind, if any, for appending to a group.
func (b *bindingTable) checkGroup(name string) (bindingKind, bool) {
	k := b.kind(name)
	return k, k != singleBinding
}

func (b *bindingTable) addSingle(name string, op *Operation) {
	b.singles[name] = op
	b.order = append(b.order, name)
}

func (b *bindingTable) addToGroup(name string, op *Operation) {
	if _, ok := b.groups[name]; !ok {
		b.order = append(b.order, name)
	}
	b.groups[name] = append(b.groups[name], op)
}

func (b *bindingTable) single(name string) *Operation {
	return b.singles[name]
}

func (b *bindingTable) member(name string, i int) (*Operation, bool) {
	group := b.groups[name]
	if i < 0 || i >= len(group) {
		return nil, false
	}
	return group[i], true
}

func (b *bindingTable) names() []string {
	return slices.Clone(b.order)
}

// BindingNames returns every binding name in declaration order.
func (o *Operation) BindingNames() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.bindings.names()
}

// Group returns a copy of the current members of a group binding.
func (o *Operation) Group(name string) []*Operation {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.bindings.groups[name])
}

// Bound returns the child registered under a single binding.
func (o *Operation) Bound(name string) (*Operation, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	op := o.bindings.single(name)
	return op, op != nil
}

func (o *Operation) bindingKind(name string) bindingKind {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.bindings.kind(name)
}

func (o *Operation) groupMember(name string, i int) (*Operation, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.bindings.member(name, i)
}
