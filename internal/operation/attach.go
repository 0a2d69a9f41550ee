package operation

// Attach registers child under a single binding. An empty bindingName
// defaults to the child's work function name.
func (o *Operation) Attach(child *Operation, bindingName string) error {
	return o.attach(child, bindingName, false)
}

// AttachToGroup appends child to the named group binding, creating the
// group on first use. Members run in insertion order.
func (o *Operation) AttachToGroup(child *Operation, groupName string) error {
	return o.attach(child, groupName, true)
}

func (o *Operation) attach(child *Operation, name string, group bool) error {
	if name == "" {
		name = child.WorkName()
	}
	// Paths are resolved before any lock is held; FullName takes read locks
	// on every ancestor.
	path := o.FullName() + "." + child.name

	for cur := o; cur != nil; cur = cur.Parent() {
		if cur == child {
			return structural(path, ErrCycle, "")
		}
	}

	child.mu.Lock()
	defer child.mu.Unlock()
	if child.executing {
		return structural(path, ErrExecuting, "cannot attach an executing operation")
	}
	if child.parent != nil {
		return structural(path, ErrAlreadyAttached, "")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	for _, sibling := range o.children {
		if sibling.name == child.name {
			return structural(path, ErrDuplicateName, "")
		}
	}

	if group {
		if kind, ok := o.bindings.checkGroup(name); !ok {
			return structural(path, ErrBindingConflict, "%q is already bound as %s", name, kind)
		}
		o.bindings.addToGroup(name, child)
	} else {
		if kind, ok := o.bindings.checkSingle(name); !ok {
			return structural(path, ErrBindingConflict, "%q is already bound as %s", name, kind)
		}
		o.bindings.addSingle(name, child)
	}

	o.children = append(o.children, child)
	o.childWorkTotal += child.contribution
	child.parent = o
	return nil
}

func (k bindingKind) String() string {
	switch k {
	case singleBinding:
		return "an operation"
	case groupBinding:
		return "an operation group"
	default:
		return "nothing"
	}
}
