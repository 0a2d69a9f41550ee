package oppath

import (
	"slices"
	"strings"
)

// Separator joins the segments of an Address.
const Separator = "."

// Address is the structured, root-first path of an operation.
type Address struct {
	Path []string
}

// New builds an Address from the given names.
func New(names ...string) *Address {
	return &Address{Path: slices.Clone(names)}
}

// String serializes the Address into its canonical path string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	return strings.Join(a.Path, Separator)
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return slices.Equal(a.Path, other.Path)
}

// Child returns a new Address one level below a.
func (a *Address) Child(name string) *Address {
	if a == nil {
		return New(name)
	}
	return &Address{Path: append(slices.Clone(a.Path), name)}
}

// Root returns the first segment, or "" for an empty address.
func (a *Address) Root() string {
	if a == nil || len(a.Path) == 0 {
		return ""
	}
	return a.Path[0]
}

// Rest returns the address without its root segment.
func (a *Address) Rest() *Address {
	if a == nil || len(a.Path) <= 1 {
		return &Address{}
	}
	return &Address{Path: slices.Clone(a.Path[1:])}
}

// Len returns the number of segments.
func (a *Address) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Path)
}
