package artifact

import (
	"slices"
	"strings"
)

// Filter selects artifacts for export.
type Filter interface {
	Match(a *Artifact) bool
}

// Predicate adapts a plain function to the Filter interface.
type Predicate func(a *Artifact) bool

// Match implements Filter.
func (p Predicate) Match(a *Artifact) bool {
	return p(a)
}

// TypeSet is a Filter matching artifacts whose type is a member of the set.
type TypeSet map[Type]struct{}

// Types builds a TypeSet from the given types.
func Types(types ...Type) TypeSet {
	set := make(TypeSet, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

// Match implements Filter.
func (s TypeSet) Match(a *Artifact) bool {
	_, ok := s[a.Type()]
	return ok
}

// Sorted returns the members of the set in a stable order.
func (s TypeSet) Sorted() []Type {
	out := make([]Type, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// ParseTypes parses a comma separated list such as "error,info".
// An empty string yields every type.
func ParseTypes(csv string) (TypeSet, error) {
	if strings.TrimSpace(csv) == "" {
		return Types(AllTypes...), nil
	}
	set := TypeSet{}
	for _, raw := range strings.Split(csv, ",") {
		t, err := ParseType(raw)
		if err != nil {
			return nil, err
		}
		set[t] = struct{}{}
	}
	return set, nil
}

// All matches every artifact.
var All Filter = Predicate(func(*Artifact) bool { return true })
