package plan

import (
	"github.com/specialistvlad/opgrid/internal/oppath"
	"github.com/zclconf/go-cty/cty"
)

// Defaults applied to omitted attributes.
const (
	DefaultOwnEstimate  = 1.0
	DefaultContribution = 1.0
)

// Definition is the format-agnostic description of one operation and its
// children.
type Definition struct {
	Name              string
	Work              string
	OwnEstimate       float64
	Contribution      float64
	Binding           string
	Group             string
	ShowSubOperations bool
	// Meta is recorded as an info artifact named "meta" when not null.
	Meta     cty.Value
	Children []*Definition
	// Source is the file:line the definition was declared at.
	Source string
}

// Walk visits d and its descendants depth first with their dotted paths.
func (d *Definition) Walk(fn func(path *oppath.Address, def *Definition)) {
	d.walk(oppath.New(d.Name), fn)
}

func (d *Definition) walk(path *oppath.Address, fn func(*oppath.Address, *Definition)) {
	fn(path, d)
	for _, c := range d.Children {
		c.walk(path.Child(c.Name), fn)
	}
}

// WorkRefs maps every operation path to its work identifier.
func (d *Definition) WorkRefs() map[string]string {
	refs := make(map[string]string)
	d.Walk(func(path *oppath.Address, def *Definition) {
		refs[path.String()] = def.Work
	})
	return refs
}

// Count returns the number of operations in the definition.
func (d *Definition) Count() int {
	n := 0
	d.Walk(func(*oppath.Address, *Definition) { n++ })
	return n
}
