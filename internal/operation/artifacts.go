package operation

import (
	"maps"

	"github.com/specialistvlad/opgrid/internal/artifact"
)

// Tree is the nested export of an operation subtree: child names map to
// child trees and artifact names map to plain payload values.
type Tree map[string]any

// AddArtifact attaches a to o, replacing any artifact with the same name.
func (o *Operation) AddArtifact(a *artifact.Artifact) {
	a.SetOwner(o)

	o.mu.Lock()
	defer o.mu.Unlock()
	for i, existing := range o.artifacts {
		if existing.Name() == a.Name() {
			o.artifacts[i] = a
			return
		}
	}
	o.artifacts = append(o.artifacts, a)
}

// Record builds an artifact and attaches it to o.
func (o *Operation) Record(typ artifact.Type, name string, payload any, opts ...artifact.Option) (*artifact.Artifact, error) {
	a, err := artifact.New(typ, name, payload, opts...)
	if err != nil {
		return nil, structural(o.FullName(), err, "")
	}
	o.AddArtifact(a)
	return a, nil
}

// Artifacts returns the attached artifacts in attach order.
func (o *Operation) Artifacts() []*artifact.Artifact {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]*artifact.Artifact, len(o.artifacts))
	copy(out, o.artifacts)
	return out
}

// Artifact returns the attached artifact with the given name.
func (o *Operation) Artifact(name string) (*artifact.Artifact, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, a := range o.artifacts {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// ExportTree collects the artifacts matching filter across o's subtree.
// Every child appears under its name, as an empty tree when nothing below
// it matches. An object payload is merged key by key over a child tree of
// the same name; any other payload replaces it. A nil filter matches all.
func (o *Operation) ExportTree(filter artifact.Filter) Tree {
	if filter == nil {
		filter = artifact.All
	}
	tree := Tree{}
	for _, child := range o.Children() {
		tree[child.name] = child.ExportTree(filter)
	}
	for _, a := range o.Artifacts() {
		if !filter.Match(a) {
			continue
		}
		value := a.Value()
		payload, isObject := value.(map[string]any)
		existing, hasChild := tree[a.Name()].(Tree)
		if isObject && hasChild {
			merged := maps.Clone(existing)
			maps.Copy(merged, payload)
			tree[a.Name()] = merged
			continue
		}
		tree[a.Name()] = value
	}
	return tree
}
