package plan

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/opgrid/internal/artifact"
	"github.com/specialistvlad/opgrid/internal/operation"
	"github.com/specialistvlad/opgrid/internal/progress"
	"github.com/specialistvlad/opgrid/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testModule struct{}

func (testModule) Register(r *registry.Registry) {
	r.RegisterWork("sequence", func(ctx context.Context, op *operation.Operation, subs operation.Callbacks, _ operation.ProgressFunc, args ...any) error {
		for _, name := range op.BindingNames() {
			if err := subs.Call(ctx, name, args...); err != nil {
				return err
			}
		}
		return nil
	})
	r.RegisterWork("leaf", func(ctx context.Context, _ *operation.Operation, _ operation.Callbacks, report operation.ProgressFunc, _ ...any) error {
		return report(ctx, 1)
	})
}

func newRegistry() *registry.Registry {
	r := registry.New()
	r.Load(testModule{})
	return r
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	def, err := Load(ctx, filepath.Join("testdata", "tree"), filepath.Join("testdata", "missing"))
	require.NoError(t, err)

	assert.Equal(t, "Root", def.Name)
	assert.Equal(t, "sequence", def.Work)
	assert.Equal(t, 0.0, def.OwnEstimate)
	assert.Equal(t, DefaultContribution, def.Contribution)
	assert.True(t, def.ShowSubOperations)
	assert.Contains(t, def.Source, filepath.Join("testdata", "tree", "plan.hcl")+":1")
	require.False(t, def.Meta.IsNull())

	require.Len(t, def.Children, 2)
	fetch, workers := def.Children[0], def.Children[1]
	assert.Equal(t, "fetch", fetch.Binding)
	assert.Equal(t, 2.0, fetch.Contribution)
	assert.Equal(t, DefaultOwnEstimate, fetch.OwnEstimate)
	assert.False(t, workers.ShowSubOperations)
	require.Len(t, workers.Children, 2)
	assert.Equal(t, "workers", workers.Children[1].Group)

	assert.Equal(t, 5, def.Count())
	assert.Equal(t, map[string]string{
		"Root":            "sequence",
		"Root.Fetch":      "leaf",
		"Root.Workers":    "sequence",
		"Root.Workers.W1": "leaf",
		"Root.Workers.W2": "leaf",
	}, def.WorkRefs())
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Load(ctx, filepath.Join("testdata", "tworoots"))
	assert.ErrorIs(t, err, ErrNoRoot)

	_, err = Load(ctx, filepath.Join("testdata", "missing"))
	assert.ErrorIs(t, err, ErrNoRoot)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		contains string
	}{
		{name: "syntax", src: `operation "A" {`, contains: "failed to parse"},
		{name: "missing work", src: `operation "A" {}`, contains: "failed to decode"},
		{name: "unknown attribute", src: "operation \"A\" {\n work = \"x\"\n colour = 1\n}", contains: "failed to decode"},
		{
			name:     "binding and group",
			src:      "operation \"A\" {\n work = \"x\"\n operation \"B\" {\n work = \"x\"\n binding = \"b\"\n group = \"g\"\n }\n}",
			contains: "mutually exclusive",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(context.Background(), []byte(tc.src), "inline.hcl")
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.contains)
		})
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	def, err := Load(ctx, filepath.Join("testdata", "tree"))
	require.NoError(t, err)

	root, err := Build(ctx, def, newRegistry())
	require.NoError(t, err)

	assert.Equal(t, 5.0, root.ChildWorkTotal())
	assert.Equal(t, []string{"fetch", "sequence"}, root.BindingNames())

	workers, ok := root.Child("Workers")
	require.True(t, ok)
	assert.False(t, workers.ShowSubOperations())
	assert.Len(t, workers.Group("workers"), 2)

	meta, ok := root.Artifact(MetaArtifact)
	require.True(t, ok)
	assert.Equal(t, artifact.Info, meta.Type())
	assert.Equal(t, map[string]any{"owner": "tests", "tags": []any{"a", "b"}}, meta.Value())

	rec := &progress.Recorder{}
	require.NoError(t, root.Execute(ctx, rec.Sink()))
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, progress.Snapshot{Stages: []string{"Root"}, Progress: []float64{1}}, last)

	for _, s := range rec.Snapshots() {
		assert.NotContains(t, s.Stages, "W1", "hidden below Workers")
	}
}

func TestBuild_UnknownWork(t *testing.T) {
	ctx := context.Background()
	def, err := Parse(ctx, []byte("operation \"A\" {\n work = \"sequence\"\n operation \"B\" {\n work = \"ghost\"\n }\n}"), "inline.hcl")
	require.NoError(t, err)

	_, err = Build(ctx, def, newRegistry())
	assert.ErrorIs(t, err, registry.ErrUnknownWork)
	assert.ErrorContains(t, err, "A.B")
}

func TestBuild_StructuralErrors(t *testing.T) {
	ctx := context.Background()
	src := `
operation "A" {
  work = "sequence"
  operation "B" {
    work = "leaf"
  }
  operation "C" {
    work = "leaf"
  }
}`
	def, err := Parse(ctx, []byte(src), "inline.hcl")
	require.NoError(t, err)

	_, err = Build(ctx, def, newRegistry())
	assert.ErrorIs(t, err, operation.ErrBindingConflict, "both children default to the 'leaf' binding")
	assert.ErrorContains(t, err, "inline.hcl:7")
}
