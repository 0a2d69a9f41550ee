package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/specialistvlad/opgrid/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOwner string

func (f fakeOwner) FullName() string { return string(f) }

func TestNew(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ref := &struct{ n int }{n: 1}
		a, err := New(Info, "summary", map[string]any{"mods": 3}, WithReference(ref))
		require.NoError(t, err)

		assert.Equal(t, Info, a.Type())
		assert.Equal(t, "summary", a.Name())
		assert.Same(t, ref, a.Reference())
		assert.Equal(t, map[string]any{"mods": int64(3)}, a.Value())
		assert.Nil(t, a.Owner())
	})

	t.Run("error cases", func(t *testing.T) {
		_, err := New(Type("verbose"), "x", "y")
		assert.ErrorIs(t, err, ErrInvalidType)

		_, err = New(Debug, "  ", "y")
		assert.ErrorIs(t, err, ErrInvalidName)

		_, err = New(Debug, "x", nil)
		assert.ErrorIs(t, err, ErrInvalidPayload)
		assert.ErrorContains(t, err, `artifact "x"`)
	})
}

func TestOwnerAndFullName(t *testing.T) {
	a, err := New(Error, "failure", "boom")
	require.NoError(t, err)
	assert.Equal(t, "parentless > failure", a.FullName())

	a.SetOwner(fakeOwner("LoadMods.Acquisition"))
	assert.Equal(t, "LoadMods.Acquisition > failure", a.FullName())
}

func TestMarshalJSON(t *testing.T) {
	a, err := New(Source, "main.js", "console.log(1)", WithReference(make(chan int)))
	require.NoError(t, err)

	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"source","name":"main.js","payload":"console.log(1)"}`, string(raw))
}

func TestLogAndTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	a, err := New(Debug, "order", []string{"ModOne", "ModTwo"}, WithReference("live"))
	require.NoError(t, err)
	a.SetOwner(fakeOwner("LoadMods"))

	a.Log(ctx, "Artifact logged", "extra", 1)
	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, `artifact="LoadMods > order"`)
	assert.Contains(t, out, "type=debug")
	assert.Contains(t, out, "ModOne")
	assert.Contains(t, out, "reference=live")
	assert.Contains(t, out, "extra=1")

	buf.Reset()
	a.Trace(ctx, "Artifact traced")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "stack=")
}
