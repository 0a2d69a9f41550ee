package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger("info", "json", false, &buf).Info("hello", "op", "LoadMods")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "hello", entry["msg"])
		assert.Equal(t, "LoadMods", entry["op"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger("info", "text", false, &buf).Info("hello", "op", "LoadMods")
		assert.Contains(t, buf.String(), "msg=hello op=LoadMods")
	})

	t.Run("pretty without colour", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger("info", "pretty", true, &buf).Info("hello", "op", "LoadMods")
		assert.Contains(t, buf.String(), "INF hello op=LoadMods")
		assert.NotContains(t, buf.String(), "\x1b[")
	})

	t.Run("level filter", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("warn", "text", false, &buf)
		logger.Info("quiet")
		logger.Warn("loud")
		assert.NotContains(t, buf.String(), "quiet")
		assert.Contains(t, buf.String(), "loud")
	})
}
