package oppath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("valid paths", func(t *testing.T) {
		addr, err := Parse("LoadMods.API Setup.API Loading")
		require.NoError(t, err)
		assert.Equal(t, []string{"LoadMods", "API Setup", "API Loading"}, addr.Path)

		addr, err = Parse("single")
		require.NoError(t, err)
		assert.Equal(t, []string{"single"}, addr.Path)
	})

	t.Run("round trip", func(t *testing.T) {
		raw := "a.b c.d"
		addr, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, addr.String())
	})

	t.Run("error cases", func(t *testing.T) {
		_, err := Parse("")
		assert.ErrorContains(t, err, "cannot be empty")

		_, err = Parse("a..b")
		assert.ErrorContains(t, err, "empty segment")

		_, err = Parse("a. .b")
		assert.ErrorContains(t, err, "empty segment")
	})
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("Load Ordering"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("   "))
	assert.False(t, ValidName("a.b"))
}
