package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestGate(t *testing.T) {
	t.Run("enforces minimum interval", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		g := NewGate(MinInterval, clock.Now)

		assert.True(t, g.Allow(), "first snapshot of a run is allowed")
		assert.False(t, g.Allow())

		clock.Advance(5 * time.Millisecond)
		assert.False(t, g.Allow())

		clock.Advance(6 * time.Millisecond)
		assert.True(t, g.Allow())
		assert.False(t, g.Allow())
	})

	t.Run("forced emission restarts the interval", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		g := NewGate(MinInterval, clock.Now)

		assert.True(t, g.Allow())
		clock.Advance(8 * time.Millisecond)
		g.Force()

		clock.Advance(5 * time.Millisecond)
		assert.False(t, g.Allow(), "only 5ms since the forced snapshot")

		clock.Advance(6 * time.Millisecond)
		assert.True(t, g.Allow())
	})

	t.Run("zero interval never throttles", func(t *testing.T) {
		g := NewGate(0, nil)
		for i := 0; i < 5; i++ {
			assert.True(t, g.Allow())
		}
	})
}
