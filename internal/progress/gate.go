package progress

import (
	"time"

	"golang.org/x/time/rate"
)

// MinInterval is the minimum spacing between throttled snapshots of a run.
const MinInterval = 10 * time.Millisecond

// Gate decides when a throttled snapshot may be emitted. A Gate belongs to
// a single run and is not safe for concurrent use.
type Gate struct {
	limit   rate.Limit
	limiter *rate.Limiter
	now     func() time.Time
}

// NewGate returns a gate that opens at most once per interval. A nil clock
// means time.Now.
func NewGate(interval time.Duration, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Gate{limit: limit, limiter: rate.NewLimiter(limit, 1), now: now}
}

// Allow reports whether a throttled snapshot may be sent now, recording the
// emission when it may.
func (g *Gate) Allow() bool {
	return g.limiter.AllowN(g.now(), 1)
}

// Force records an unconditional emission: the next throttled snapshot must
// wait a full interval from now.
func (g *Gate) Force() {
	now := g.now()
	if g.limiter.AllowN(now, 1) {
		return
	}
	g.limiter = rate.NewLimiter(g.limit, 1)
	g.limiter.AllowN(now, 1)
}
