package progress

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// Sink receives progress snapshots. stages and progress always have the
// same length and are index-aligned root to current.
type Sink func(ctx context.Context, stages []string, progress []float64) error

// Snapshot is a copy of one emitted report.
type Snapshot struct {
	Stages   []string  `json:"stages"`
	Progress []float64 `json:"progress"`
}

// Current returns the fraction of the deepest reported level.
func (s Snapshot) Current() float64 {
	if len(s.Progress) == 0 {
		return 0
	}
	return s.Progress[len(s.Progress)-1]
}

// Overall returns the root fraction.
func (s Snapshot) Overall() float64 {
	if len(s.Progress) == 0 {
		return 0
	}
	return s.Progress[0]
}

// Discard drops every snapshot.
func Discard(context.Context, []string, []float64) error { return nil }

// Fanout forwards each snapshot to every non-nil sink in order. All sinks
// are called even if one fails; the errors are joined.
func Fanout(sinks ...Sink) Sink {
	active := slices.DeleteFunc(slices.Clone(sinks), func(s Sink) bool { return s == nil })
	return func(ctx context.Context, stages []string, progress []float64) error {
		var errs []error
		for _, s := range active {
			if err := s(ctx, stages, progress); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

// Recorder keeps the snapshots it receives. It is safe for concurrent use.
type Recorder struct {
	// Keep bounds how many recent snapshots are retained; zero keeps all.
	Keep int

	mu        sync.RWMutex
	snapshots []Snapshot
}

// Sink returns the recorder's Sink function.
func (r *Recorder) Sink() Sink {
	return func(_ context.Context, stages []string, progress []float64) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.snapshots = append(r.snapshots, Snapshot{
			Stages:   slices.Clone(stages),
			Progress: slices.Clone(progress),
		})
		if r.Keep > 0 && len(r.snapshots) > r.Keep {
			r.snapshots = slices.Clone(r.snapshots[len(r.snapshots)-r.Keep:])
		}
		return nil
	}
}

// Snapshots returns a copy of everything recorded so far.
func (r *Recorder) Snapshots() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.snapshots)
}

// Last returns the most recent snapshot.
func (r *Recorder) Last() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.snapshots) == 0 {
		return Snapshot{}, false
	}
	return r.snapshots[len(r.snapshots)-1], true
}
