package operation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func noop(context.Context, *Operation, Callbacks, ProgressFunc, ...any) error { return nil }

var noopWork = Work{Name: "noop", Fn: noop}

// callAll invokes every binding of op in declaration order.
func callAll(ctx context.Context, op *Operation, subs Callbacks, _ ProgressFunc, args ...any) error {
	for _, name := range op.BindingNames() {
		if err := subs.Call(ctx, name, args...); err != nil {
			return err
		}
	}
	return nil
}

var callAllWork = Work{Name: "callAll", Fn: callAll}

func reportWork(fractions ...float64) Work {
	return Work{Name: "report", Fn: func(ctx context.Context, _ *Operation, _ Callbacks, report ProgressFunc, _ ...any) error {
		for _, f := range fractions {
			if err := report(ctx, f); err != nil {
				return err
			}
		}
		return nil
	}}
}

func mustNew(t *testing.T, name string, work Work, own, contribution float64, opts ...Option) *Operation {
	t.Helper()
	op, err := New(name, work, own, contribution, opts...)
	require.NoError(t, err)
	return op
}

// mustChild attaches a single-bound child named after its binding.
func mustChild(t *testing.T, parent *Operation, name string, work Work, own, contribution float64, opts ...Option) *Operation {
	t.Helper()
	opts = append([]Option{WithBinding(name)}, opts...)
	op, err := parent.Create(name, work, own, contribution, opts...)
	require.NoError(t, err)
	return op
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
