package operation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/opgrid/internal/ctxlog"
	"github.com/specialistvlad/opgrid/internal/progress"
)

// ExecuteConfig tunes a single run.
type ExecuteConfig struct {
	// Sink receives progress snapshots. Nil discards them.
	Sink progress.Sink
	// MinInterval spaces throttled snapshots. Zero means
	// progress.MinInterval; negative disables throttling.
	MinInterval time.Duration
	// Clock replaces time.Now for the throttle gate.
	Clock func() time.Time
}

// Execute runs o and its bound descendants, reporting progress to sink.
// args are passed to o's work function.
func (o *Operation) Execute(ctx context.Context, sink progress.Sink, args ...any) error {
	return o.ExecuteWith(ctx, ExecuteConfig{Sink: sink}, args...)
}

// ExecuteWith is Execute with explicit run settings.
func (o *Operation) ExecuteWith(ctx context.Context, cfg ExecuteConfig, args ...any) error {
	interval := cfg.MinInterval
	switch {
	case interval == 0:
		interval = progress.MinInterval
	case interval < 0:
		interval = 0
	}
	sink := cfg.Sink
	if sink == nil {
		sink = progress.Discard
	}

	r := &run{
		id:   uuid.NewString(),
		sink: sink,
		gate: progress.NewGate(interval, cfg.Clock),
	}
	ctx = ctxlog.With(ctx, "run_id", r.id)
	logger := ctxlog.FromContext(ctx)

	logger.Info("🚀 Starting operation run.", "root", o.FullName(), "total_estimate", o.TotalEstimate())
	start := time.Now()
	if err := r.execute(ctx, o, true, args); err != nil {
		logger.Error("Operation run failed.", "root", o.FullName(), "error", err)
		return err
	}
	logger.Info("🏁 Operation run finished.", "root", o.FullName(), "duration", time.Since(start))
	return nil
}

// run is the execution context of one Execute call. Its stack is owned
// exclusively by that call.
type run struct {
	id    string
	sink  progress.Sink
	gate  *progress.Gate
	stack []*frame
}

// frame is one level of the run's stack.
type frame struct {
	op                 *Operation
	displayed          bool
	completedChildWork float64
	ownWorkDone        float64
	complete           bool
	floor              float64
	popped             bool
}

func (r *run) execute(ctx context.Context, op *Operation, displayed bool, args []any) error {
	if err := op.begin(); err != nil {
		return err
	}
	defer op.end()

	f := &frame{op: op, displayed: displayed}
	r.stack = append(r.stack, f)
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
		f.popped = true
	}()

	ctx = ctxlog.With(ctx, "op", op.FullName())
	logger := ctxlog.FromContext(ctx)
	logger.Debug("▶️ Starting operation.", "own_estimate", op.ownEstimate, "child_work_total", op.ChildWorkTotal())

	subs := Callbacks{run: r, op: op, frame: f, displayed: displayed && op.showSubOperations}
	report := func(ctx context.Context, fraction float64) error {
		if f.popped {
			return structural(op.FullName(), ErrStaleCallback, "progress reported after return")
		}
		if done := progress.ToParentWork(fraction, op.ownEstimate); done > f.ownWorkDone {
			f.ownWorkDone = done
		}
		if !r.gate.Allow() {
			return nil
		}
		return r.emit(ctx)
	}

	if err := op.work.Fn(ctx, op, subs, report, args...); err != nil {
		var execErr *ExecError
		if !errors.As(err, &execErr) {
			err = &ExecError{Path: op.FullName(), Err: err}
		}
		return err
	}

	f.complete = true
	r.gate.Force()
	if err := r.emit(ctx); err != nil {
		return err
	}
	logger.Debug("✅ Finished operation.")
	return nil
}

// emit projects the current stack and sends the visible prefix to the sink.
func (r *run) emit(ctx context.Context) error {
	frames := make([]progress.Frame, len(r.stack))
	for i, f := range r.stack {
		pf := f.op.frame()
		pf.CompletedChildWork = f.completedChildWork
		pf.OwnWorkDone = f.ownWorkDone
		pf.Complete = f.complete
		pf.Floor = f.floor
		frames[i] = pf
	}
	fractions := progress.Project(frames)

	visible := 0
	stages := make([]string, 0, len(r.stack))
	for i, f := range r.stack {
		f.floor = fractions[i]
		if f.displayed {
			stages = append(stages, f.op.name)
			visible++
		}
	}
	return r.sink(ctx, stages, fractions[:visible])
}

func (o *Operation) begin() error {
	o.mu.Lock()
	if o.executing {
		o.mu.Unlock()
		return structural(o.FullName(), ErrExecuting, "already running")
	}
	o.executing = true
	o.mu.Unlock()
	return nil
}

func (o *Operation) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.executing = false
}
