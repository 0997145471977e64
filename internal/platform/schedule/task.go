// Package schedule runs a single-tick function on a repeating timer without ever
// letting two ticks overlap.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Func is one tick of periodic work. It must honour ctx cancellation.
type Func func(ctx context.Context)

// Task is a cancellable repeating timer around a Func. A tick that comes due while
// another is still running is skipped, not queued.
type Task struct {
	name     string
	interval time.Duration
	fn       Func
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	running atomic.Bool
	stopped atomic.Bool
	started atomic.Bool
	skipped atomic.Uint64

	mu       sync.Mutex
	inflight sync.WaitGroup
	loop     sync.WaitGroup
	stopOnce sync.Once
}

type Option func(*Task)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Task) { t.logger = logger }
}

// WithName labels log lines emitted by the task.
func WithName(name string) Option {
	return func(t *Task) { t.name = name }
}

// NewTask builds a stopped task. Ticks may be triggered with RunNow before Start.
func NewTask(interval time.Duration, fn Func, opts ...Option) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Task{
		name:     "task",
		interval: interval,
		fn:       fn,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Start arms the timer. The task also stops when parent is cancelled. Calling
// Start more than once, or after Stop, does nothing.
func (t *Task) Start(parent context.Context) {
	if t.stopped.Load() || !t.started.CompareAndSwap(false, true) {
		return
	}
	if parent == nil {
		parent = context.Background()
	}
	t.loop.Add(1)
	go t.run(parent)
}

func (t *Task) run(parent context.Context) {
	defer t.loop.Done()
	if t.interval <= 0 {
		<-t.ctx.Done()
		return
	}
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.ctx.Done():
			return
		case <-parent.Done():
			t.halt()
			return
		case <-ticker.C:
			if !t.begin() {
				t.skip("timer")
				continue
			}
			go func() {
				defer t.end()
				t.fn(t.ctx)
			}()
		}
	}
}

// RunNow executes one tick in the calling goroutine. It reports false when the tick
// was skipped because another tick is in flight or the task is stopped.
func (t *Task) RunNow() bool {
	if !t.begin() {
		if !t.stopped.Load() {
			t.skip("manual")
		}
		return false
	}
	defer t.end()
	t.fn(t.ctx)
	return true
}

// Stop disarms the timer, cancels the in-flight tick and waits for it to return.
// After Stop no tick runs again. Stop is idempotent and must not be called from
// inside the task's own Func.
func (t *Task) Stop() {
	t.halt()
	t.loop.Wait()
	t.inflight.Wait()
}

func (t *Task) halt() {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		t.stopped.Store(true)
		t.mu.Unlock()
		t.cancel()
	})
}

// Running reports whether a tick is in flight.
func (t *Task) Running() bool { return t.running.Load() }

// Skipped counts ticks dropped because one was already in flight.
func (t *Task) Skipped() uint64 { return t.skipped.Load() }

func (t *Task) begin() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped.Load() {
		return false
	}
	if !t.running.CompareAndSwap(false, true) {
		return false
	}
	t.inflight.Add(1)
	return true
}

func (t *Task) end() {
	t.running.Store(false)
	t.inflight.Done()
}

func (t *Task) skip(trigger string) {
	t.skipped.Add(1)
	if t.logger != nil {
		t.logger.LogAttrs(t.ctx, slog.LevelDebug, "tick skipped, previous still running",
			slog.String("task", t.name),
			slog.String("trigger", trigger),
		)
	}
}
