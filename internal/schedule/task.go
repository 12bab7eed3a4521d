// Package schedule runs a function on a fixed period with a deterministic
// start/stop lifecycle.
package schedule

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/envdash/internal/logger"
)

// ErrAlreadyStarted is returned by Start on a running task.
var ErrAlreadyStarted = stderrors.New("schedule: task already started")

// Func is one cycle of work. Errors are logged and never stop the task.
type Func func(ctx context.Context) error

// Ticker is the subset of *time.Ticker the task needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// RealTicker wraps time.NewTicker.
func RealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Task is a periodic task handle. Cycles never overlap: ticks and triggers
// that arrive while a cycle runs collapse into a single pending cycle.
type Task struct {
	name       string
	interval   time.Duration
	fn         Func
	log        logger.Logger
	newTicker  TickerFactory
	afterCycle func(n int64, err error)

	trigger chan struct{}
	runMu   sync.Mutex
	cycles  atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Task.
type Option func(*Task)

// WithTicker injects the ticker source, for tests.
func WithTicker(f TickerFactory) Option {
	return func(t *Task) {
		t.newTicker = f
	}
}

// WithLogger sets the logger used for cycle failures and panics.
func WithLogger(l logger.Logger) Option {
	return func(t *Task) {
		t.log = l
	}
}

// WithName labels log lines.
func WithName(name string) Option {
	return func(t *Task) {
		t.name = name
	}
}

// WithAfterCycle registers a hook called after every cycle with the running
// cycle count and its error.
func WithAfterCycle(fn func(n int64, err error)) Option {
	return func(t *Task) {
		t.afterCycle = fn
	}
}

// New creates a stopped task running fn every interval.
func New(interval time.Duration, fn Func, opts ...Option) *Task {
	t := &Task{
		name:      "task",
		interval:  interval,
		fn:        fn,
		log:       logger.Noop(),
		newTicker: RealTicker,
		trigger:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Interval returns the configured period.
func (t *Task) Interval() time.Duration {
	return t.interval
}

// Cycles returns how many cycles have completed.
func (t *Task) Cycles() int64 {
	return t.cycles.Load()
}

// Running reports whether the timer is armed.
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Start arms the timer and returns immediately. The first periodic cycle
// runs one interval after Start.
func (t *Task) Start(ctx context.Context) error {
	if t.interval <= 0 {
		return fmt.Errorf("schedule: interval must be positive, got %s", t.interval)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	ticker := t.newTicker(t.interval)
	go t.loop(ctx, ticker, done)
	return nil
}

// Stop disarms the timer, cancels any in-flight cycle and waits for the
// loop to exit. Safe to call more than once and before Start.
func (t *Task) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Trigger requests an immediate cycle. Requests made while one is pending
// are dropped.
func (t *Task) Trigger() {
	select {
	case t.trigger <- struct{}{}:
	default:
	}
}

// RunOnce runs a cycle synchronously on the caller's goroutine, serialized
// with the periodic loop. Used for the initial load.
func (t *Task) RunOnce(ctx context.Context) error {
	return t.run(ctx)
}

func (t *Task) loop(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	pending := false
	for {
		if !pending {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
			case <-t.trigger:
			}
		}
		if ctx.Err() != nil {
			return
		}

		_ = t.run(ctx)

		// Anything that fired during the cycle becomes one pending cycle.
		tick := drain(ticker.C())
		trig := drain(t.trigger)
		pending = tick || trig
	}
}

func (t *Task) run(ctx context.Context) (err error) {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s cycle: %v", t.name, r)
			t.log.Error("[%s] %v", t.name, err)
		}
		n := t.cycles.Add(1)
		if t.afterCycle != nil {
			t.afterCycle(n, err)
		}
	}()

	err = t.fn(ctx)
	if err != nil && ctx.Err() == nil {
		t.log.Debug("[%s] cycle failed, next in %s", t.name, t.interval)
	}
	return err
}

func drain[T any](ch <-chan T) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
