package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rileyhilliard/envdash/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

// cycleWatcher returns an AfterCycle option and a channel of cycle errors.
func cycleWatcher() (Option, <-chan error) {
	ch := make(chan error, 64)
	return WithAfterCycle(func(n int64, err error) { ch <- err }), ch
}

func waitCycle(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a cycle")
		return nil
	}
}

func assertNoCycle(t *testing.T, ch <-chan error) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal("unexpected extra cycle")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTask_TickRunsCycle(t *testing.T) {
	ticker := NewManualTicker()
	watch, cycles := cycleWatcher()
	var calls atomic.Int32

	task := New(30*time.Second, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, WithTicker(ticker.Factory()), watch)

	require.NoError(t, task.Start(context.Background()))
	assert.True(t, task.Running())
	assert.Equal(t, 30*time.Second, ticker.Period())

	assertNoCycle(t, cycles)

	ticker.Tick()
	require.NoError(t, waitCycle(t, cycles))
	ticker.Tick()
	require.NoError(t, waitCycle(t, cycles))

	task.Stop()
	assert.False(t, task.Running())
	assert.True(t, ticker.Stopped(), "teardown releases the ticker")
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int64(2), task.Cycles())
}

func TestTask_FailureDoesNotStopLaterCycles(t *testing.T) {
	ticker := NewManualTicker()
	watch, cycles := cycleWatcher()
	boom := errors.New("network down")
	var n atomic.Int32

	task := New(time.Second, func(ctx context.Context) error {
		if n.Add(1) == 1 {
			return boom
		}
		return nil
	}, WithTicker(ticker.Factory()), WithLogger(logger.NewBufferLogger()), watch)

	require.NoError(t, task.Start(context.Background()))
	defer task.Stop()

	ticker.Tick()
	assert.Equal(t, boom, waitCycle(t, cycles))
	ticker.Tick()
	assert.NoError(t, waitCycle(t, cycles))
}

func TestTask_PanicIsRecovered(t *testing.T) {
	ticker := NewManualTicker()
	watch, cycles := cycleWatcher()
	log := logger.NewBufferLogger()
	var n atomic.Int32

	task := New(time.Second, func(ctx context.Context) error {
		if n.Add(1) == 1 {
			panic("nil map")
		}
		return nil
	}, WithTicker(ticker.Factory()), WithLogger(log), WithName("feed"), watch)

	require.NoError(t, task.Start(context.Background()))
	defer task.Stop()

	ticker.Tick()
	err := waitCycle(t, cycles)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in feed cycle")
	assert.True(t, log.HasLevel("error"))

	ticker.Tick()
	assert.NoError(t, waitCycle(t, cycles))
}

func TestTask_StopCancelsInFlightCycle(t *testing.T) {
	ticker := NewManualTicker()
	started := make(chan struct{})
	var cancelled atomic.Bool

	task := New(time.Second, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}, WithTicker(ticker.Factory()))

	require.NoError(t, task.Start(context.Background()))
	ticker.Tick()

	select {
	case <-started:
	case <-time.After(waitTimeout):
		t.Fatal("cycle never started")
	}

	task.Stop()
	assert.True(t, cancelled.Load(), "Stop returns only after the cycle observed cancellation")
}

func TestTask_OverlappingTicksCoalesce(t *testing.T) {
	ticker := NewManualTicker()
	watch, cycles := cycleWatcher()
	started := make(chan struct{}, 8)
	release := make(chan struct{})

	task := New(time.Second, func(ctx context.Context) error {
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}, WithTicker(ticker.Factory()), watch)

	require.NoError(t, task.Start(context.Background()))
	defer task.Stop()

	ticker.Tick()
	<-started

	// A slow cycle sees several ticks and triggers; they collapse into one.
	ticker.Tick()
	ticker.Tick()
	task.Trigger()
	task.Trigger()

	release <- struct{}{}
	require.NoError(t, waitCycle(t, cycles))

	<-started
	release <- struct{}{}
	require.NoError(t, waitCycle(t, cycles))

	assertNoCycle(t, cycles)
	assert.Equal(t, int64(2), task.Cycles())
}

func TestTask_Trigger(t *testing.T) {
	ticker := NewManualTicker()
	watch, cycles := cycleWatcher()

	task := New(time.Hour, func(ctx context.Context) error { return nil },
		WithTicker(ticker.Factory()), watch)

	require.NoError(t, task.Start(context.Background()))
	defer task.Stop()

	task.Trigger()
	require.NoError(t, waitCycle(t, cycles))
}

func TestTask_RunOnce(t *testing.T) {
	var calls int
	task := New(time.Second, func(ctx context.Context) error {
		calls++
		return errors.New("first load failed")
	})

	err := task.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(1), task.Cycles())
	assert.False(t, task.Running(), "RunOnce does not arm the timer")
}

func TestTask_Lifecycle(t *testing.T) {
	ticker := NewManualTicker()
	task := New(time.Second, func(ctx context.Context) error { return nil }, WithTicker(ticker.Factory()))

	// Stop before Start is a no-op
	task.Stop()

	require.NoError(t, task.Start(context.Background()))
	assert.ErrorIs(t, task.Start(context.Background()), ErrAlreadyStarted)

	task.Stop()
	task.Stop()
	assert.False(t, task.Running())

	// Restartable after Stop
	require.NoError(t, task.Start(context.Background()))
	task.Stop()
}

func TestTask_ParentContextCancelStopsLoop(t *testing.T) {
	ticker := NewManualTicker()
	task := New(time.Second, func(ctx context.Context) error { return nil }, WithTicker(ticker.Factory()))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, task.Start(ctx))
	cancel()

	assert.Eventually(t, ticker.Stopped, waitTimeout, 5*time.Millisecond)
	task.Stop()
}

func TestTask_InvalidInterval(t *testing.T) {
	task := New(0, func(ctx context.Context) error { return nil })
	assert.Error(t, task.Start(context.Background()))
	assert.False(t, task.Running())
}

func TestManualTicker_BuffersOne(t *testing.T) {
	m := NewManualTicker()
	assert.True(t, m.Tick())
	assert.False(t, m.Tick(), "second tick is dropped while one is buffered")

	<-m.C()
	m.Stop()
	assert.False(t, m.Tick(), "stopped ticker delivers nothing")
}
