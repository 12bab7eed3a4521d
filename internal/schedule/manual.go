package schedule

import (
	"sync"
	"time"
)

// ManualTicker is a Ticker driven by explicit Tick calls.
type ManualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
	period  time.Duration
}

// NewManualTicker returns a ticker whose channel buffers one tick, like
// time.Ticker.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time, 1)}
}

// Factory returns a TickerFactory that always hands out m.
func (m *ManualTicker) Factory() TickerFactory {
	return func(d time.Duration) Ticker {
		m.mu.Lock()
		m.period = d
		m.mu.Unlock()
		return m
	}
}

// Tick delivers a tick, dropping it if one is already buffered. It reports
// whether the tick was delivered.
func (m *ManualTicker) Tick() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return false
	}
	select {
	case m.ch <- time.Now():
		return true
	default:
		return false
	}
}

// Period returns the interval the ticker was created with.
func (m *ManualTicker) Period() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.period
}

// Stopped reports whether Stop was called.
func (m *ManualTicker) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

func (m *ManualTicker) C() <-chan time.Time { return m.ch }

func (m *ManualTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}
