// Package alert publishes metric status transitions.
package alert

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/feed"
	"github.com/rileyhilliard/envdash/internal/logger"
	"github.com/rileyhilliard/envdash/internal/threshold"
)

// Event describes one metric changing status.
type Event struct {
	Channel  string    `json:"channel,omitempty"`
	Metric   string    `json:"metric"`
	Value    float64   `json:"value"`
	Unit     string    `json:"unit"`
	Previous string    `json:"previous,omitempty"`
	Level    string    `json:"level"`
	Label    string    `json:"label"`
	At       time.Time `json:"at"`
}

// Publisher delivers events somewhere.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close()
}

// Tracker remembers the last level per metric and publishes on change.
// Its Observe method plugs into feed.Cycle.
type Tracker struct {
	pub Publisher
	log logger.Logger

	mu   sync.Mutex
	last map[threshold.Metric]threshold.Level
}

// NewTracker creates a tracker publishing through pub.
func NewTracker(pub Publisher, log logger.Logger) *Tracker {
	if log == nil {
		log = logger.Noop()
	}
	return &Tracker{
		pub:  pub,
		log:  log,
		last: make(map[threshold.Metric]threshold.Level),
	}
}

// Observe classifies the latest reading and publishes every transition. The
// first observation of a metric always publishes. Snapshots without readings
// are ignored.
func (t *Tracker) Observe(ctx context.Context, snap *feed.Snapshot) {
	latest, ok := snap.Latest()
	if !ok {
		return
	}

	for _, ev := range t.transitions(snap.Channel.Name, latest) {
		if err := t.pub.Publish(ctx, ev); err != nil {
			t.log.Warn("alert for %s not delivered: %s", ev.Metric, errors.Summary(err))
			t.forget(ev.Metric)
			continue
		}
		t.log.Info("%s %s -> %s (%.1f %s)", ev.Metric, orDash(ev.Previous), ev.Level, ev.Value, ev.Unit)
	}
}

// transitions computes and records the events for a reading.
func (t *Tracker) transitions(channel string, r feed.Reading) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	var events []Event
	for _, m := range threshold.All {
		v := r.Value(m)
		st := threshold.Classify(m, v)
		prev, seen := t.last[m]
		if seen && prev == st.Level {
			continue
		}
		t.last[m] = st.Level

		ev := Event{
			Channel: channel,
			Metric:  m.String(),
			Value:   v,
			Unit:    m.Unit(),
			Level:   st.Level.String(),
			Label:   st.Label,
			At:      r.Time,
		}
		if seen {
			ev.Previous = prev.String()
		}
		events = append(events, ev)
	}
	return events
}

// forget drops the remembered level so the next cycle retries delivery.
func (t *Tracker) forget(metric string) {
	m, err := threshold.ParseMetric(metric)
	if err != nil {
		return
	}
	t.mu.Lock()
	delete(t.last, m)
	t.mu.Unlock()
}

// Levels returns the remembered level per metric.
func (t *Tracker) Levels() map[threshold.Metric]threshold.Level {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[threshold.Metric]threshold.Level, len(t.last))
	for k, v := range t.last {
		out[k] = v
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// LogPublisher writes events to a logger. Used when no broker is configured.
type LogPublisher struct {
	log logger.Logger
}

// NewLogPublisher creates a publisher that only logs.
func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.Level != threshold.Normal.String() {
		p.log.Warn("%s is %s: %.1f %s", ev.Metric, ev.Label, ev.Value, ev.Unit)
	}
	return nil
}

func (p *LogPublisher) Close() {}
