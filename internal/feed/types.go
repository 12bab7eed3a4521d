package feed

import (
	"time"

	"github.com/rileyhilliard/envdash/internal/threshold"
)

// WindowSize is the number of most recent readings used by trend and
// statistics displays.
const WindowSize = 24

// Reading is one timestamped feed entry. Missing or unparseable fields are zero.
type Reading struct {
	Time        time.Time
	EntryID     int
	Temperature float64
	Humidity    float64
	Pressure    float64
	AirQuality  float64
}

// Value returns the field for metric m.
func (r Reading) Value(m threshold.Metric) float64 {
	switch m {
	case threshold.Temperature:
		return r.Temperature
	case threshold.Humidity:
		return r.Humidity
	case threshold.Pressure:
		return r.Pressure
	case threshold.AirQuality:
		return r.AirQuality
	}
	return 0
}

// Channel is the upstream channel metadata.
type Channel struct {
	ID          int
	Name        string
	Description string
	LastEntryID int
	UpdatedAt   time.Time
}

// Snapshot is the full result of one successful fetch. Readings are oldest
// first. A Snapshot is never mutated after it is stored.
type Snapshot struct {
	Channel   Channel
	Readings  []Reading
	FetchedAt time.Time
}

// Latest returns the most recent reading.
func (s *Snapshot) Latest() (Reading, bool) {
	if s == nil || len(s.Readings) == 0 {
		return Reading{}, false
	}
	return s.Readings[len(s.Readings)-1], true
}

// Window returns a copy of the last n readings, oldest first.
func (s *Snapshot) Window(n int) []Reading {
	if s == nil || n <= 0 {
		return nil
	}
	start := len(s.Readings) - n
	if start < 0 {
		start = 0
	}
	out := make([]Reading, len(s.Readings)-start)
	copy(out, s.Readings[start:])
	return out
}

// Series returns metric m's values over the last n readings, oldest first.
func (s *Snapshot) Series(m threshold.Metric, n int) []float64 {
	window := s.Window(n)
	out := make([]float64, len(window))
	for i, r := range window {
		out[i] = r.Value(m)
	}
	return out
}

// Empty reports whether the snapshot has no readings.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Readings) == 0
}
