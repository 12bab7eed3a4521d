package feed

import (
	"sync/atomic"
	"time"
)

// State owns the current snapshot. Store replaces it whole; Load never sees
// a partially built value.
type State struct {
	current   atomic.Pointer[Snapshot]
	lastErr   atomic.Pointer[stateErr]
	successes atomic.Int64
	failures  atomic.Int64
}

type stateErr struct {
	err error
	at  time.Time
}

// NewState returns an empty state cell.
func NewState() *State {
	return &State{}
}

// Load returns the current snapshot, or nil before the first successful fetch.
func (s *State) Load() *Snapshot {
	return s.current.Load()
}

// Store replaces the current snapshot.
func (s *State) Store(snap *Snapshot) {
	s.current.Store(snap)
	s.successes.Add(1)
}

// RecordError remembers the latest fetch failure without touching the snapshot.
func (s *State) RecordError(err error, at time.Time) {
	s.lastErr.Store(&stateErr{err: err, at: at})
	s.failures.Add(1)
}

// LastError returns the most recent fetch failure and when it happened.
func (s *State) LastError() (error, time.Time) {
	e := s.lastErr.Load()
	if e == nil {
		return nil, time.Time{}
	}
	return e.err, e.at
}

// Counts returns the number of successful and failed cycles.
func (s *State) Counts() (successes, failures int64) {
	return s.successes.Load(), s.failures.Load()
}
