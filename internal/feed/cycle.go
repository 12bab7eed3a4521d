package feed

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/logger"
)

// Observer is notified after a snapshot has been stored.
type Observer func(ctx context.Context, snap *Snapshot)

// ErrorObserver is notified after a failed fetch.
type ErrorObserver func(ctx context.Context, err error)

// Cycle runs one fetch -> store -> notify pass. Register observers before
// the first Run; Run itself may be called from any single goroutine.
type Cycle struct {
	source    Source
	state     *State
	log       logger.Logger
	now       func() time.Time
	observers []Observer
	onError   []ErrorObserver
}

// NewCycle binds a source to the state cell it writes.
func NewCycle(src Source, state *State, log logger.Logger) *Cycle {
	if log == nil {
		log = logger.Noop()
	}
	return &Cycle{
		source: src,
		state:  state,
		log:    log,
		now:    time.Now,
	}
}

// Observe registers fn to receive every stored snapshot.
func (c *Cycle) Observe(fn Observer) {
	c.observers = append(c.observers, fn)
}

// OnError registers fn to receive fetch failures.
func (c *Cycle) OnError(fn ErrorObserver) {
	c.onError = append(c.onError, fn)
}

// State returns the cell this cycle writes.
func (c *Cycle) State() *State {
	return c.state
}

// Run performs one cycle. On failure the previous snapshot stays in place
// and the error is returned after being logged.
func (c *Cycle) Run(ctx context.Context) error {
	id := uuid.NewString()[:8]
	start := c.now()

	snap, err := c.source.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			c.log.Debug("[cycle %s] cancelled after %s", id, c.now().Sub(start).Round(time.Millisecond))
			return ctx.Err()
		}
		c.state.RecordError(err, c.now())
		c.log.Warn("[cycle %s] fetch failed: %s", id, errors.Summary(err))
		for _, fn := range c.onError {
			fn(ctx, err)
		}
		return err
	}

	c.state.Store(snap)
	c.log.Debug("[cycle %s] stored %d readings in %s", id, len(snap.Readings), c.now().Sub(start).Round(time.Millisecond))

	for _, fn := range c.observers {
		fn(ctx, snap)
	}
	return nil
}
