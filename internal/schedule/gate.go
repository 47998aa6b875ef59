// Package schedule gates posting runs behind a persisted next-post time so
// restarts and overlapping manual runs cannot double-post.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/hyperengineering/cadence/internal/store"
)

// StateKey is the app_state key holding the next allowed post time.
const StateKey = "next_post_time"

// ErrNotDue is returned by callers that refuse to run before the persisted
// next post time.
var ErrNotDue = errors.New("next post time not reached")

// DefaultInterval is the base spacing between posts.
const DefaultInterval = 24 * time.Hour

// DefaultJitter randomizes each next-post time so posts do not land at the
// exact same minute every day.
const DefaultJitter = 2 * time.Hour

// Gate decides whether a posting run is due and schedules the next one.
// The decision is backed by the durable state store, not process memory.
type Gate struct {
	state    store.StateStore
	interval time.Duration
	jitter   time.Duration
	randN    func(n int64) int64
}

// New creates a Gate. interval and jitter fall back to the defaults when
// zero; a negative jitter disables it.
func New(state store.StateStore, interval, jitter time.Duration) *Gate {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if jitter == 0 {
		jitter = DefaultJitter
	}
	if jitter < 0 {
		jitter = 0
	}
	return &Gate{
		state:    state,
		interval: interval,
		jitter:   jitter,
		randN:    rand.Int63n,
	}
}

// Due reports whether a post is allowed at now. With no persisted schedule
// the first run is always due.
func (g *Gate) Due(ctx context.Context, now time.Time) (bool, error) {
	raw, err := g.state.GetState(ctx, StateKey)
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("load schedule state: %w", err)
	}

	next, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		// Unparseable state fails open; the alternative is never posting
		// again until someone edits the database.
		return true, nil
	}
	return !now.Before(next), nil
}

// Schedule persists the next allowed post time, interval plus random jitter
// from now, and returns it.
func (g *Gate) Schedule(ctx context.Context, now time.Time) (time.Time, error) {
	next := now.Add(g.interval)
	if g.jitter > 0 {
		next = next.Add(time.Duration(g.randN(int64(g.jitter))))
	}

	if err := g.state.SetState(ctx, StateKey, next.UTC().Format(time.RFC3339Nano)); err != nil {
		return time.Time{}, fmt.Errorf("persist schedule state: %w", err)
	}
	return next, nil
}

// Next returns the persisted next post time, or the zero time when none is
// scheduled yet.
func (g *Gate) Next(ctx context.Context) (time.Time, error) {
	raw, err := g.state.GetState(ctx, StateKey)
	if errors.Is(err, store.ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load schedule state: %w", err)
	}

	next, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, nil
	}
	return next, nil
}
