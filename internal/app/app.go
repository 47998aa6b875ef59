// Package app wires the stores, schedule gate, and engine into a single
// RunOnce operation shared by the CLI, the API, and the background worker.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperengineering/cadence/internal/calendar"
	"github.com/hyperengineering/cadence/internal/engine"
	"github.com/hyperengineering/cadence/internal/schedule"
	"github.com/hyperengineering/cadence/internal/store"
	"github.com/hyperengineering/cadence/internal/types"
)

// App orchestrates one posting run end to end.
type App struct {
	store    store.Store
	gate     *schedule.Gate
	engine   *engine.Controller
	calendar *calendar.Calendar
	topics   []string
	logger   *slog.Logger
	now      func() time.Time
}

// New assembles the orchestrator. now overrides the clock for tests.
func New(s store.Store, gate *schedule.Gate, ctrl *engine.Controller, cal *calendar.Calendar, topics []string, logger *slog.Logger, now func() time.Time) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &App{
		store:    s,
		gate:     gate,
		engine:   ctrl,
		calendar: cal,
		topics:   topics,
		logger:   logger.With("component", "app"),
		now:      now,
	}
}

// RunOnce performs a single posting run: check the gate, snapshot the
// selection inputs, drive the engine, then update the queue and schedule.
// With force=true the gate check is skipped; the next post time is still
// rescheduled on success.
func (a *App) RunOnce(ctx context.Context, force bool) (*types.ContentItem, error) {
	now := a.now()

	if !force {
		due, err := a.gate.Due(ctx, now)
		if err != nil {
			return nil, err
		}
		if !due {
			return nil, schedule.ErrNotDue
		}
	}

	snapshot, err := a.snapshot(ctx, now)
	if err != nil {
		return nil, err
	}

	item, err := a.engine.Run(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	if item.Source == types.SourceRepo {
		if err := a.store.MarkRepoUsed(ctx, item.Topic, now); err != nil {
			// The post is already accepted; a stale queue entry is the
			// lesser failure. Log and continue.
			a.logger.Error("failed to mark repo used", "repo", item.Topic, "error", err)
		}
	}

	next, err := a.gate.Schedule(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("accepted %s but failed to reschedule: %w", item.ID, err)
	}
	a.logger.Info("run complete", "id", item.ID, "topic", item.Topic, "next_post", next)

	return item, nil
}

// snapshot assembles the read-only selection context for one run.
func (a *App) snapshot(ctx context.Context, now time.Time) (types.SelectionContext, error) {
	pending, err := a.store.PendingRepos(ctx)
	if err != nil {
		return types.SelectionContext{}, fmt.Errorf("load pending repos: %w", err)
	}

	var calendarTopic string
	if a.calendar != nil {
		calendarTopic = a.calendar.TopicFor(now)
	}

	return types.SelectionContext{
		PendingQueue:  pending,
		CalendarTopic: calendarTopic,
		Topics:        a.topics,
	}, nil
}
