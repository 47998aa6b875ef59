// Package worker runs the periodic posting loop for serve mode.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hyperengineering/cadence/internal/schedule"
	"github.com/hyperengineering/cadence/internal/types"
)

// Runner triggers one posting run.
type Runner interface {
	RunOnce(ctx context.Context, force bool) (*types.ContentItem, error)
}

// PostWorker periodically checks the schedule gate and posts when due. The
// gate holds the actual schedule; the check interval only bounds how late a
// due post can fire.
type PostWorker struct {
	runner   Runner
	interval time.Duration
}

// NewPostWorker creates a worker that checks every interval.
func NewPostWorker(runner Runner, interval time.Duration) *PostWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &PostWorker{runner: runner, interval: interval}
}

// Run starts the worker loop. Blocks until ctx is cancelled.
// Checks immediately on start so a restart never misses an overdue post.
func (w *PostWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "poster",
		"check_interval", w.interval.String(),
	)

	w.runCycle(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "poster",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// runCycle executes a single check-and-post cycle.
func (w *PostWorker) runCycle(ctx context.Context) {
	start := time.Now()

	item, err := w.runner.RunOnce(ctx, false)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, schedule.ErrNotDue) {
			slog.Debug("post not due",
				"component", "worker",
				"action", "check_skipped",
			)
			return
		}
		slog.Error("posting run failed",
			"component", "worker",
			"action", "run_failed",
			"error", err,
		)
		return
	}

	slog.Info("posting run completed",
		"component", "worker",
		"action", "run_complete",
		"id", item.ID,
		"topic", item.Topic,
		"source", item.Source,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
