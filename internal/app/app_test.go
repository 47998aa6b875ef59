package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hyperengineering/cadence/internal/cooldown"
	"github.com/hyperengineering/cadence/internal/engine"
	"github.com/hyperengineering/cadence/internal/schedule"
	"github.com/hyperengineering/cadence/internal/store"
	"github.com/hyperengineering/cadence/internal/strategy"
	"github.com/hyperengineering/cadence/internal/types"
)

var appNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type stubGen struct {
	calls int
}

func (g *stubGen) Name() string { return "stub" }

func (g *stubGen) Generate(ctx context.Context, sel types.Selection) (*types.Draft, error) {
	g.calls++
	return &types.Draft{
		Title:        "On " + sel.Topic,
		Body:         "a distinct post about " + sel.Topic,
		QualityScore: 90,
	}, nil
}

func newTestApp(t *testing.T) (*App, store.Store) {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	tracker, err := cooldown.New(s, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	clock := func() time.Time { return appNow }
	sel := strategy.New(tracker, nil, "")
	ctrl := engine.New(sel, &stubGen{}, s, tracker, engine.Config{}, nil, clock)
	gate := schedule.New(s, 24*time.Hour, -1)

	return New(s, gate, ctrl, nil, []string{"Machine Learning"}, nil, clock), s
}

func TestRunOnce_AcceptsAndReschedules(t *testing.T) {
	app, s := newTestApp(t)
	ctx := context.Background()

	item, err := app.RunOnce(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if item.Topic != "Machine Learning" || item.Source != types.SourceNiche {
		t.Errorf("unexpected selection: %+v", item)
	}

	recent, err := s.RecentContent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 item in history, got %d", len(recent))
	}

	// The gate must now block an immediate second run.
	if _, err := app.RunOnce(ctx, false); !errors.Is(err, schedule.ErrNotDue) {
		t.Errorf("expected ErrNotDue on immediate rerun, got %v", err)
	}
}

func TestRunOnce_ForceBypassesGate(t *testing.T) {
	app, _ := newTestApp(t)
	ctx := context.Background()

	if _, err := app.RunOnce(ctx, false); err != nil {
		t.Fatal(err)
	}

	item, err := app.RunOnce(ctx, true)
	if err != nil {
		t.Fatalf("expected forced run to bypass gate, got %v", err)
	}
	// Same topic is on cooldown now, so the selector falls through.
	if item.Source == types.SourceNiche {
		t.Errorf("expected a non-niche source on the forced rerun, got %+v", item)
	}
}

func TestRunOnce_QueuedRepoWinsAndIsMarkedUsed(t *testing.T) {
	app, s := newTestApp(t)
	ctx := context.Background()

	if err := s.EnqueueRepo(ctx, "acme/widgets", appNow.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	item, err := app.RunOnce(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if item.Source != types.SourceRepo || item.Topic != "acme/widgets" {
		t.Errorf("expected queued repo selected, got %+v", item)
	}

	pending, err := s.PendingRepos(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("expected repo marked used, still pending: %v", pending)
	}
}
