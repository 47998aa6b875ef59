// Package engine drives the accept/regenerate loop that turns a topic
// selection into exactly one accepted content item per run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperengineering/cadence/internal/similarity"
	"github.com/hyperengineering/cadence/internal/store"
	"github.com/hyperengineering/cadence/internal/types"
	"github.com/oklog/ulid/v2"
)

// Defaults for the validation loop.
const (
	DefaultMinQuality          = 70
	DefaultSimilarityThreshold = 0.8
	DefaultMaxAttempts         = 3
	DefaultHistoryWindow       = 30
)

// ExhaustedPolicy decides what happens when every attempt fails validation.
type ExhaustedPolicy string

const (
	// PolicyAcceptBest force-accepts the highest-quality candidate seen
	// across attempts, logged as a degraded outcome.
	PolicyAcceptBest ExhaustedPolicy = "accept-best"
	// PolicyFail ends the run with ErrValidationExhausted.
	PolicyFail ExhaustedPolicy = "fail"
)

// Selector resolves the next (source, topic) pair.
type Selector interface {
	Select(ctx context.Context, snapshot types.SelectionContext, now time.Time) (types.Selection, error)
}

// CooldownTracker gates and records topic reuse.
type CooldownTracker interface {
	IsAllowed(ctx context.Context, topic string, now time.Time) (bool, error)
	Record(ctx context.Context, topic string, now time.Time) error
}

// Generator produces a draft for a selection.
type Generator interface {
	Generate(ctx context.Context, sel types.Selection) (*types.Draft, error)
	Name() string
}

// Config tunes the controller. Zero values fall back to the defaults;
// ExhaustedPolicy defaults to accept-best.
type Config struct {
	MinQuality          int
	SimilarityThreshold float64
	MaxAttempts         int
	HistoryWindow       int
	ExhaustedPolicy     ExhaustedPolicy
}

func (c Config) withDefaults() Config {
	if c.MinQuality <= 0 {
		c.MinQuality = DefaultMinQuality
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = DefaultHistoryWindow
	}
	if c.ExhaustedPolicy == "" {
		c.ExhaustedPolicy = PolicyAcceptBest
	}
	return c
}

// Controller runs the selection, generation, and validation loop. One Run
// call accepts exactly one content item or ends with a classified terminal
// error. It holds no locks across the generator call; the stores are only
// touched synchronously before and after it.
type Controller struct {
	selector Selector
	gen      Generator
	history  store.HistoryStore
	cooldown CooldownTracker
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Controller. now overrides the clock for tests; nil uses
// time.Now.
func New(selector Selector, gen Generator, history store.HistoryStore, cooldown CooldownTracker, cfg Config, logger *slog.Logger, now func() time.Time) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Controller{
		selector: selector,
		gen:      gen,
		history:  history,
		cooldown: cooldown,
		cfg:      cfg.withDefaults(),
		logger:   logger.With("component", "engine"),
		now:      now,
	}
}

// Run executes one full selection, generation, and validation cycle and
// returns the accepted item. Validation failures and duplicate-hash appends
// trigger regeneration up to the attempt budget; what happens past the
// budget is decided by the configured exhausted policy.
func (c *Controller) Run(ctx context.Context, snapshot types.SelectionContext) (*types.ContentItem, error) {
	sel, err := c.selector.Select(ctx, snapshot, c.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoEligibleTopic, err)
	}
	c.logger.Info("topic selected", "source", sel.Source, "topic", sel.Topic)

	var (
		best       *types.Candidate
		lastGenErr error
		generated  int
	)

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			// Cancellation point between attempts. Validation itself is
			// pure computation and is never interrupted mid-flight.
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		draft, err := c.gen.Generate(ctx, sel)
		if err != nil {
			lastGenErr = err
			c.logger.Warn("generation failed",
				"attempt", attempt,
				"generator", c.gen.Name(),
				"error", err,
			)
			continue
		}
		generated++

		cand := types.Candidate{
			Selection:    sel,
			Title:        draft.Title,
			Text:         draft.Body,
			QualityScore: draft.QualityScore,
			Attempt:      attempt,
		}

		reason, err := c.validate(ctx, &cand)
		if err != nil {
			return nil, err
		}
		if best == nil || cand.QualityScore > best.QualityScore {
			best = &cand
		}
		if reason == "" {
			item, err := c.accept(ctx, cand, false)
			if errors.Is(err, store.ErrDuplicateHash) {
				c.logger.Warn("duplicate content hash, regenerating", "attempt", attempt)
				continue
			}
			if err != nil {
				return nil, err
			}
			return item, nil
		}

		c.logger.Info("candidate rejected",
			"attempt", attempt,
			"reason", reason,
			"quality", cand.QualityScore,
			"similarity", cand.Similarity,
		)
	}

	if generated == 0 {
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrGenerationUnavailable, c.cfg.MaxAttempts, lastGenErr)
	}

	if c.cfg.ExhaustedPolicy == PolicyFail {
		return nil, fmt.Errorf("%w after %d attempts", ErrValidationExhausted, c.cfg.MaxAttempts)
	}

	c.logger.Warn("forced accept of best candidate",
		"quality", best.QualityScore,
		"similarity", best.Similarity,
		"attempts", c.cfg.MaxAttempts,
	)
	item, err := c.accept(ctx, *best, true)
	if errors.Is(err, store.ErrDuplicateHash) {
		// Even a forced accept cannot duplicate history.
		return nil, fmt.Errorf("%w: best candidate duplicates history", ErrValidationExhausted)
	}
	return item, err
}

// validate checks a candidate against the quality threshold, topic cooldown,
// and recent-history similarity, in that order. It returns the first failure
// reason, or "" when the candidate is acceptable, and fills in the measured
// similarity.
func (c *Controller) validate(ctx context.Context, cand *types.Candidate) (string, error) {
	if cand.QualityScore < c.cfg.MinQuality {
		return "quality below threshold", nil
	}

	// The fallback topic carries no cooldown restriction.
	if cand.Source != types.SourceFallback {
		allowed, err := c.cooldown.IsAllowed(ctx, cand.Topic, c.now())
		if err != nil {
			return "", err
		}
		if !allowed {
			return "topic on cooldown", nil
		}
	}

	recent, err := c.history.RecentContent(ctx, c.cfg.HistoryWindow)
	if err != nil {
		return "", fmt.Errorf("load recent history: %w", err)
	}
	corpus := make([]string, len(recent))
	for i, item := range recent {
		corpus[i] = item.Text
	}
	cand.Similarity = similarity.Score(cand.Text, corpus)
	if cand.Similarity >= c.cfg.SimilarityThreshold {
		return "too similar to recent content", nil
	}

	return "", nil
}

// accept promotes a candidate to a durable content item and records the
// topic usage. The append happens first; a duplicate hash surfaces as
// store.ErrDuplicateHash without having touched the cooldown record.
func (c *Controller) accept(ctx context.Context, cand types.Candidate, forced bool) (*types.ContentItem, error) {
	item := types.ContentItem{
		ID:           ulid.Make().String(),
		Topic:        cand.Topic,
		Source:       cand.Source,
		Title:        cand.Title,
		Text:         cand.Text,
		Hash:         types.ContentHash(cand.Text),
		QualityScore: cand.QualityScore,
		PublishedAt:  c.now(),
	}

	if err := c.history.AppendContent(ctx, item); err != nil {
		if errors.Is(err, store.ErrDuplicateHash) {
			return nil, err
		}
		return nil, fmt.Errorf("append accepted content: %w", err)
	}
	if err := c.cooldown.Record(ctx, item.Topic, item.PublishedAt); err != nil {
		return nil, err
	}

	c.logger.Info("content accepted",
		"id", item.ID,
		"source", item.Source,
		"topic", item.Topic,
		"quality", item.QualityScore,
		"attempt", cand.Attempt,
		"forced", forced,
	)
	return &item, nil
}
