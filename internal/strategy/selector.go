// Package strategy chooses what to write about next. Selection is a strict
// priority chain, not a weighted choice: given the same snapshot and clock it
// always returns the same answer, which keeps runs testable and stops sources
// from thrashing when several are eligible at once.
package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperengineering/cadence/internal/types"
)

// DefaultFallbackTopic is used when every other source is exhausted. It
// carries no cooldown restriction.
const DefaultFallbackTopic = "Artificial Intelligence and Machine Learning"

// CooldownChecker answers whether a topic may be used at a point in time.
type CooldownChecker interface {
	IsAllowed(ctx context.Context, topic string, now time.Time) (bool, error)
}

// TrendingSource supplies externally trending topics. Optional; a nil source
// skips the trending stage.
type TrendingSource interface {
	Topics(ctx context.Context) ([]string, error)
}

// Selector resolves the next (source, topic) pair.
type Selector struct {
	cooldown      CooldownChecker
	trending      TrendingSource
	fallbackTopic string
}

// New creates a Selector. fallbackTopic falls back to the default when empty.
func New(cooldown CooldownChecker, trending TrendingSource, fallbackTopic string) *Selector {
	if fallbackTopic == "" {
		fallbackTopic = DefaultFallbackTopic
	}
	return &Selector{
		cooldown:      cooldown,
		trending:      trending,
		fallbackTopic: fallbackTopic,
	}
}

// Select walks the priority chain and returns the first eligible selection:
//
//  1. head of the pending repo queue
//  2. today's calendar topic, if not on cooldown
//  3. first configured topic not on cooldown, in list order
//  4. first trending topic from the external signal
//  5. the fixed fallback topic
//
// Trending fetch failures are logged and skipped; the fallback guarantees a
// selection is always produced.
func (s *Selector) Select(ctx context.Context, snapshot types.SelectionContext, now time.Time) (types.Selection, error) {
	if len(snapshot.PendingQueue) > 0 {
		return types.Selection{Source: types.SourceRepo, Topic: snapshot.PendingQueue[0]}, nil
	}

	if snapshot.CalendarTopic != "" {
		allowed, err := s.cooldown.IsAllowed(ctx, snapshot.CalendarTopic, now)
		if err != nil {
			return types.Selection{}, fmt.Errorf("calendar cooldown check: %w", err)
		}
		if allowed {
			return types.Selection{Source: types.SourceCalendar, Topic: snapshot.CalendarTopic}, nil
		}
	}

	for _, topic := range snapshot.Topics {
		allowed, err := s.cooldown.IsAllowed(ctx, topic, now)
		if err != nil {
			return types.Selection{}, fmt.Errorf("topic cooldown check: %w", err)
		}
		if allowed {
			return types.Selection{Source: types.SourceNiche, Topic: topic}, nil
		}
	}

	if s.trending != nil {
		topics, err := s.trending.Topics(ctx)
		if err != nil {
			slog.Warn("trending fetch failed, continuing to fallback",
				"component", "strategy",
				"error", err,
			)
		} else if len(topics) > 0 {
			return types.Selection{Source: types.SourceTrending, Topic: topics[0]}, nil
		}
	}

	return types.Selection{Source: types.SourceFallback, Topic: s.fallbackTopic}, nil
}
