// Package cooldown enforces a minimum recurrence interval between uses of
// the same topic.
package cooldown

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hyperengineering/cadence/internal/store"
)

// DefaultWindow is the minimum elapsed time before a topic may be reused.
const DefaultWindow = 14 * 24 * time.Hour

// DefaultMaxTopics bounds the in-memory fast-lookup cache.
const DefaultMaxTopics = 100

// Tracker answers "may this topic be used now?" against durable per-topic
// usage records. A bounded LRU cache fronts the store; cache misses fall
// through to the database, so eviction can never cause a topic's usage to be
// judged incorrectly.
type Tracker struct {
	usage  store.UsageStore
	window time.Duration
	cache  *lru.Cache[string, time.Time]
}

// New creates a Tracker over the given usage store. window and maxTopics
// fall back to the defaults when zero.
func New(usage store.UsageStore, window time.Duration, maxTopics int) (*Tracker, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxTopics <= 0 {
		maxTopics = DefaultMaxTopics
	}
	cache, err := lru.New[string, time.Time](maxTopics)
	if err != nil {
		return nil, fmt.Errorf("create cooldown cache: %w", err)
	}
	return &Tracker{usage: usage, window: window, cache: cache}, nil
}

// Window returns the configured cooldown window.
func (t *Tracker) Window() time.Duration {
	return t.window
}

// IsAllowed reports whether topic may be used at now. A topic with no prior
// usage is always allowed; otherwise the elapsed time must be at least the
// cooldown window (boundary inclusive).
func (t *Tracker) IsAllowed(ctx context.Context, topic string, now time.Time) (bool, error) {
	lastUsed, ok := t.cache.Get(topic)
	if !ok {
		usage, err := t.usage.GetTopicUsage(ctx, topic)
		if errors.Is(err, store.ErrNotFound) {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("cooldown lookup: %w", err)
		}
		lastUsed = usage.LastUsedAt
		t.cache.Add(topic, lastUsed)
	}
	return now.Sub(lastUsed) >= t.window, nil
}

// Record upserts the topic's last-used timestamp. The durable write happens
// before the cache update so a crash can only lose the cache, never the
// usage record.
func (t *Tracker) Record(ctx context.Context, topic string, now time.Time) error {
	if err := t.usage.UpsertTopicUsage(ctx, topic, now); err != nil {
		return fmt.Errorf("cooldown record: %w", err)
	}
	t.cache.Add(topic, now)
	return nil
}
