package store

import (
	"context"
	"time"

	"github.com/hyperengineering/cadence/internal/types"
)

// HistoryStore is the durable record of published content. Append is atomic
// and duplicate-safe; Recent reads a consistent snapshot.
type HistoryStore interface {
	AppendContent(ctx context.Context, item types.ContentItem) error
	RecentContent(ctx context.Context, limit int) ([]types.ContentItem, error)
}

// UsageStore persists per-topic last-used timestamps.
type UsageStore interface {
	GetTopicUsage(ctx context.Context, topic string) (*types.TopicUsage, error)
	UpsertTopicUsage(ctx context.Context, topic string, usedAt time.Time) error
	ListTopicUsage(ctx context.Context, limit int) ([]types.TopicUsage, error)
}

// QueueStore persists the pending repository queue.
type QueueStore interface {
	EnqueueRepo(ctx context.Context, repo string, now time.Time) error
	PendingRepos(ctx context.Context) ([]string, error)
	MarkRepoUsed(ctx context.Context, repo string, now time.Time) error
}

// StateStore is a small durable key/value table for run state such as the
// next scheduled post time.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, error)
	SetState(ctx context.Context, key, value string) error
}

// Store is the full contract backed by a single SQLite database.
type Store interface {
	HistoryStore
	UsageStore
	QueueStore
	StateStore
	ContentCount(ctx context.Context) (int64, error)
	LastPublishedAt(ctx context.Context) (*time.Time, error)
	Close() error
}
