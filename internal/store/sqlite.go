package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperengineering/cadence/internal/types"
	_ "modernc.org/sqlite"
)

// Compile-time interface check
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore is the SQLite-backed content database. A single write per
// acceptance (one INSERT, one upsert) keeps concurrent runs serializable at
// the database level; WAL mode plus busy_timeout covers the case of a manual
// run overlapping a scheduled one.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dbPath, applies pragmas, and runs
// migrations. The parent directory is created if missing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// enablePragmas sets SQLite pragmas for performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AppendContent durably persists a content item. Returns ErrDuplicateHash if
// an item with the same hash already exists; the unique index makes the
// check-and-insert a single atomic statement.
func (s *SQLiteStore) AppendContent(ctx context.Context, item types.ContentItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_items (id, topic, source, title, text, hash, quality_score, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.Topic, string(item.Source), item.Title, item.Text, item.Hash,
		item.QualityScore, item.PublishedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateHash
		}
		return fmt.Errorf("append content: %w", err)
	}
	return nil
}

// RecentContent returns the limit most recently published items, most recent
// first. Fewer than limit items returns all of them.
func (s *SQLiteStore) RecentContent(ctx context.Context, limit int) ([]types.ContentItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, topic, source, title, text, hash, quality_score, published_at
		FROM content_items
		ORDER BY published_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent content: %w", err)
	}
	defer rows.Close()

	var items []types.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ContentCount returns the number of published content items.
func (s *SQLiteStore) ContentCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_items").Scan(&count)
	return count, err
}

// LastPublishedAt returns the timestamp of the newest item, or nil if the
// history is empty.
func (s *SQLiteStore) LastPublishedAt(ctx context.Context) (*time.Time, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(published_at) FROM content_items").Scan(&raw)
	if err != nil {
		return nil, err
	}
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return nil, fmt.Errorf("parse published_at: %w", err)
	}
	return &t, nil
}

// GetTopicUsage returns the usage record for a topic, or ErrNotFound.
func (s *SQLiteStore) GetTopicUsage(ctx context.Context, topic string) (*types.TopicUsage, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT last_used_at FROM topic_usage WHERE topic = ?", topic).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query topic usage: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("parse last_used_at: %w", err)
	}
	return &types.TopicUsage{Topic: topic, LastUsedAt: t}, nil
}

// UpsertTopicUsage sets last_used_at for a topic, creating the record on
// first use. A single statement keeps concurrent acceptances serializable.
func (s *SQLiteStore) UpsertTopicUsage(ctx context.Context, topic string, usedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topic_usage (topic, last_used_at) VALUES (?, ?)
		ON CONFLICT(topic) DO UPDATE SET last_used_at = excluded.last_used_at
	`, topic, usedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert topic usage: %w", err)
	}
	return nil
}

// ListTopicUsage returns the most recently used topics, newest first.
func (s *SQLiteStore) ListTopicUsage(ctx context.Context, limit int) ([]types.TopicUsage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT topic, last_used_at FROM topic_usage
		ORDER BY last_used_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query topic usage: %w", err)
	}
	defer rows.Close()

	var usages []types.TopicUsage
	for rows.Next() {
		var u types.TopicUsage
		var raw string
		if err := rows.Scan(&u.Topic, &raw); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("parse last_used_at: %w", err)
		}
		u.LastUsedAt = t
		usages = append(usages, u)
	}
	return usages, rows.Err()
}

// EnqueueRepo adds a repository to the pending queue. Re-enqueueing a used
// repo resets it to pending.
func (s *SQLiteStore) EnqueueRepo(ctx context.Context, repo string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repo_queue (repo, enqueued_at, used_at) VALUES (?, ?, NULL)
		ON CONFLICT(repo) DO UPDATE SET enqueued_at = excluded.enqueued_at, used_at = NULL
	`, repo, now.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("enqueue repo: %w", err)
	}
	return nil
}

// PendingRepos returns pending repositories in enqueue order.
func (s *SQLiteStore) PendingRepos(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT repo FROM repo_queue WHERE used_at IS NULL ORDER BY enqueued_at, repo
	`)
	if err != nil {
		return nil, fmt.Errorf("query repo queue: %w", err)
	}
	defer rows.Close()

	var repos []string
	for rows.Next() {
		var repo string
		if err := rows.Scan(&repo); err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, rows.Err()
}

// MarkRepoUsed moves a repository out of the pending queue.
func (s *SQLiteStore) MarkRepoUsed(ctx context.Context, repo string, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE repo_queue SET used_at = ? WHERE repo = ?",
		now.UTC().Format(time.RFC3339Nano), repo)
	if err != nil {
		return fmt.Errorf("mark repo used: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetState returns the value for a state key, or ErrNotFound.
func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM app_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query state: %w", err)
	}
	return value, nil
}

// SetState upserts a state key.
func (s *SQLiteStore) SetState(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
// modernc.org/sqlite surfaces constraint failures as plain errors, so we
// match the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// scanContentItem scans a row into a ContentItem, parsing timestamps.
func scanContentItem(scanner interface{ Scan(...any) error }) (*types.ContentItem, error) {
	var item types.ContentItem
	var source, publishedAt string

	err := scanner.Scan(
		&item.ID,
		&item.Topic,
		&source,
		&item.Title,
		&item.Text,
		&item.Hash,
		&item.QualityScore,
		&publishedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Source = types.Source(source)
	t, err := time.Parse(time.RFC3339Nano, publishedAt)
	if err != nil {
		return nil, fmt.Errorf("parse published_at: %w", err)
	}
	item.PublishedAt = t

	return &item, nil
}
