package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Source identifies where a topic selection came from. The values form a
// strict priority chain in the strategy selector.
type Source string

const (
	SourceRepo     Source = "repo"
	SourceCalendar Source = "calendar"
	SourceNiche    Source = "niche"
	SourceTrending Source = "trending"
	SourceFallback Source = "fallback"
)

// ContentItem is a published piece of content. Immutable once created and
// owned exclusively by the history store after acceptance.
type ContentItem struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic"`
	Source       Source    `json:"source"`
	Title        string    `json:"title,omitempty"`
	Text         string    `json:"text"`
	Hash         string    `json:"hash"`
	QualityScore int       `json:"quality_score"`
	PublishedAt  time.Time `json:"published_at"`
}

// TopicUsage records when a topic was last used. One record per topic,
// updated in place on every acceptance, never deleted.
type TopicUsage struct {
	Topic      string    `json:"topic"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// Selection is a (source, topic) pair chosen by the strategy selector.
type Selection struct {
	Source Source `json:"source"`
	Topic  string `json:"topic"`
}

// SelectionContext is a read-only snapshot assembled once per selection call.
type SelectionContext struct {
	PendingQueue  []string
	CalendarTopic string
	Topics        []string
}

// Draft is the raw output of a generator before validation.
type Draft struct {
	Title        string   `json:"title,omitempty"`
	Body         string   `json:"body"`
	Hashtags     []string `json:"hashtags,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	QualityScore int      `json:"quality_score"`
}

// Candidate is a transient draft awaiting validation. It is never persisted
// directly; acceptance promotes it to a ContentItem.
type Candidate struct {
	Selection
	Title        string
	Text         string
	QualityScore int
	Similarity   float64
	Attempt      int
}

// QueuedRepo is a pending repository awaiting a post.
type QueuedRepo struct {
	Repo       string     `json:"repo"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
}

// ContentHash returns the hex-encoded fingerprint of a content body.
// Two items with the same hash are the same content as far as the history
// store is concerned.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// HealthResponse is the status API health payload.
type HealthResponse struct {
	Status       string     `json:"status"`
	Version      string     `json:"version"`
	ContentCount int64      `json:"content_count"`
	LastPublish  *time.Time `json:"last_publish,omitempty"`
}
