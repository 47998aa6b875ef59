// Package trending fetches trending topic signals from an external Atom/RSS
// feed. The default source is the arXiv cs.AI/cs.LG listing, mirroring where
// fresh machine-learning topics actually surface.
package trending

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/mmcdole/gofeed"
)

// DefaultFeedURL lists the most recent AI/ML submissions on arXiv.
const DefaultFeedURL = "http://export.arxiv.org/api/query?search_query=cat:cs.AI+OR+cat:cs.LG&sortBy=submittedDate&sortOrder=descending&max_results=5"

const maxTopics = 5

// Source fetches trending topics from a feed URL.
type Source struct {
	url    string
	client *http.Client
	parser *gofeed.Parser
}

// New creates a trending source for the given feed URL. An empty URL selects
// the default arXiv feed.
func New(feedURL string, timeout time.Duration) *Source {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil

	return &Source{
		url:    feedURL,
		client: rc.StandardClient(),
		parser: gofeed.NewParser(),
	}
}

// Topics returns up to five trending topic titles, newest first.
func (s *Source) Topics(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create trending request: %w", err)
	}
	req.Header.Set("User-Agent", "cadence/1.0 (+https://github.com/hyperengineering/cadence)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trending feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trending feed returned HTTP %d", resp.StatusCode)
	}

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse trending feed: %w", err)
	}

	topics := make([]string, 0, maxTopics)
	for _, entry := range feed.Items {
		title := strings.Join(strings.Fields(entry.Title), " ")
		if title == "" {
			continue
		}
		topics = append(topics, title)
		if len(topics) == maxTopics {
			break
		}
	}
	return topics, nil
}
