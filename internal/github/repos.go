// Package github fetches repository metadata used to ground repo-sourced
// drafts in what the project actually is.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const defaultBaseURL = "https://api.github.com"

// readmeExcerptLimit bounds how much README prose is carried into a prompt.
const readmeExcerptLimit = 300

// Repo is the subset of repository metadata the generator cares about.
type Repo struct {
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	Description string   `json:"description"`
	URL         string   `json:"html_url"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	Readme      string   `json:"-"`
}

// Client talks to the GitHub REST API with automatic retries.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewClient creates a GitHub client. The token is optional; unauthenticated
// requests work within GitHub's public rate limits.
func NewClient(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil

	return &Client{
		http:    rc.StandardClient(),
		baseURL: defaultBaseURL,
		token:   token,
	}
}

// FetchRepo returns metadata for "owner/name", including a short README
// excerpt when one is available. A missing README is not an error.
func (c *Client) FetchRepo(ctx context.Context, fullName string) (*Repo, error) {
	var repo Repo
	if err := c.getJSON(ctx, "/repos/"+fullName, &repo); err != nil {
		return nil, fmt.Errorf("fetch repo %s: %w", fullName, err)
	}

	readme, err := c.fetchReadme(ctx, fullName)
	if err == nil {
		repo.Readme = readme
	}

	return &repo, nil
}

// fetchReadme fetches and decodes the repository README, reduced to a short
// plain-prose excerpt.
func (c *Client) fetchReadme(ctx context.Context, fullName string) (string, error) {
	var payload struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := c.getJSON(ctx, "/repos/"+fullName+"/readme", &payload); err != nil {
		return "", err
	}

	raw := payload.Content
	if payload.Encoding == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(raw, "\n", ""))
		if err != nil {
			return "", fmt.Errorf("decode readme: %w", err)
		}
		raw = string(decoded)
	}

	return readmeExcerpt(raw), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// readmeExcerpt keeps the first prose lines of a README, skipping headings,
// badges, and links, up to the excerpt limit.
func readmeExcerpt(readme string) string {
	var parts []string
	length := 0
	for _, line := range strings.Split(readme, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "!") || strings.HasPrefix(line, "[") {
			continue
		}
		parts = append(parts, line)
		length += len(line)
		if length >= readmeExcerptLimit {
			break
		}
	}

	excerpt := strings.Join(parts, " ")
	if len(excerpt) > readmeExcerptLimit {
		excerpt = excerpt[:readmeExcerptLimit] + "..."
	}
	return excerpt
}
