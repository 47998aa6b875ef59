package trending

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testAtomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>arXiv Query Results</title>
  <entry>
    <title>Efficient Sparse Attention for
      Long-Context Transformers</title>
    <id>http://arxiv.org/abs/0000.00001</id>
  </entry>
  <entry>
    <title>Diffusion Models for Molecular Design</title>
    <id>http://arxiv.org/abs/0000.00002</id>
  </entry>
</feed>`

func TestTopics_ParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(testAtomFeed))
	}))
	defer srv.Close()

	src := New(srv.URL, 5*time.Second)
	topics, err := src.Topics(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %d: %v", len(topics), topics)
	}
	// Whitespace inside titles must be collapsed
	if topics[0] != "Efficient Sparse Attention for Long-Context Transformers" {
		t.Errorf("unexpected first topic %q", topics[0])
	}
	if topics[1] != "Diffusion Models for Molecular Design" {
		t.Errorf("unexpected second topic %q", topics[1])
	}
}

func TestTopics_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := New(srv.URL, 5*time.Second)
	if _, err := src.Topics(context.Background()); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestTopics_InvalidFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a feed"))
	}))
	defer srv.Close()

	src := New(srv.URL, 5*time.Second)
	if _, err := src.Topics(context.Background()); err == nil {
		t.Error("expected error for unparseable feed")
	}
}

func TestNew_DefaultURL(t *testing.T) {
	src := New("", 0)
	if src.url != DefaultFeedURL {
		t.Errorf("expected default feed URL, got %q", src.url)
	}
}
