package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testReadme = `# Widgets

[![build](https://example.com/badge.svg)](https://example.com)

Widgets is a toolkit for generating configurable widgets from declarative specs.
It ships with a CLI and a library interface.
`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-token", 5*time.Second)
	c.baseURL = srv.URL
	return c
}

func TestFetchRepo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing auth header, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"name":        "widgets",
			"full_name":   "acme/widgets",
			"description": "Configurable widget toolkit",
			"html_url":    "https://github.com/acme/widgets",
			"language":    "Go",
			"topics":      []string{"widgets", "codegen"},
		})
	})
	mux.HandleFunc("/repos/acme/widgets/readme", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"content":  base64.StdEncoding.EncodeToString([]byte(testReadme)),
			"encoding": "base64",
		})
	})

	repo, err := newTestClient(t, mux).FetchRepo(context.Background(), "acme/widgets")
	if err != nil {
		t.Fatal(err)
	}

	if repo.Name != "widgets" || repo.Language != "Go" {
		t.Errorf("unexpected repo metadata: %+v", repo)
	}
	if repo.Readme == "" {
		t.Fatal("expected README excerpt")
	}
	// Headings and badges must be stripped from the excerpt
	if got := repo.Readme; got[0] == '#' {
		t.Errorf("excerpt starts with heading: %q", got)
	}
}

func TestFetchRepo_MissingReadmeIsNotFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"name": "widgets"})
	})
	mux.HandleFunc("/repos/acme/widgets/readme", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	repo, err := newTestClient(t, mux).FetchRepo(context.Background(), "acme/widgets")
	if err != nil {
		t.Fatal(err)
	}
	if repo.Readme != "" {
		t.Errorf("expected empty README, got %q", repo.Readme)
	}
}

func TestFetchRepo_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	if _, err := client.FetchRepo(context.Background(), "acme/missing"); err == nil {
		t.Error("expected error for missing repo")
	}
}

func TestReadmeExcerpt(t *testing.T) {
	got := readmeExcerpt(testReadme)
	want := "Widgets is a toolkit for generating configurable widgets from declarative specs. It ships with a CLI and a library interface."
	if got != want {
		t.Errorf("readmeExcerpt = %q, want %q", got, want)
	}
}
