package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/cadence/internal/engine"
	"github.com/hyperengineering/cadence/internal/schedule"
	"github.com/hyperengineering/cadence/internal/store"
	"github.com/hyperengineering/cadence/internal/types"
)

type fakeRunner struct {
	item  *types.ContentItem
	err   error
	force bool
}

func (f *fakeRunner) RunOnce(ctx context.Context, force bool) (*types.ContentItem, error) {
	f.force = force
	return f.item, f.err
}

func newTestHandler(t *testing.T, runner Runner) (*Handler, store.Store) {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	if runner == nil {
		runner = &fakeRunner{}
	}
	return NewHandler(s, runner, "test"), s
}

func TestHealth(t *testing.T) {
	h, s := newTestHandler(t, nil)
	ctx := context.Background()

	if err := s.AppendContent(ctx, types.ContentItem{
		ID: "01TEST", Topic: "AI", Source: types.SourceNiche,
		Text: "hello", Hash: types.ContentHash("hello"),
		QualityScore: 80, PublishedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp types.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || resp.ContentCount != 1 {
		t.Errorf("unexpected health payload: %+v", resp)
	}
	if resp.LastPublish == nil {
		t.Error("expected last publish timestamp")
	}
}

func TestHistory_EmptyIsNotNull(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

func TestHistory_InvalidLimit(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=9999", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected problem+json, got %s", ct)
	}
}

func TestEnqueueRepo(t *testing.T) {
	h, s := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue", strings.NewReader(`{"repo":"acme/widgets"}`))
	NewRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	pending, err := s.PendingRepos(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0] != "acme/widgets" {
		t.Errorf("expected queued repo, got %v", pending)
	}
}

func TestEnqueueRepo_RejectsBareName(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue", strings.NewReader(`{"repo":"widgets"}`))
	NewRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRun_Success(t *testing.T) {
	runner := &fakeRunner{item: &types.ContentItem{ID: "01TEST", Topic: "AI"}}
	h, _ := newTestHandler(t, runner)

	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/run?force=true", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !runner.force {
		t.Error("expected force flag passed through")
	}
}

func TestRun_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"generation unavailable", engine.ErrGenerationUnavailable, http.StatusServiceUnavailable},
		{"validation exhausted", engine.ErrValidationExhausted, http.StatusUnprocessableEntity},
		{"not due", schedule.ErrNotDue, http.StatusTooEarly},
		{"duplicate", store.ErrDuplicateHash, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, &fakeRunner{err: tt.err})

			rec := httptest.NewRecorder()
			NewRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/run", nil))

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
			var p Problem
			if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
				t.Fatal(err)
			}
			if p.Status != tt.want || p.Instance != "/api/v1/run" {
				t.Errorf("unexpected problem payload: %+v", p)
			}
		})
	}
}
