package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hyperengineering/cadence/internal/store"
	"github.com/hyperengineering/cadence/internal/types"
)

// Runner triggers one posting run. ErrNotDue-style gating is the runner's
// concern; the handler only maps outcomes to responses.
type Runner interface {
	RunOnce(ctx context.Context, force bool) (*types.ContentItem, error)
}

// Handler implements the API handlers
type Handler struct {
	store   store.Store
	runner  Runner
	version string
}

// NewHandler creates a new Handler with store.Store interface
func NewHandler(s store.Store, runner Runner, version string) *Handler {
	return &Handler{
		store:   s,
		runner:  runner,
		version: version,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.ContentCount(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	lastPublish, err := h.store.LastPublishedAt(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	resp := types.HealthResponse{
		Status:       "healthy",
		Version:      h.version,
		ContentCount: count,
		LastPublish:  lastPublish,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// History handles GET /api/v1/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := 30
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			WriteProblem(w, r, http.StatusBadRequest, "limit must be an integer between 1 and 500")
			return
		}
		limit = n
	}

	items, err := h.store.RecentContent(r.Context(), limit)
	if err != nil {
		slog.Error("history query failed", "error", err)
		MapRunError(w, r, err)
		return
	}
	if items == nil {
		items = []types.ContentItem{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"items": items})
}

// Topics handles GET /api/v1/topics
func (h *Handler) Topics(w http.ResponseWriter, r *http.Request) {
	usage, err := h.store.ListTopicUsage(r.Context(), 100)
	if err != nil {
		slog.Error("topic usage query failed", "error", err)
		MapRunError(w, r, err)
		return
	}
	if usage == nil {
		usage = []types.TopicUsage{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"topics": usage})
}

// Queue handles GET /api/v1/queue
func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	repos, err := h.store.PendingRepos(r.Context())
	if err != nil {
		slog.Error("queue query failed", "error", err)
		MapRunError(w, r, err)
		return
	}
	if repos == nil {
		repos = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"pending": repos})
}

// EnqueueRepo handles POST /api/v1/queue
func (h *Handler) EnqueueRepo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Repo string `json:"repo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	req.Repo = strings.TrimSpace(req.Repo)
	if req.Repo == "" || !strings.Contains(req.Repo, "/") {
		WriteProblem(w, r, http.StatusBadRequest, `repo must be "owner/name"`)
		return
	}

	if err := h.store.EnqueueRepo(r.Context(), req.Repo, time.Now().UTC()); err != nil {
		slog.Error("enqueue failed", "error", err, "repo", req.Repo)
		MapRunError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"repo": req.Repo})
}

// Run handles POST /api/v1/run. With force=true the schedule gate is
// bypassed.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	item, err := h.runner.RunOnce(r.Context(), force)
	if err != nil {
		slog.Error("run failed", "error", err, "force", force)
		MapRunError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}
