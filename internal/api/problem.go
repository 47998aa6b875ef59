package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/cadence/internal/engine"
	"github.com/hyperengineering/cadence/internal/schedule"
	"github.com/hyperengineering/cadence/internal/store"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]struct {
	typeURI string
	title   string
}{
	http.StatusBadRequest: {
		typeURI: "https://cadence.dev/errors/bad-request",
		title:   "Bad Request",
	},
	http.StatusNotFound: {
		typeURI: "https://cadence.dev/errors/not-found",
		title:   "Not Found",
	},
	http.StatusConflict: {
		typeURI: "https://cadence.dev/errors/conflict",
		title:   "Conflict",
	},
	http.StatusUnprocessableEntity: {
		typeURI: "https://cadence.dev/errors/validation-exhausted",
		title:   "Validation Exhausted",
	},
	http.StatusServiceUnavailable: {
		typeURI: "https://cadence.dev/errors/service-unavailable",
		title:   "Service Unavailable",
	},
	http.StatusTooEarly: {
		typeURI: "https://cadence.dev/errors/not-due",
		title:   "Not Due",
	},
	http.StatusInternalServerError: {
		typeURI: "https://cadence.dev/errors/internal-error",
		title:   "Internal Server Error",
	},
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	pt, ok := problemTypes[status]
	if !ok {
		pt = struct {
			typeURI string
			title   string
		}{
			typeURI: "https://cadence.dev/errors/unknown",
			title:   http.StatusText(status),
		}
	}

	p := Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// MapRunError converts engine and store errors to Problem Details responses.
func MapRunError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrGenerationUnavailable):
		WriteProblem(w, r, http.StatusServiceUnavailable, "Content generation unavailable")
	case errors.Is(err, engine.ErrValidationExhausted):
		WriteProblem(w, r, http.StatusUnprocessableEntity, "No candidate passed validation within the attempt budget")
	case errors.Is(err, store.ErrDuplicateHash):
		WriteProblem(w, r, http.StatusConflict, "Duplicate content")
	case errors.Is(err, store.ErrNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
	case errors.Is(err, schedule.ErrNotDue):
		WriteProblem(w, r, http.StatusTooEarly, "Next post time not reached")
	default:
		// Never expose internal error details to client
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}
