// Package health provides HTTP liveness and readiness probes.
//
// /healthz always returns 200 while the process can serve HTTP. /readyz
// returns 200 only when every registered [Checker] passes; a search backend
// that cannot be reached makes the service not ready. Responses are JSON with
// a top-level "status" field and a per-check "checks" map.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/stt"
)

// checkTimeout bounds a single readiness check.
const checkTimeout = 5 * time.Second

// Checker is a named readiness check. Check returns nil when the dependency
// is healthy and must respect context cancellation.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

// IndexChecker probes the search index with a lightweight Ping.
func IndexChecker(idx search.Index) Checker {
	return Checker{
		Name: "search-index",
		Check: func(ctx context.Context) error {
			return idx.Ping(ctx)
		},
	}
}

// STTChecker reports whether a speech-to-text provider is configured. It does
// not call the remote API; hosted STT endpoints have no cheap probe.
func STTChecker(p stt.Provider) Checker {
	return Checker{
		Name: "stt",
		Check: func(context.Context) error {
			if p == nil {
				return errors.New("no speech-to-text provider configured")
			}
			return nil
		},
	}
}

// result is the JSON response body for both probes.
type result struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler serves the /healthz and /readyz endpoints. The checker list is
// fixed at construction time, so the handler is safe for concurrent use.
type Handler struct {
	checkers []Checker
}

// New creates a [Handler] that evaluates the given checkers, in order, on
// each /readyz request.
func New(checkers ...Checker) *Handler {
	c := make([]Checker, len(checkers))
	copy(c, checkers)
	return &Handler{checkers: c}
}

// Healthz is the liveness probe. It always returns 200 OK.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{Status: "ok"})
}

// Readyz evaluates every registered checker and returns 503 if any fail.
// Each check runs under a [checkTimeout] deadline derived from the request
// context.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.checkers))
	allOK := true

	for _, c := range h.checkers {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := c.Check(ctx)
		cancel()

		if err != nil {
			checks[c.Name] = "fail: " + err.Error()
			allOK = false
		} else {
			checks[c.Name] = "ok"
		}
	}

	res := result{Status: "ok", Checks: checks}
	status := http.StatusOK
	if !allOK {
		res.Status = "fail"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

// Register adds the probe routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
