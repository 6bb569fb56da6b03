// Package health reports liveness and readiness for the resolution server.
//
// Liveness (/healthz) only proves the process can still serve HTTP.
// Readiness (/readyz) probes the registered dependencies and distinguishes
// two failure classes: a required dependency (the gold-log sink — a service
// that cannot log must not take traffic) fails readiness outright, while an
// optional one (the teacher escalation backend, which the router degrades
// around on its own) only downgrades the report to "degraded" without
// failing it.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// probeTimeout caps each dependency probe, derived from the request context.
const probeTimeout = 5 * time.Second

// Readiness statuses, from best to worst.
const (
	StatusOK          = "ok"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"
)

// Checker probes one dependency by name.
type Checker struct {
	// Name keys the probe result in the JSON report ("goldlog", "teacher").
	Name string

	// Optional marks a dependency the service can run without. Its failure
	// degrades the report instead of failing readiness.
	Optional bool

	// Check returns nil when the dependency is usable. It must respect
	// context cancellation.
	Check func(ctx context.Context) error
}

// probe is one dependency's entry in the readiness report.
type probe struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// report is the JSON body of both endpoints.
type report struct {
	Status string           `json:"status"`
	Checks map[string]probe `json:"checks,omitempty"`
}

// Handler serves the /healthz and /readyz endpoints. The checker list is
// fixed at construction, so it is safe for concurrent use.
type Handler struct {
	checkers []Checker
}

// New builds a Handler over the given checkers. Probes run sequentially in
// the order given on every /readyz request.
func New(checkers ...Checker) *Handler {
	return &Handler{checkers: append([]Checker(nil), checkers...)}
}

// Healthz answers the liveness probe. Reaching it is the whole check.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, report{Status: StatusOK})
}

// Readyz runs every probe and aggregates: all pass is "ok"; only optional
// failures is "degraded" (still 200, the service answers without them); any
// required failure is "unavailable" with 503.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	res := report{
		Status: StatusOK,
		Checks: make(map[string]probe, len(h.checkers)),
	}

	for _, c := range h.checkers {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := c.Check(ctx)
		cancel()

		if err == nil {
			res.Checks[c.Name] = probe{Status: StatusOK}
			continue
		}
		res.Checks[c.Name] = probe{Status: StatusUnavailable, Error: err.Error()}
		if c.Optional {
			if res.Status == StatusOK {
				res.Status = StatusDegraded
			}
		} else {
			res.Status = StatusUnavailable
		}
	}

	code := http.StatusOK
	if res.Status == StatusUnavailable {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, res)
}

// Register adds both routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
