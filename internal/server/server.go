// Package server exposes the resolver over HTTP: the resolve endpoint, a
// websocket tail of the gold log, health probes, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/kkarklins/balss/internal/goldlog"
	"github.com/kkarklins/balss/internal/health"
	"github.com/kkarklins/balss/internal/observe"
	"github.com/kkarklins/balss/internal/resolve"
	"github.com/kkarklins/balss/pkg/types"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second

	// maxBodyBytes bounds the resolve request body. Transcripts are short;
	// anything larger is garbage.
	maxBodyBytes = 64 << 10
)

// Server is the Balss HTTP server. Construct with [New], run with
// [Server.Run].
type Server struct {
	addr    string
	router  *resolve.Router
	hub     *goldlog.Hub
	health  *health.Handler
	metrics *observe.Metrics
	log     *slog.Logger
}

// New assembles the server. hub may be nil to disable the gold-log tail.
func New(addr string, router *resolve.Router, hub *goldlog.Hub, h *health.Handler, m *observe.Metrics, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if m == nil {
		m = observe.DefaultMetrics()
	}
	return &Server{
		addr:    addr,
		router:  router,
		hub:     hub,
		health:  h,
		metrics: m,
		log:     log,
	}
}

// Handler builds the route table. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/resolve", s.handleResolve)
	if s.hub != nil {
		mux.HandleFunc("GET /v1/goldlog/tail", s.handleTail)
	}
	mux.Handle("GET /metrics", promhttp.Handler())
	if s.health != nil {
		s.health.Register(mux)
	}
	return observe.Middleware(s.metrics)(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully and drains
// pending gold-log appends.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		if err := s.router.Drain(shutdownCtx); err != nil {
			return fmt.Errorf("server: drain gold log: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// resolveRequest is the POST /v1/resolve body.
type resolveRequest struct {
	// Text is the raw ASR transcript.
	Text string `json:"text"`

	// Language is the transcript language tag, "lv" or "et".
	Language string `json:"language"`
}

// resolveResponse is the POST /v1/resolve reply.
type resolveResponse struct {
	Decision   goldlog.Decision  `json:"decision"`
	Confidence float64           `json:"confidence"`
	Result     *types.Resolution `json:"result"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}
	lang, ok := types.ParseLanguage(req.Language)
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported language: "+req.Language)
		return
	}

	resp := s.router.Resolve(r.Context(), req.Text, lang)
	writeJSON(w, http.StatusOK, resolveResponse{
		Decision:   resp.Decision,
		Confidence: resp.Confidence,
		Result:     resp.Resolution,
	})
}

// handleTail upgrades to a websocket and streams gold-log entries as they are
// appended. The subscriber is dropped when the client goes away or falls too
// far behind.
func (s *Server) handleTail(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("gold log tail accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	entries, cancel := s.hub.Subscribe()
	defer cancel()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}
			if err := wsjson.Write(ctx, conn, entry); err != nil {
				s.log.Debug("gold log tail write failed", "error", err)
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
