// Package api serves refresh snapshots over HTTP.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"pool-stats-lab/internal/observability"
	"pool-stats-lab/internal/orchestrator"
)

// SnapshotPath is the route of the snapshot endpoint.
const SnapshotPath = "/api/snapshot"

// Refresher runs refresh cycles and remembers the last result.
type Refresher interface {
	Refresh(ctx context.Context) (*orchestrator.Snapshot, error)
	Last() *orchestrator.Snapshot
}

// Invalidator drops cached upstream data so the next fetch goes upstream.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Server answers snapshot requests, refreshing at most once per MaxAge.
type Server struct {
	runner      Refresher
	invalidator Invalidator
	maxAge      time.Duration
	logger      zerolog.Logger
	now         func() time.Time

	// refreshMu serializes refresh cycles triggered by concurrent requests.
	refreshMu sync.Mutex
}

// Options for creating Server.
type Options struct {
	Runner      Refresher
	Invalidator Invalidator   // optional, cleared on forced refresh
	MaxAge      time.Duration // snapshots younger than this are served as is
	Logger      zerolog.Logger
}

// New creates a new Server.
func New(opts Options) *Server {
	return &Server{
		runner:      opts.Runner,
		invalidator: opts.Invalidator,
		maxAge:      opts.MaxAge,
		logger:      opts.Logger.With().Str("component", "api").Logger(),
		now:         time.Now,
	}
}

// Handler returns the HTTP routes: the snapshot API, /metrics and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc(SnapshotPath, s.handleSnapshot)

	return mux
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		s.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	snap := s.snapshot(r.Context(), r.URL.Query().Get("refresh") == "1")
	if snap == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no snapshot available"})
		return
	}

	code := http.StatusOK
	switch snap.Status {
	case orchestrator.StatusFailed, orchestrator.StatusMalformed:
		code = http.StatusBadGateway
	}
	s.writeJSON(w, code, NewSnapshotResponse(snap))
}

// snapshot returns the last snapshot, refreshing it first when it is stale
// or force is set. A forced refresh also invalidates the upstream cache.
func (s *Server) snapshot(ctx context.Context, force bool) *orchestrator.Snapshot {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	last := s.runner.Last()
	if !force && last != nil && s.now().Sub(last.GeneratedAt) < s.maxAge {
		return last
	}

	if force && s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("cache invalidation failed")
		}
	}

	snap, err := s.runner.Refresh(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("refresh failed")
	}
	return snap
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		s.logger.Error().Err(err).Msg("encode response")
		code = http.StatusInternalServerError
		data = []byte(`{"error":"internal error"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
	observability.RecordAPIRequest(SnapshotPath, code)
}
