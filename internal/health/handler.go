// Package health provides the liveness, readiness, and startup probe handlers.
package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/booktrack/booktrack/internal/pkg/ctxlog"
	"github.com/booktrack/booktrack/internal/pkg/httputil"
	"github.com/booktrack/booktrack/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

// Pinger is the subset of the connection pool the readiness probe needs.
// *pgxpool.Pool satisfies it.
type Pinger interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// State tracks one-time initialization. The started flag flips to true
// exactly once, right after the pool object is constructed; it does not
// imply a successful database round-trip.
type State struct {
	started atomic.Bool
}

// NewState returns an un-started lifecycle state.
func NewState() *State {
	return &State{}
}

// MarkStarted records that initialization completed.
func (s *State) MarkStarted() {
	s.started.Store(true)
}

// Started reports whether initialization completed.
func (s *State) Started() bool {
	return s.started.Load()
}

// Handler serves the probe endpoints.
type Handler struct {
	db           Pinger
	state        *State
	checkTimeout time.Duration
}

// NewHandler creates a probe handler. db may be nil when the pool was
// never constructed; readiness then reports it as uninitialized.
func NewHandler(db Pinger, state *State) *Handler {
	return &Handler{
		db:           db,
		state:        state,
		checkTimeout: 2 * time.Second,
	}
}

// RegisterRoutes registers the probe endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Get("/startup", h.Startup)
}

// Healthz is the liveness probe. No I/O, no dependency checks.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz is the readiness probe: lease a connection and run a trivial
// round-trip. Every failure cause collapses into one 503.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "Pool not initialized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.checkTimeout)
	defer cancel()

	var one int
	if err := h.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		metrics.DBConnectionFailures.Inc()
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Error(w, http.StatusServiceUnavailable, "Database not ready")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Startup is the startup probe. It reflects the initialization flag only
// and stays deliberately cheaper than Readyz.
func (h *Handler) Startup(w http.ResponseWriter, _ *http.Request) {
	if h.state == nil || !h.state.Started() {
		httputil.Error(w, http.StatusServiceUnavailable, "Initializing")
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "started"})
}
