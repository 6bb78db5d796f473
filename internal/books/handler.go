// Package books provides HTTP handlers and business logic for the book catalog.
package books

import (
	"net/http"

	"github.com/booktrack/booktrack/internal/pkg/ctxlog"
	"github.com/booktrack/booktrack/internal/pkg/httputil"
	"github.com/booktrack/booktrack/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP requests for the books module.
type Handler struct {
	service *Service
}

// NewHandler creates a new books handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers all HTTP routes for the books module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/books", h.ListBooks)
}

// ListBooks returns all books as a JSON array.
// Any database failure collapses to a generic 500; the cause stays in the
// logs and the failure counter.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListBooks(r.Context())
	if err != nil {
		metrics.DBConnectionFailures.Inc()
		ctxlog.FromContext(r.Context()).Error("failed to fetch books", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}

	httputil.JSON(w, http.StatusOK, list)
}
