// Package httphandler implements the JSON REST API driving adapter.
package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/clickcounter/internal/application"
)

// recentClicksLimit caps GET /api/clicks. There is no pagination.
const recentClicksLimit = 20

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	stores *application.StoreProvider
	logger *slog.Logger
}

// NewHandler creates a Handler. stores may still be empty; every
// database-backed route answers 503 until it is populated.
func NewHandler(stores *application.StoreProvider, logger *slog.Logger) *Handler {
	return &Handler{
		stores: stores,
		logger: logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with CORS, logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/click", h.RecordClick)
	mux.HandleFunc("GET /api/clicks", h.ListClicks)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = corsMiddleware(wrapped)

	return wrapped
}

// Health reports whether the database answers a trivial query.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	store := h.stores.Get()
	if store == nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "ko", DB: false})
		return
	}

	if err := store.Ping(r.Context()); err != nil {
		h.logger.Warn("health check query failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "ko", DB: false})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", DB: true})
}

// RecordClick stores one click. Insert failures are reported, never retried.
func (h *Handler) RecordClick(w http.ResponseWriter, r *http.Request) {
	store := h.stores.Get()
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "Database not ready")
		return
	}

	if err := store.Record(r.Context()); err != nil {
		h.logger.Error("failed to record click", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to record click")
		return
	}

	writeJSON(w, http.StatusOK, RecordClickResponse{OK: true})
}

// ListClicks returns the most recent clicks, newest first.
func (h *Handler) ListClicks(w http.ResponseWriter, r *http.Request) {
	store := h.stores.Get()
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "Database not ready")
		return
	}

	clicks, err := store.ListRecent(r.Context(), recentClicksLimit)
	if err != nil {
		h.logger.Error("failed to read clicks", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read clicks")
		return
	}

	resp := make([]ClickResponse, 0, len(clicks))
	for _, c := range clicks {
		resp = append(resp, toClickResponse(c))
	}

	writeJSON(w, http.StatusOK, resp)
}
