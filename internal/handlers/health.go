package handlers

import (
	"net/http"
	"time"
)

// Health reports service and database health for monitoring.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		h.log.Error().Err(err).Msg("health check: database unreachable")
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC(),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC(),
	})
}

// Metrics returns basic row counts for monitoring.
func (h *Handlers) Metrics(w http.ResponseWriter, r *http.Request) {
	counts, err := h.db.CountAll()
	if err != nil {
		h.internalError(w, r, "collect metrics", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"timestamp": time.Now().UTC(),
		"counts":    counts,
	})
}
