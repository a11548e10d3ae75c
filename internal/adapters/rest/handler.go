// Package rest exposes the running session over HTTP: live status, the
// journaled history and a remote quit switch.
package rest

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
	"github.com/ewilliams-labs/moodtrack/internal/core/ports"
)

// Handler manages the HTTP interface for a session. It doubles as a
// ports.Display so the session loop can push snapshots into it.
type Handler struct {
	sessionID string
	journal   ports.SessionJournal // nil when journaling is disabled
	router    chi.Router

	mu       sync.RWMutex
	snapshot domain.Snapshot

	quit atomic.Bool
}

var _ ports.Display = (*Handler)(nil)

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(sessionID string, journal ports.SessionJournal) *Handler {
	h := &Handler{
		sessionID: sessionID,
		journal:   journal,
		router:    chi.NewRouter(),
		snapshot:  domain.Snapshot{SessionID: sessionID, History: []domain.Mood{}},
	}
	h.routes()
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.Use(middleware.RequestID)
	h.router.Use(middleware.Recoverer)

	h.router.Get("/health", h.HealthCheck)
	h.router.Get("/status", h.GetStatus)
	h.router.Get("/history", h.GetHistory)
	h.router.Post("/quit", h.PostQuit)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "session_id": h.sessionID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
