package rest

import (
	"net/http"

	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
)

// Render stores the latest snapshot for GET /status.
func (h *Handler) Render(s domain.Snapshot) {
	if s.History == nil {
		s.History = []domain.Mood{}
	} else {
		s.History = append([]domain.Mood(nil), s.History...)
	}
	h.mu.Lock()
	h.snapshot = s
	h.mu.Unlock()
}

// QuitRequested reports whether POST /quit has been called.
func (h *Handler) QuitRequested() bool {
	return h.quit.Load()
}

// GetStatus handles GET /status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	s := h.snapshot
	h.mu.RUnlock()
	writeJSON(w, http.StatusOK, s)
}

// PostQuit handles POST /quit
func (h *Handler) PostQuit(w http.ResponseWriter, r *http.Request) {
	h.quit.Store(true)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "quitting"})
}
