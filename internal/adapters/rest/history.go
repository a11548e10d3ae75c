package rest

import (
	"net/http"
)

// GetHistory handles GET /history. ?session= selects another journaled
// session; the running one is the default.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "journal disabled")
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = h.sessionID
	}

	events, err := h.journal.ListEvents(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, events)
}
