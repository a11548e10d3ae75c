package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ewilliams-labs/moodtrack/internal/adapters/sqlite"
	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
)

type failingJournal struct{}

func (failingJournal) RecordEvent(ctx context.Context, e domain.SessionEvent) error {
	return errors.New("boom")
}

func (failingJournal) ListEvents(ctx context.Context, sessionID string) ([]domain.SessionEvent, error) {
	return nil, errors.New("boom")
}

func TestHandler_HealthCheck(t *testing.T) {
	h := NewHandler("s1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["session_id"] != "s1" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestHandler_Status(t *testing.T) {
	h := NewHandler("s1", nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	var empty domain.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&empty); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if empty.SessionID != "s1" || empty.Frame != 0 {
		t.Fatalf("unexpected initial snapshot %+v", empty)
	}

	history := []domain.Mood{domain.MoodHappy, domain.MoodHappy, domain.MoodSad}
	h.Render(domain.Snapshot{
		SessionID:    "s1",
		Frame:        42,
		Detected:     true,
		Confidence:   0.8,
		LastMood:     domain.MoodSad,
		Committed:    domain.MoodHappy,
		History:      history,
		CurrentTrack: "a.mp3",
		Pending:      domain.MoodSad,
		Remaining:    1500 * time.Millisecond,
	})
	history[0] = domain.MoodNeutral

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got domain.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Frame != 42 || got.Committed != domain.MoodHappy || got.Pending != domain.MoodSad {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if got.Remaining != 1500*time.Millisecond {
		t.Fatalf("remaining: got %v", got.Remaining)
	}
	if len(got.History) != 3 || got.History[0] != domain.MoodHappy {
		t.Fatalf("history should be a copy, got %v", got.History)
	}
}

func TestHandler_Quit(t *testing.T) {
	h := NewHandler("s1", nil)
	if h.QuitRequested() {
		t.Fatalf("quit requested before POST")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quit", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /quit: expected 405, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quit", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if !h.QuitRequested() {
		t.Fatalf("quit not recorded")
	}
}

func TestHandler_History(t *testing.T) {
	journal, err := sqlite.NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer journal.Close()

	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, e := range []domain.SessionEvent{
		{SessionID: "s1", Kind: domain.EventSessionStart, At: at},
		{SessionID: "s1", Kind: domain.EventCommit, Mood: domain.MoodHappy, At: at},
		{SessionID: "old", Kind: domain.EventSessionStart, At: at},
	} {
		if err := journal.RecordEvent(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	tests := []struct {
		name       string
		handler    *Handler
		target     string
		wantStatus int
		wantEvents int
	}{
		{name: "current session", handler: NewHandler("s1", journal), target: "/history", wantStatus: http.StatusOK, wantEvents: 2},
		{name: "explicit session", handler: NewHandler("s1", journal), target: "/history?session=old", wantStatus: http.StatusOK, wantEvents: 1},
		{name: "unknown session", handler: NewHandler("s1", journal), target: "/history?session=nope", wantStatus: http.StatusOK, wantEvents: 0},
		{name: "journal disabled", handler: NewHandler("s1", nil), target: "/history", wantStatus: http.StatusServiceUnavailable},
		{name: "journal error", handler: NewHandler("s1", failingJournal{}), target: "/history", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var events []domain.SessionEvent
			if err := json.NewDecoder(rec.Body).Decode(&events); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(events) != tt.wantEvents {
				t.Fatalf("expected %d events, got %d", tt.wantEvents, len(events))
			}
		})
	}
}
