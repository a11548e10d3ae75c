package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
)

func TestAdapter_ListEvents(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setup     func(t *testing.T, a *Adapter)
		sessionID string
		wantKinds []domain.EventKind
	}{
		{
			name:      "unknown session is empty",
			setup:     func(t *testing.T, a *Adapter) {},
			sessionID: "missing",
			wantKinds: []domain.EventKind{},
		},
		{
			name: "events come back in insertion order",
			setup: func(t *testing.T, a *Adapter) {
				events := []domain.SessionEvent{
					{SessionID: "s1", Kind: domain.EventSessionStart, At: base},
					{SessionID: "s1", Kind: domain.EventCommit, Mood: domain.MoodHappy, At: base.Add(3 * time.Second)},
					{SessionID: "s1", Kind: domain.EventPlay, Mood: domain.MoodHappy, TrackPath: "songs/happy/a.mp3", At: base.Add(3 * time.Second)},
					{SessionID: "s2", Kind: domain.EventSessionStart, At: base},
					{SessionID: "s1", Kind: domain.EventSessionEnd, Detail: "quit", At: base.Add(time.Minute)},
				}
				for _, e := range events {
					if err := a.RecordEvent(context.Background(), e); err != nil {
						t.Fatalf("record %s: %v", e.Kind, err)
					}
				}
			},
			sessionID: "s1",
			wantKinds: []domain.EventKind{
				domain.EventSessionStart,
				domain.EventCommit,
				domain.EventPlay,
				domain.EventSessionEnd,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAdapter(":memory:")
			if err != nil {
				t.Fatalf("new adapter: %v", err)
			}
			defer a.Close()

			tt.setup(t, a)
			got, err := a.ListEvents(context.Background(), tt.sessionID)
			if err != nil {
				t.Fatalf("list events: %v", err)
			}
			if len(got) != len(tt.wantKinds) {
				t.Fatalf("expected %d events, got %d: %+v", len(tt.wantKinds), len(got), got)
			}
			for i, kind := range tt.wantKinds {
				if got[i].Kind != kind {
					t.Fatalf("event %d: expected %s, got %s", i, kind, got[i].Kind)
				}
				if got[i].SessionID != tt.sessionID {
					t.Fatalf("event %d: wrong session %q", i, got[i].SessionID)
				}
			}
		})
	}
}

func TestAdapter_RecordEventFields(t *testing.T) {
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()

	at := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.FixedZone("CEST", 2*3600))
	in := domain.SessionEvent{
		SessionID: "s1",
		Kind:      domain.EventPlayFailed,
		Mood:      domain.MoodSad,
		TrackPath: "songs/sad/b.mp3",
		Detail:    "decode failed",
		At:        at,
	}
	if err := a.RecordEvent(context.Background(), in); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := a.ListEvents(context.Background(), "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	e := got[0]
	if e.Mood != domain.MoodSad || e.TrackPath != in.TrackPath || e.Detail != in.Detail {
		t.Fatalf("fields not preserved: %+v", e)
	}
	if !e.At.Equal(at) {
		t.Fatalf("time not preserved: got %v want %v", e.At, at)
	}
}

func TestAdapter_RecordEventRequiresSession(t *testing.T) {
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()

	if err := a.RecordEvent(context.Background(), domain.SessionEvent{Kind: domain.EventCommit}); err == nil {
		t.Fatalf("expected error for missing session id")
	}
}

func TestAdapter_GetSession(t *testing.T) {
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()
	ctx := context.Background()

	if _, err := a.GetSession(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	_ = a.RecordEvent(ctx, domain.SessionEvent{SessionID: "s1", Kind: domain.EventSessionStart, At: start})
	_ = a.RecordEvent(ctx, domain.SessionEvent{SessionID: "s1", Kind: domain.EventCommit, Mood: domain.MoodNeutral, At: start.Add(time.Second)})

	open, err := a.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get open session: %v", err)
	}
	if !open.EndedAt.IsZero() || open.Events != 2 {
		t.Fatalf("unexpected open session %+v", open)
	}

	_ = a.RecordEvent(ctx, domain.SessionEvent{SessionID: "s1", Kind: domain.EventSessionEnd, Detail: "quit", At: end})
	closed, err := a.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get closed session: %v", err)
	}
	if !closed.StartedAt.Equal(start) || !closed.EndedAt.Equal(end) {
		t.Fatalf("unexpected times %+v", closed)
	}
	if closed.EndReason != "quit" || closed.Events != 3 {
		t.Fatalf("unexpected summary %+v", closed)
	}
}

func TestNewAdapter_ReopensExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	a, err := NewAdapter(path)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	if err := a.RecordEvent(ctx, domain.SessionEvent{SessionID: "s1", Kind: domain.EventSessionStart, At: time.Now()}); err != nil {
		t.Fatalf("record: %v", err)
	}
	a.Close()

	b, err := NewAdapter(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	got, err := b.ListEvents(ctx, "s1")
	if err != nil || len(got) != 1 {
		t.Fatalf("expected persisted event, got %v (%v)", got, err)
	}
}
