package ports

import (
	"context"

	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
)

// SessionJournal persists what happened during a listening session.
type SessionJournal interface {
	RecordEvent(ctx context.Context, e domain.SessionEvent) error
	ListEvents(ctx context.Context, sessionID string) ([]domain.SessionEvent, error)
}

// EventPublisher fans session events out to other local consumers.
type EventPublisher interface {
	Publish(ctx context.Context, e domain.SessionEvent) error
}

// EventSink accepts events without blocking the caller.
type EventSink interface {
	Submit(e domain.SessionEvent)
}
