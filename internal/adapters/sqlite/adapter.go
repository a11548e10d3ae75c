// Package sqlite provides a SQLite-backed implementation of the session journal port.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
	"github.com/ewilliams-labs/moodtrack/internal/core/ports"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

const timeLayout = time.RFC3339Nano

// Adapter implements the session journal for SQLite
type Adapter struct {
	db *sql.DB
}

var _ ports.SessionJournal = (*Adapter)(nil)

// SessionSummary is one row of the sessions table.
type SessionSummary struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	EndReason string
	Events    int
}

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// A single connection keeps :memory: databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// RecordEvent appends e to the journal. The owning session row is created on
// first sight and closed out by a session_end event.
func (a *Adapter) RecordEvent(ctx context.Context, e domain.SessionEvent) error {
	if e.SessionID == "" {
		return fmt.Errorf("record event: missing session id")
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	at := e.At.UTC().Format(timeLayout)

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		e.SessionID, at,
	); err != nil {
		return fmt.Errorf("failed to save session %s: %w", e.SessionID, err)
	}

	if e.Kind == domain.EventSessionEnd {
		if _, err := tx.ExecContext(ctx,
			`UPDATE sessions SET ended_at = ?, end_reason = ? WHERE id = ?`,
			at, e.Detail, e.SessionID,
		); err != nil {
			return fmt.Errorf("failed to close session %s: %w", e.SessionID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO session_events (session_id, kind, mood, track_path, detail, at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.SessionID, string(e.Kind), string(e.Mood), e.TrackPath, e.Detail, at); err != nil {
		return fmt.Errorf("failed to save %s event: %w", e.Kind, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// ListEvents returns a session's events in the order they were recorded.
func (a *Adapter) ListEvents(ctx context.Context, sessionID string) ([]domain.SessionEvent, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT session_id, kind, IFNULL(mood, ''), IFNULL(track_path, ''), IFNULL(detail, ''), at
		FROM session_events
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session events: %w", err)
	}
	defer rows.Close()

	events := []domain.SessionEvent{}
	for rows.Next() {
		var (
			e    domain.SessionEvent
			kind string
			mood string
			at   string
		)
		if err := rows.Scan(&e.SessionID, &kind, &mood, &e.TrackPath, &e.Detail, &at); err != nil {
			return nil, fmt.Errorf("failed to scan session event: %w", err)
		}
		e.Kind = domain.EventKind(kind)
		e.Mood = domain.Mood(mood)
		if e.At, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("failed to parse event time %q: %w", at, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session events: %w", err)
	}
	return events, nil
}

// GetSession returns the summary row for one session.
func (a *Adapter) GetSession(ctx context.Context, sessionID string) (SessionSummary, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT s.id, s.started_at, IFNULL(s.ended_at, ''), IFNULL(s.end_reason, ''),
			(SELECT COUNT(*) FROM session_events e WHERE e.session_id = s.id)
		FROM sessions s
		WHERE s.id = ?
	`, sessionID)

	var (
		s       SessionSummary
		started string
		ended   string
	)
	if err := row.Scan(&s.ID, &started, &ended, &s.EndReason, &s.Events); err != nil {
		if err == sql.ErrNoRows {
			return SessionSummary{}, domain.ErrNotFound
		}
		return SessionSummary{}, fmt.Errorf("failed to load session: %w", err)
	}
	var err error
	if s.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return SessionSummary{}, fmt.Errorf("failed to parse session start %q: %w", started, err)
	}
	if ended != "" {
		if s.EndedAt, err = time.Parse(timeLayout, ended); err != nil {
			return SessionSummary{}, fmt.Errorf("failed to parse session end %q: %w", ended, err)
		}
	}
	return s, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS session_events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		mood TEXT,
		track_path TEXT,
		detail TEXT,
		at TEXT NOT NULL,
		FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_session_events_session ON session_events(session_id, seq);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	// end_reason arrived after the first schema; older journals get it added.
	if _, err := a.db.Exec("ALTER TABLE sessions ADD COLUMN end_reason TEXT"); err != nil {
		if !isDuplicateColumnError(err) {
			return err
		}
	}

	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}
