package domain

import "time"

// EventKind labels a journal entry.
type EventKind string

const (
	EventSessionStart EventKind = "session_start"
	EventCommit       EventKind = "commit"
	EventPlay         EventKind = "play"
	EventPlayFailed   EventKind = "play_failed"
	EventSessionEnd   EventKind = "session_end"
)

// SessionEvent is one journal entry. It is passed by value to background writers.
type SessionEvent struct {
	SessionID string    `json:"session_id"`
	Kind      EventKind `json:"kind"`
	Mood      Mood      `json:"mood,omitempty"`
	TrackPath string    `json:"track_path,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

// Snapshot is everything the feedback surface shows for one frame.
type Snapshot struct {
	SessionID    string        `json:"session_id"`
	Frame        int           `json:"frame"`
	Detected     bool          `json:"detected"`
	Confidence   float64       `json:"confidence"`
	LastMood     Mood          `json:"last_mood,omitempty"`
	Committed    Mood          `json:"committed,omitempty"`
	History      []Mood        `json:"history"`
	CurrentTrack string        `json:"current_track,omitempty"`
	Pending      Mood          `json:"pending,omitempty"`
	Remaining    time.Duration `json:"remaining_ns"`
}
