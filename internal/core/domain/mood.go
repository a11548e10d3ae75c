package domain

import "strings"

// Mood is the coarse emotional bucket used for music selection.
type Mood string

const (
	MoodNone    Mood = ""
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodNeutral Mood = "neutral"
)

// Moods lists every selectable mood in catalog order.
var Moods = []Mood{MoodHappy, MoodSad, MoodNeutral}

// ParseMood returns the Mood named by s, or MoodNone if s is not one.
func ParseMood(s string) Mood {
	switch m := Mood(strings.ToLower(strings.TrimSpace(s))); m {
	case MoodHappy, MoodSad, MoodNeutral:
		return m
	default:
		return MoodNone
	}
}

// String returns "none" for MoodNone so log lines stay readable.
func (m Mood) String() string {
	if m == MoodNone {
		return "none"
	}
	return string(m)
}
