package domain

import "time"

// DefaultStabilityThreshold is how long a new mood must hold before it is committed.
const DefaultStabilityThreshold = 3 * time.Second

// Action is what the gate asks the playback side to do after a step.
type Action int

const (
	ActionNone Action = iota
	// ActionCommit means the committed mood changed and a new track is wanted.
	ActionCommit
	// ActionReplay means the mood is unchanged but nothing is playing.
	ActionReplay
)

func (a Action) String() string {
	switch a {
	case ActionCommit:
		return "commit"
	case ActionReplay:
		return "replay"
	default:
		return "none"
	}
}

// Decision is the outcome of one Gate step.
type Decision struct {
	Action Action
	Mood   Mood
}

// Gate debounces smoothed moods: a candidate that differs from the committed
// mood is only committed after it has been observed continuously for the
// stability threshold. It is either idle or pending on exactly one candidate.
type Gate struct {
	threshold time.Duration
	committed Mood
	candidate Mood
	since     time.Time
}

// NewGate returns an idle Gate with no committed mood.
func NewGate(threshold time.Duration) *Gate {
	if threshold < 0 {
		threshold = 0
	}
	return &Gate{threshold: threshold}
}

// Step feeds the current smoothed mood observed at now. playing reports whether
// the audio collaborator is busy, which drives the replay signal.
func (g *Gate) Step(smoothed Mood, now time.Time, playing bool) Decision {
	switch {
	case smoothed == MoodNone:
		return Decision{}

	case smoothed == g.committed:
		g.candidate = MoodNone
		g.since = time.Time{}
		if !playing && g.committed != MoodNone {
			return Decision{Action: ActionReplay, Mood: g.committed}
		}
		return Decision{}

	case g.candidate != smoothed:
		g.candidate = smoothed
		g.since = now
		return Decision{}

	case now.Sub(g.since) >= g.threshold:
		g.committed = smoothed
		g.candidate = MoodNone
		g.since = time.Time{}
		return Decision{Action: ActionCommit, Mood: smoothed}

	default:
		return Decision{}
	}
}

// Committed returns the authoritative current mood.
func (g *Gate) Committed() Mood {
	return g.committed
}

// Pending returns the candidate awaiting its dwell time, if any.
func (g *Gate) Pending() (Mood, bool) {
	return g.candidate, g.candidate != MoodNone
}

// Remaining returns how long the pending candidate still has to hold at now.
// It is zero when idle or already due.
func (g *Gate) Remaining(now time.Time) time.Duration {
	if g.candidate == MoodNone {
		return 0
	}
	left := g.threshold - now.Sub(g.since)
	if left < 0 {
		return 0
	}
	return left
}
