package domain

const (
	DefaultHistorySize = 10
	DefaultHistoryMin  = 3
)

// History is a bounded FIFO of recent per-frame moods reduced by majority vote.
type History struct {
	entries  []Mood
	capacity int
	min      int
}

// NewHistory returns a History holding at most capacity entries and voting
// only once min entries are present. Non-positive arguments fall back to defaults.
func NewHistory(capacity, min int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	if min <= 0 {
		min = DefaultHistoryMin
	}
	if min > capacity {
		min = capacity
	}
	return &History{
		entries:  make([]Mood, 0, capacity),
		capacity: capacity,
		min:      min,
	}
}

// Push appends m, evicting the oldest entry when full. MoodNone is ignored.
func (h *History) Push(m Mood) {
	if m == MoodNone {
		return
	}
	if len(h.entries) == h.capacity {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, m)
}

// Len reports how many moods are held.
func (h *History) Len() int {
	return len(h.entries)
}

// Smoothed returns the most frequent mood, or MoodNone with too few samples.
// Among moods with equal counts the one seen earliest in the window wins.
func (h *History) Smoothed() Mood {
	if len(h.entries) < h.min {
		return MoodNone
	}
	counts := make(map[Mood]int, len(Moods))
	for _, m := range h.entries {
		counts[m]++
	}
	leader, best := MoodNone, 0
	for _, m := range h.entries {
		if counts[m] > best {
			leader, best = m, counts[m]
		}
	}
	return leader
}

// Tail returns up to n of the newest entries, oldest first.
func (h *History) Tail(n int) []Mood {
	if n <= 0 || len(h.entries) == 0 {
		return nil
	}
	if n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]Mood, n)
	copy(out, h.entries[len(h.entries)-n:])
	return out
}
