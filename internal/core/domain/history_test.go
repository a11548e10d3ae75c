package domain

import (
	"reflect"
	"testing"
)

func TestHistoryCapacity(t *testing.T) {
	h := NewHistory(10, 3)
	h.Push(MoodSad)
	for i := 0; i < 10; i++ {
		h.Push(MoodHappy)
	}
	if h.Len() != 10 {
		t.Fatalf("len: got %d, want 10", h.Len())
	}
	for _, m := range h.Tail(10) {
		if m == MoodSad {
			t.Fatalf("first pushed entry should have been evicted: %v", h.Tail(10))
		}
	}
}

func TestHistoryIgnoresNone(t *testing.T) {
	h := NewHistory(10, 3)
	h.Push(MoodNone)
	h.Push(MoodHappy)
	h.Push(MoodNone)
	if h.Len() != 1 {
		t.Fatalf("len: got %d, want 1", h.Len())
	}
}

func TestHistorySmoothed(t *testing.T) {
	tests := []struct {
		name   string
		pushes []Mood
		want   Mood
	}{
		{name: "empty", pushes: nil, want: MoodNone},
		{name: "two entries is not enough", pushes: []Mood{MoodHappy, MoodHappy}, want: MoodNone},
		{name: "three identical", pushes: []Mood{MoodHappy, MoodHappy, MoodHappy}, want: MoodHappy},
		{name: "majority wins", pushes: []Mood{MoodSad, MoodHappy, MoodSad, MoodNeutral}, want: MoodSad},
		{name: "tie goes to earliest in window", pushes: []Mood{MoodNeutral, MoodHappy, MoodHappy, MoodNeutral}, want: MoodNeutral},
		{
			name:   "evicted entries stop voting",
			pushes: []Mood{MoodSad, MoodSad, MoodSad, MoodSad, MoodSad, MoodHappy, MoodHappy, MoodHappy, MoodHappy, MoodHappy, MoodHappy},
			want:   MoodHappy,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(DefaultHistorySize, DefaultHistoryMin)
			for _, m := range tt.pushes {
				h.Push(m)
			}
			if got := h.Smoothed(); got != tt.want {
				t.Fatalf("Smoothed() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHistoryTail(t *testing.T) {
	h := NewHistory(10, 3)
	for _, m := range []Mood{MoodHappy, MoodSad, MoodNeutral} {
		h.Push(m)
	}
	if got := h.Tail(2); !reflect.DeepEqual(got, []Mood{MoodSad, MoodNeutral}) {
		t.Fatalf("Tail(2) = %v", got)
	}
	if got := h.Tail(5); len(got) != 3 {
		t.Fatalf("Tail(5) len = %d, want 3", len(got))
	}
	if got := h.Tail(0); got != nil {
		t.Fatalf("Tail(0) = %v, want nil", got)
	}
}

func TestNewHistoryClampsMinimum(t *testing.T) {
	h := NewHistory(2, 5)
	h.Push(MoodSad)
	h.Push(MoodSad)
	if got := h.Smoothed(); got != MoodSad {
		t.Fatalf("Smoothed() = %q, want sad", got)
	}
}
