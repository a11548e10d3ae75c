package domain

import "testing"

func TestCatalog(t *testing.T) {
	c := NewCatalog(map[Mood][]Track{
		MoodHappy:   {NewTrack("songs/happy/a.mp3", MoodHappy)},
		MoodSad:     {NewTrack("songs/sad/b.mp3", MoodSad), NewTrack("songs/sad/c.ogg", MoodSad)},
		MoodNeutral: nil,
		MoodNone:    {NewTrack("x.mp3", MoodNone)},
	})
	if c.Total() != 3 {
		t.Fatalf("Total() = %d, want 3", c.Total())
	}
	if got := c.Tracks(MoodNeutral); len(got) != 0 {
		t.Fatalf("neutral bucket should be empty, got %v", got)
	}
	if got := c.Tracks(MoodHappy); len(got) != 1 || got[0].Name != "a.mp3" {
		t.Fatalf("happy bucket: %+v", got)
	}
}

func TestIsAudioFile(t *testing.T) {
	tests := map[string]bool{
		"a.mp3":     true,
		"B.WAV":     true,
		"c.ogg":     true,
		"d.flac":    true,
		"notes.txt": false,
		"mp3":       false,
	}
	for name, want := range tests {
		if got := IsAudioFile(name); got != want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", name, got, want)
		}
	}
}
