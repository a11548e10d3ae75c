package domain

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrNoTracks is returned when a mood has nothing selectable in the catalog.
var ErrNoTracks = errors.New("domain: no tracks for mood")

// ErrNotFound is returned by repositories for unknown ids.
var ErrNotFound = errors.New("domain: not found")

// Track is a local audio asset in a mood bucket.
type Track struct {
	Path string
	Name string // base file name, shown to the user
	Mood Mood
}

// NewTrack builds a Track from its file path.
func NewTrack(path string, mood Mood) Track {
	return Track{Path: path, Name: filepath.Base(path), Mood: mood}
}

// AudioExtensions are the file extensions the catalog picks up.
var AudioExtensions = []string{".mp3", ".wav", ".ogg", ".flac"}

// IsAudioFile reports whether name has a recognized audio extension.
func IsAudioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range AudioExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Catalog groups tracks by mood. It is built once and read-only afterwards.
type Catalog struct {
	buckets map[Mood][]Track
}

// NewCatalog copies buckets into a Catalog. Tracks with MoodNone are dropped.
func NewCatalog(buckets map[Mood][]Track) Catalog {
	c := Catalog{buckets: make(map[Mood][]Track, len(buckets))}
	for m, tracks := range buckets {
		if m == MoodNone || len(tracks) == 0 {
			continue
		}
		c.buckets[m] = append([]Track(nil), tracks...)
	}
	return c
}

// Tracks returns the bucket for m. Callers must not modify it.
func (c Catalog) Tracks(m Mood) []Track {
	return c.buckets[m]
}

// Total counts tracks across all buckets.
func (c Catalog) Total() int {
	n := 0
	for _, tracks := range c.buckets {
		n += len(tracks)
	}
	return n
}
