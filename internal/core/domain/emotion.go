package domain

import "strings"

// DefaultConfidenceThreshold is the minimum winning score for a frame to count.
const DefaultConfidenceThreshold = 0.3

// EmotionScore is one fine-grained classifier label and its confidence in [0,1].
type EmotionScore struct {
	Label string
	Score float64
}

// EmotionScores keeps classifier output order so ties resolve the same way
// for the same input.
type EmotionScores []EmotionScore

// labelMoods groups the classifier's fine-grained labels into moods.
var labelMoods = map[string]Mood{
	"happy":    MoodHappy,
	"sad":      MoodSad,
	"fear":     MoodSad,
	"angry":    MoodSad,
	"neutral":  MoodNeutral,
	"surprise": MoodNeutral,
	"disgust":  MoodNeutral,
}

// MoodForLabel maps a classifier label to its mood. Unknown labels are neutral.
func MoodForLabel(label string) Mood {
	if m, ok := labelMoods[strings.ToLower(strings.TrimSpace(label))]; ok {
		return m
	}
	return MoodNeutral
}

// Dominant returns the highest scoring entry. Ties keep the earliest entry.
func (s EmotionScores) Dominant() (EmotionScore, bool) {
	if len(s) == 0 {
		return EmotionScore{}, false
	}
	best := s[0]
	for _, e := range s[1:] {
		if e.Score > best.Score {
			best = e
		}
	}
	return best, true
}

// Normalize reduces raw scores to a mood and the winning confidence.
// A winning score below threshold yields MoodNone with that score.
func Normalize(scores EmotionScores, threshold float64) (Mood, float64) {
	best, ok := scores.Dominant()
	if !ok {
		return MoodNone, 0
	}
	if best.Score < threshold {
		return MoodNone, best.Score
	}
	return MoodForLabel(best.Label), best.Score
}

// BoundingBox is a face rectangle in frame pixel coordinates.
type BoundingBox struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Area returns Width*Height, or 0 for degenerate boxes.
func (b BoundingBox) Area() int {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// Face is one detection returned by the emotion classifier.
type Face struct {
	Box      BoundingBox
	Emotions EmotionScores
}

// PrimaryFace picks the largest face, assumed to be the user in front of the camera.
func PrimaryFace(faces []Face) (Face, bool) {
	if len(faces) == 0 {
		return Face{}, false
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if f.Box.Area() > best.Box.Area() {
			best = f
		}
	}
	return best, true
}
