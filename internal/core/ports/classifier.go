package ports

import (
	"context"
	"image"

	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
)

// EmotionClassifier detects faces and their per-label emotion scores in a frame.
type EmotionClassifier interface {
	Detect(ctx context.Context, frame image.Image) ([]domain.Face, error)
}
