package ports

import (
	"context"
	"image"
)

// FrameSource yields one color frame per call. Any error ends the session loop.
type FrameSource interface {
	Read(ctx context.Context) (image.Image, error)
	Close() error
}
