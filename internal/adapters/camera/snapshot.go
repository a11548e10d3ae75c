// Package camera provides frame sources: an HTTP snapshot camera and a
// directory of still images for replaying recorded sessions.
package camera

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for snapshot formats
	_ "image/png"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/moodtrack/internal/core/ports"
)

// SnapshotSource polls a camera's still-image endpoint, such as the
// /snapshot.jpg most IP cameras and webcam bridges expose.
type SnapshotSource struct {
	url         string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxRetries  int
	baseBackoff time.Duration
	logger      *slog.Logger
}

var _ ports.FrameSource = (*SnapshotSource)(nil)

// Option configures a SnapshotSource.
type Option func(*SnapshotSource)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *SnapshotSource) {
		s.httpClient = c
	}
}

// WithRetry sets the attempt count and base backoff for failed snapshots.
func WithRetry(maxRetries int, baseBackoff time.Duration) Option {
	return func(s *SnapshotSource) {
		s.maxRetries = maxRetries
		s.baseBackoff = baseBackoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *SnapshotSource) {
		s.logger = logger
	}
}

// NewSnapshotSource reads frames from url at no more than fps frames per second.
// A non-positive fps disables pacing.
func NewSnapshotSource(url string, fps float64, opts ...Option) *SnapshotSource {
	limit := rate.Inf
	if fps > 0 {
		limit = rate.Limit(fps)
	}
	s := &SnapshotSource{
		url:         url,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		limiter:     rate.NewLimiter(limit, 1),
		maxRetries:  defaultMaxRetries,
		baseBackoff: defaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Open probes the camera once so an unreachable camera fails at startup.
func (s *SnapshotSource) Open(ctx context.Context) error {
	if _, err := s.Read(ctx); err != nil {
		return fmt.Errorf("camera: open %s: %w", s.url, err)
	}
	return nil
}

// Read blocks until the frame rate allows another snapshot, then fetches and decodes it.
func (s *SnapshotSource) Read(ctx context.Context) (image.Image, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("camera: wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("camera: build request: %w", err)
	}
	resp, err := s.doRequestWithRetry(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("camera: snapshot status %d", resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("camera: decode snapshot: %w", err)
	}
	return img, nil
}

// Close drops idle connections to the camera.
func (s *SnapshotSource) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}
