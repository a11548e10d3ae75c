package services

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
	"github.com/ewilliams-labs/moodtrack/internal/core/ports"
)

// Selector picks and plays a track for a committed mood.
type Selector struct {
	catalog domain.Catalog
	player  ports.AudioPlayer
	rng     *rand.Rand
	logger  *slog.Logger

	current    domain.Track
	hasCurrent bool

	// empty buckets and broken tracks are retried on every replay signal; warn sparingly
	emptyWarn map[domain.Mood]*rate.Sometimes
	trackWarn map[string]*rate.Sometimes
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithRand sets the random source used to pick tracks.
func WithRand(rng *rand.Rand) SelectorOption {
	return func(s *Selector) {
		s.rng = rng
	}
}

// WithSelectorLogger sets the logger.
func WithSelectorLogger(logger *slog.Logger) SelectorOption {
	return func(s *Selector) {
		s.logger = logger
	}
}

// NewSelector constructs a Selector over an immutable catalog.
func NewSelector(catalog domain.Catalog, player ports.AudioPlayer, opts ...SelectorOption) *Selector {
	s := &Selector{
		catalog:   catalog,
		player:    player,
		emptyWarn: make(map[domain.Mood]*rate.Sometimes),
		trackWarn: make(map[string]*rate.Sometimes),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// SelectAndPlay stops whatever is playing and starts a random track from the
// mood's bucket. An empty bucket returns domain.ErrNoTracks and leaves the
// current track untouched. A load or play failure leaves no current track.
func (s *Selector) SelectAndPlay(mood domain.Mood) (domain.Track, error) {
	tracks := s.catalog.Tracks(mood)
	if len(tracks) == 0 {
		s.warnEmpty(mood)
		return domain.Track{}, fmt.Errorf("selector: %s: %w", mood, domain.ErrNoTracks)
	}

	track := tracks[s.rng.IntN(len(tracks))]

	if err := s.player.Stop(); err != nil {
		s.logger.Warn("selector: stop failed", "error", err)
	}
	s.current, s.hasCurrent = domain.Track{}, false

	if err := s.player.Load(track.Path); err != nil {
		s.warnTrack(track, func() {
			s.logger.Warn("selector: load failed", "mood", mood.String(), "track", track.Name, "error", err)
		})
		return domain.Track{}, fmt.Errorf("selector: load %s: %w", track.Name, err)
	}
	if err := s.player.Play(); err != nil {
		s.warnTrack(track, func() {
			s.logger.Warn("selector: play failed", "mood", mood.String(), "track", track.Name, "error", err)
		})
		return domain.Track{}, fmt.Errorf("selector: play %s: %w", track.Name, err)
	}

	s.current, s.hasCurrent = track, true
	s.logger.Info("playing", "mood", mood.String(), "track", track.Name)
	return track, nil
}

// Busy reports whether the player is still playing the current track.
func (s *Selector) Busy() bool {
	return s.player.IsBusy()
}

// Current returns the track last started successfully.
func (s *Selector) Current() (domain.Track, bool) {
	return s.current, s.hasCurrent
}

// Stop halts playback and forgets the current track.
func (s *Selector) Stop() {
	if err := s.player.Stop(); err != nil {
		s.logger.Warn("selector: stop failed", "error", err)
	}
	s.current, s.hasCurrent = domain.Track{}, false
}

func (s *Selector) warnEmpty(mood domain.Mood) {
	st, ok := s.emptyWarn[mood]
	if !ok {
		st = &rate.Sometimes{First: 1, Interval: 30 * time.Second}
		s.emptyWarn[mood] = st
	}
	st.Do(func() {
		s.logger.Warn("selector: no songs available", "mood", mood.String())
	})
}

func (s *Selector) warnTrack(track domain.Track, log func()) {
	st, ok := s.trackWarn[track.Path]
	if !ok {
		st = &rate.Sometimes{First: 1, Interval: 30 * time.Second}
		s.trackWarn[track.Path] = st
	}
	st.Do(log)
}

// IsNoTracks reports whether err came from an empty catalog bucket.
func IsNoTracks(err error) bool {
	return errors.Is(err, domain.ErrNoTracks)
}
