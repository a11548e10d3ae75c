package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
	"github.com/ewilliams-labs/moodtrack/internal/core/ports"
)

const (
	// DefaultDetectEvery runs the classifier on every third frame.
	DefaultDetectEvery = 3
	historyTailLen     = 5
)

// SessionConfig holds the tuning knobs of the decision pipeline.
type SessionConfig struct {
	ConfidenceThreshold float64
	StabilityThreshold  time.Duration
	DetectEvery         int
	HistorySize         int
	HistoryMin          int
}

// DefaultSessionConfig returns the recommended settings.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		ConfidenceThreshold: domain.DefaultConfidenceThreshold,
		StabilityThreshold:  domain.DefaultStabilityThreshold,
		DetectEvery:         DefaultDetectEvery,
		HistorySize:         domain.DefaultHistorySize,
		HistoryMin:          domain.DefaultHistoryMin,
	}
}

// Session runs the frame loop: it reads frames, classifies every Nth one,
// smooths and debounces the result and drives the selector. All pipeline
// state is owned by the goroutine calling Run.
type Session struct {
	id         string
	cfg        SessionConfig
	frames     ports.FrameSource
	classifier ports.EmotionClassifier
	selector   *Selector
	display    ports.Display
	events     ports.EventSink
	now        func() time.Time
	logger     *slog.Logger

	history *domain.History
	gate    *domain.Gate

	frame      int
	detected   bool
	confidence float64
	lastMood   domain.Mood

	detectWarn rate.Sometimes
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionID overrides the generated session id.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

// WithDisplay attaches a feedback surface.
func WithDisplay(d ports.Display) SessionOption {
	return func(s *Session) {
		s.display = d
	}
}

// WithEvents attaches a non-blocking sink for journal events.
func WithEvents(sink ports.EventSink) SessionOption {
	return func(s *Session) {
		s.events = sink
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// WithSessionLogger sets the logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession wires the pipeline. cfg is used as given, so a zero threshold
// really is zero; start from DefaultSessionConfig for the recommended values.
// DetectEvery below 1 analyzes every frame.
func NewSession(frames ports.FrameSource, classifier ports.EmotionClassifier, selector *Selector, cfg SessionConfig, opts ...SessionOption) *Session {
	if cfg.DetectEvery < 1 {
		cfg.DetectEvery = 1
	}

	s := &Session{
		cfg:        cfg,
		frames:     frames,
		classifier: classifier,
		selector:   selector,
		now:        time.Now,
		history:    domain.NewHistory(cfg.HistorySize, cfg.HistoryMin),
		gate:       domain.NewGate(cfg.StabilityThreshold),
		detectWarn: rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("session", s.id)
	return s
}

// ID returns the session id used in journal events.
func (s *Session) ID() string {
	return s.id
}

// Run loops until the display asks to quit, ctx is cancelled or the frame
// source fails. Playback is stopped on every exit path. A frame source
// reporting io.EOF or a cancelled context is a clean end and returns nil.
func (s *Session) Run(ctx context.Context) (err error) {
	s.emit(domain.SessionEvent{Kind: domain.EventSessionStart})
	reason := "quit"
	defer func() {
		s.selector.Stop()
		s.emit(domain.SessionEvent{Kind: domain.EventSessionEnd, Mood: s.gate.Committed(), Detail: reason})
		s.logger.Info("session stopped", "reason", reason, "frames", s.frame)
	}()

	for {
		if ctx.Err() != nil {
			reason = "cancelled"
			return nil
		}

		frame, readErr := s.frames.Read(ctx)
		if readErr != nil {
			switch {
			case errors.Is(readErr, io.EOF):
				reason = "end of frames"
				return nil
			case ctx.Err() != nil:
				reason = "cancelled"
				return nil
			}
			reason = "frame read failed"
			return fmt.Errorf("session: read frame: %w", readErr)
		}

		s.Step(ctx, frame)

		if s.display != nil {
			s.display.Render(s.Snapshot())
			if s.display.QuitRequested() {
				return nil
			}
		}
	}
}

// Step processes one frame. Only every DetectEvery-th frame reaches the classifier.
func (s *Session) Step(ctx context.Context, frame image.Image) {
	defer func() { s.frame++ }()
	if s.frame%s.cfg.DetectEvery != 0 {
		return
	}
	s.analyze(ctx, frame)
}

func (s *Session) analyze(ctx context.Context, frame image.Image) {
	faces, err := s.detect(ctx, frame)
	if err != nil {
		s.detectWarn.Do(func() {
			s.logger.Warn("session: detection failed", "frame", s.frame, "error", err)
		})
		return
	}

	face, ok := domain.PrimaryFace(faces)
	if !ok {
		return
	}
	mood, confidence := domain.Normalize(face.Emotions, s.cfg.ConfidenceThreshold)
	if mood == domain.MoodNone {
		return
	}

	s.history.Push(mood)
	s.detected = true
	s.confidence = confidence
	s.lastMood = mood

	decision := s.gate.Step(s.history.Smoothed(), s.now(), s.selector.Busy())
	switch decision.Action {
	case domain.ActionCommit:
		s.logger.Info("mood committed", "mood", decision.Mood.String())
		s.emit(domain.SessionEvent{Kind: domain.EventCommit, Mood: decision.Mood})
		s.play(decision.Mood, true)
	case domain.ActionReplay:
		s.play(decision.Mood, false)
	}
}

// play asks the selector for a track. Only failures on commit are journaled:
// replay fires on every analyzed frame while nothing plays, so a bucket that
// cannot start would otherwise flood the journal.
func (s *Session) play(mood domain.Mood, committed bool) {
	track, err := s.selector.SelectAndPlay(mood)
	if err != nil {
		if committed {
			s.emit(domain.SessionEvent{Kind: domain.EventPlayFailed, Mood: mood, Detail: err.Error()})
		}
		return
	}
	s.emit(domain.SessionEvent{Kind: domain.EventPlay, Mood: mood, TrackPath: track.Path})
}

func (s *Session) detect(ctx context.Context, frame image.Image) (faces []domain.Face, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session: classifier panic: %v", r)
		}
	}()
	return s.classifier.Detect(ctx, frame)
}

// Snapshot captures the current feedback state.
func (s *Session) Snapshot() domain.Snapshot {
	now := s.now()
	snap := domain.Snapshot{
		SessionID:  s.id,
		Frame:      s.frame,
		Detected:   s.detected,
		Confidence: s.confidence,
		LastMood:   s.lastMood,
		Committed:  s.gate.Committed(),
		History:    s.history.Tail(historyTailLen),
	}
	if track, ok := s.selector.Current(); ok {
		snap.CurrentTrack = track.Name
	}
	if cand, ok := s.gate.Pending(); ok {
		snap.Pending = cand
		snap.Remaining = s.gate.Remaining(now)
	}
	return snap
}

func (s *Session) emit(e domain.SessionEvent) {
	if s.events == nil {
		return
	}
	e.SessionID = s.id
	if e.At.IsZero() {
		e.At = s.now()
	}
	s.events.Submit(e)
}
