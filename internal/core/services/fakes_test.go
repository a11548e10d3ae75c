package services

import (
	"context"
	"errors"
	"image"
	"io"
	"time"

	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
)

// --- Fakes ---

// fakePlayer records calls and reports busy after a successful Play.
type fakePlayer struct {
	loaded  string
	busy    bool
	loadErr error
	playErr error

	loads []string
	stops int
}

func (p *fakePlayer) Load(path string) error {
	p.loads = append(p.loads, path)
	if p.loadErr != nil {
		return p.loadErr
	}
	p.loaded = path
	return nil
}

func (p *fakePlayer) Play() error {
	if p.playErr != nil {
		return p.playErr
	}
	if p.loaded == "" {
		return errors.New("nothing loaded")
	}
	p.busy = true
	return nil
}

func (p *fakePlayer) Stop() error {
	p.stops++
	p.busy = false
	return nil
}

func (p *fakePlayer) IsBusy() bool { return p.busy }

func (p *fakePlayer) Close() error { return nil }

// fakeFrames hands out n blank frames, then io.EOF or err.
type fakeFrames struct {
	n      int
	err    error
	reads  int
	onRead func()
}

func (f *fakeFrames) Read(ctx context.Context) (image.Image, error) {
	if f.reads >= f.n {
		if f.err != nil {
			return nil, f.err
		}
		return nil, io.EOF
	}
	f.reads++
	if f.onRead != nil {
		f.onRead()
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (f *fakeFrames) Close() error { return nil }

// fakeClassifier replays a script of results, one per Detect call.
type fakeClassifier struct {
	script []classifierResult
	calls  int
}

type classifierResult struct {
	faces []domain.Face
	err   error
	panic bool
}

func (c *fakeClassifier) Detect(ctx context.Context, frame image.Image) ([]domain.Face, error) {
	i := c.calls
	c.calls++
	if i >= len(c.script) {
		return nil, nil
	}
	r := c.script[i]
	if r.panic {
		panic("model exploded")
	}
	return r.faces, r.err
}

func faceOf(label string, score float64) classifierResult {
	return classifierResult{faces: []domain.Face{{
		Box:      domain.BoundingBox{Width: 100, Height: 100},
		Emotions: domain.EmotionScores{{Label: label, Score: score}, {Label: "neutral", Score: 0.01}},
	}}}
}

func repeat(r classifierResult, n int) []classifierResult {
	out := make([]classifierResult, n)
	for i := range out {
		out[i] = r
	}
	return out
}

// fakeSink keeps submitted events in order.
type fakeSink struct {
	events []domain.SessionEvent
}

func (s *fakeSink) Submit(e domain.SessionEvent) {
	s.events = append(s.events, e)
}

func (s *fakeSink) kinds() []domain.EventKind {
	out := make([]domain.EventKind, len(s.events))
	for i, e := range s.events {
		out[i] = e.Kind
	}
	return out
}

// fakeDisplay captures snapshots and quits after quitAfter renders (0 = never).
type fakeDisplay struct {
	snapshots []domain.Snapshot
	quitAfter int
}

func (d *fakeDisplay) Render(s domain.Snapshot) {
	d.snapshots = append(d.snapshots, s)
}

func (d *fakeDisplay) QuitRequested() bool {
	return d.quitAfter > 0 && len(d.snapshots) >= d.quitAfter
}

// stepClock advances by step every time tick is called.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time { return c.t }

func (c *stepClock) tick() { c.t = c.t.Add(c.step) }
