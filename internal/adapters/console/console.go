// Package console renders session feedback as plain status lines and reads a
// quit command from standard input.
//
// The terminal stays in its normal line-buffered mode so status lines and log
// output render untouched; the quit command is therefore "q" followed by
// Enter rather than a bare keystroke.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
	"github.com/ewilliams-labs/moodtrack/internal/core/ports"
)

// Display writes one line per visible change.
type Display struct {
	mu      sync.Mutex
	out     io.Writer
	lastKey string

	quitCh chan struct{}
	quit   bool
}

var _ ports.Display = (*Display)(nil)

// New returns a display writing to out. When in is non-nil a reader
// goroutine watches it for a line consisting of "q" (or "quit").
func New(out io.Writer, in io.Reader) *Display {
	d := &Display{
		out:    out,
		quitCh: make(chan struct{}, 1),
	}
	if in != nil {
		go d.readKeys(in)
	}
	return d
}

func (d *Display) readKeys(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "q", "quit":
			select {
			case d.quitCh <- struct{}{}:
			default:
			}
			return
		}
	}
}

// Render prints s when anything other than the raw confidence changed.
func (d *Display) Render(s domain.Snapshot) {
	key := changeKey(s)

	d.mu.Lock()
	defer d.mu.Unlock()
	if key == d.lastKey {
		return
	}
	d.lastKey = key
	fmt.Fprintln(d.out, FormatLine(s))
}

// QuitRequested latches once a quit keystroke has been read.
func (d *Display) QuitRequested() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.quit {
		return true
	}
	select {
	case <-d.quitCh:
		d.quit = true
	default:
	}
	return d.quit
}

// FormatLine renders a snapshot as a single status line.
func FormatLine(s domain.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "confidence=%.2f committed=%s", s.Confidence, s.Committed)
	fmt.Fprintf(&b, " history=[%s]", joinMoods(s.History))

	track := s.CurrentTrack
	if track == "" {
		track = "-"
	}
	fmt.Fprintf(&b, " track=%s", track)

	if s.Pending != domain.MoodNone {
		fmt.Fprintf(&b, " pending=%s in %s", s.Pending, s.Remaining.Round(100*time.Millisecond))
	}
	return b.String()
}

func changeKey(s domain.Snapshot) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d",
		s.Committed, joinMoods(s.History), s.CurrentTrack, s.Pending, s.Remaining.Round(time.Second)/time.Second)
}

func joinMoods(ms []domain.Mood) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}
