package services

import (
	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
	"github.com/ewilliams-labs/moodtrack/internal/core/ports"
)

// Displays fans a snapshot out to several feedback surfaces.
type Displays []ports.Display

var _ ports.Display = Displays(nil)

// Render forwards s to every display.
func (d Displays) Render(s domain.Snapshot) {
	for _, disp := range d {
		disp.Render(s)
	}
}

// QuitRequested is true as soon as any display asks to quit.
func (d Displays) QuitRequested() bool {
	for _, disp := range d {
		if disp.QuitRequested() {
			return true
		}
	}
	return false
}
