package ports

import "github.com/ewilliams-labs/moodtrack/internal/core/domain"

// Display is a user-facing feedback surface. Render is called once per frame
// from the session loop; QuitRequested is polled right after it.
type Display interface {
	Render(s domain.Snapshot)
	QuitRequested() bool
}
