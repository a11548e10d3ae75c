package ports

// AudioPlayer is the audio playback collaborator. It must tolerate being
// stopped and reloaded any number of times within one session.
type AudioPlayer interface {
	Load(path string) error
	Play() error
	Stop() error
	IsBusy() bool
	Close() error
}
