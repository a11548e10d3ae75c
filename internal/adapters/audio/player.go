// Package audio plays local MP3, WAV, Ogg Vorbis and FLAC files through the
// system sound device.
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep/v2"

	"github.com/ewilliams-labs/moodtrack/internal/core/ports"
)

// DefaultSampleRate matches most MP3 files in the wild.
const DefaultSampleRate = 44100

var (
	// ErrUnsupportedFormat is returned for files the player cannot decode.
	ErrUnsupportedFormat = errors.New("audio: unsupported format")
	// ErrNothingLoaded is returned by Play before a successful Load.
	ErrNothingLoaded = errors.New("audio: nothing loaded")
)

// stream is the part of *oto.Player the adapter uses.
type stream interface {
	Play()
	Pause()
	IsPlaying() bool
}

// output creates streams on an opened sound device.
type output interface {
	NewStream(r io.Reader) stream
}

type otoOutput struct {
	ctx *oto.Context
}

func (o otoOutput) NewStream(r io.Reader) stream {
	return o.ctx.NewPlayer(r)
}

// Player implements ports.AudioPlayer. One track is loaded at a time.
type Player struct {
	out        output
	sampleRate int

	file   *os.File
	stream stream
}

var _ ports.AudioPlayer = (*Player)(nil)

// NewPlayer opens the sound device as 16-bit stereo at sampleRate. Only one device context
// may exist per process.
func NewPlayer(sampleRate int) (*Player, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("audio: open output device: %w", err)
	}
	<-ready
	return newPlayer(otoOutput{ctx: ctx}, sampleRate), nil
}

func newPlayer(out output, sampleRate int) *Player {
	return &Player{out: out, sampleRate: sampleRate}
}

// Load opens and decodes path, replacing whatever was loaded before. The
// decoder is picked by extension; tracks at another sample rate are
// resampled to the device rate.
func (p *Player) Load(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !supported(ext) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("audio: open %s: %w", filepath.Base(path), err)
	}
	src, rate, err := decode(f, ext)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("audio: decode %s: %w", filepath.Base(path), err)
	}
	if rate != beep.SampleRate(p.sampleRate) {
		src = beep.Resample(resampleQuality, rate, beep.SampleRate(p.sampleRate), src)
	}

	p.release()
	p.file = f
	p.stream = p.out.NewStream(newPCMReader(src))
	return nil
}

// Play starts the loaded track.
func (p *Player) Play() error {
	if p.stream == nil {
		return ErrNothingLoaded
	}
	p.stream.Play()
	return nil
}

// Stop halts playback and releases the loaded file. It is safe to call
// repeatedly and with nothing loaded.
func (p *Player) Stop() error {
	return p.release()
}

// IsBusy reports whether the loaded track is still playing. It turns false
// once the decoder reaches the end of the file.
func (p *Player) IsBusy() bool {
	return p.stream != nil && p.stream.IsPlaying()
}

// Close stops playback. The device context itself lives for the process.
func (p *Player) Close() error {
	return p.release()
}

func (p *Player) release() error {
	if p.stream != nil {
		p.stream.Pause()
		p.stream = nil
	}
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	if err != nil {
		return fmt.Errorf("audio: close track: %w", err)
	}
	return nil
}
