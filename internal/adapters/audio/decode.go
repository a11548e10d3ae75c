package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/hajimehoshi/go-mp3"
)

const (
	resampleQuality = 4
	bytesPerFrame   = 4 // 16-bit stereo
	chunkFrames     = 512
)

func supported(ext string) bool {
	switch ext {
	case ".mp3", ".wav", ".ogg", ".flac":
		return true
	}
	return false
}

// decode returns a sample stream for f and its native sample rate.
func decode(f *os.File, ext string) (beep.Streamer, beep.SampleRate, error) {
	switch ext {
	case ".mp3":
		dec, err := mp3.NewDecoder(f)
		if err != nil {
			return nil, 0, err
		}
		return &mp3Streamer{r: dec}, beep.SampleRate(dec.SampleRate()), nil
	case ".wav":
		s, format, err := wav.Decode(f)
		if err != nil {
			return nil, 0, err
		}
		return s, format.SampleRate, nil
	case ".ogg":
		s, format, err := vorbis.Decode(f)
		if err != nil {
			return nil, 0, err
		}
		return s, format.SampleRate, nil
	case ".flac":
		s, format, err := flac.Decode(f)
		if err != nil {
			return nil, 0, err
		}
		return s, format.SampleRate, nil
	}
	return nil, 0, ErrUnsupportedFormat
}

// mp3Streamer adapts go-mp3's 16-bit little-endian stereo output to a beep.Streamer.
type mp3Streamer struct {
	r   io.Reader
	buf []byte
	err error
}

func (m *mp3Streamer) Stream(samples [][2]float64) (int, bool) {
	need := len(samples) * bytesPerFrame
	if cap(m.buf) < need {
		m.buf = make([]byte, need)
	}
	buf := m.buf[:need]

	n, err := io.ReadFull(m.r, buf)
	frames := n / bytesPerFrame
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(buf[i*bytesPerFrame:]))
		r := int16(binary.LittleEndian.Uint16(buf[i*bytesPerFrame+2:]))
		samples[i][0] = float64(l) / 32768
		samples[i][1] = float64(r) / 32768
	}
	if err != nil {
		if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			m.err = err
		}
		return frames, frames > 0
	}
	return frames, true
}

func (m *mp3Streamer) Err() error {
	return m.err
}

// pcmReader turns a beep.Streamer back into the 16-bit stereo byte stream
// the output device consumes.
type pcmReader struct {
	src     beep.Streamer
	samples [][2]float64
	pending []byte
	done    bool
}

func newPCMReader(src beep.Streamer) *pcmReader {
	return &pcmReader{
		src:     src,
		samples: make([][2]float64, chunkFrames),
		pending: make([]byte, 0, chunkFrames*bytesPerFrame),
	}
}

func (r *pcmReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		if r.done {
			if err := r.src.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		n, ok := r.src.Stream(r.samples)
		if !ok {
			r.done = true
		}
		r.pending = r.pending[:0]
		for _, s := range r.samples[:n] {
			r.pending = binary.LittleEndian.AppendUint16(r.pending, uint16(toInt16(s[0])))
			r.pending = binary.LittleEndian.AppendUint16(r.pending, uint16(toInt16(s[1])))
		}
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func toInt16(v float64) int16 {
	v *= 32768
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	}
	return int16(v)
}
