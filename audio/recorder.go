package audio

import (
	"fmt"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/lixenwraith/agb-ecs/gba"
)

// Recorder captures the machine's sound output frame by frame, for hosts
// without a speaker. It pulls from the same stream the speaker would; never
// run both on one machine.
type Recorder struct {
	src    beep.Streamer
	format beep.Format
	buf    *beep.Buffer

	// Fractional samples carried between frames
	acc uint64
}

// NewRecorder creates a recorder at the machine's native rate
func NewRecorder(m *gba.Machine) *Recorder {
	format := beep.Format{SampleRate: m.SampleRate(), NumChannels: 2, Precision: 2}
	return &Recorder{
		src:    m.Audio(),
		format: format,
		buf:    beep.NewBuffer(format),
	}
}

// CaptureFrame pulls one display frame worth of samples
func (r *Recorder) CaptureFrame() {
	r.acc += uint64(r.format.SampleRate) * gba.CyclesPerFrame
	n := int(r.acc / gba.CyclesPerSecond)
	r.acc %= gba.CyclesPerSecond
	r.Capture(n)
}

// Capture pulls n samples
func (r *Recorder) Capture(n int) {
	if n > 0 {
		r.buf.Append(beep.Take(n, r.src))
	}
}

// Len returns the number of recorded samples
func (r *Recorder) Len() int {
	return r.buf.Len()
}

// Format returns the recording format
func (r *Recorder) Format() beep.Format {
	return r.format
}

// WriteFile encodes the recording as a 16-bit stereo WAV file
func (r *Recorder) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create recording: %w", err)
	}
	if err := wav.Encode(f, r.buf.Streamer(0, r.buf.Len()), r.format); err != nil {
		f.Close()
		return fmt.Errorf("encode recording: %w", err)
	}
	return f.Close()
}
