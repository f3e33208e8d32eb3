package host

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lixenwraith/agb-ecs/audio"
	"github.com/lixenwraith/agb-ecs/gba"
	"github.com/lixenwraith/agb-ecs/status"
)

// Headless drives the machine in lockstep with the program, so every frame
// sees exactly one update. Used for CI runs and recordings.
type Headless struct {
	m      *gba.Machine
	frames int
	log    *slog.Logger
	reg    *status.Registry
	rec    *audio.Recorder
}

// NewHeadless creates a driver running at most frames frames; 0 is unbounded
func NewHeadless(m *gba.Machine, frames int, log *slog.Logger, reg *status.Registry) *Headless {
	return &Headless{m: m, frames: frames, log: log, reg: reg}
}

// Record captures sound output while running
func (h *Headless) Record(rec *audio.Recorder) {
	h.rec = rec
}

// Run steps frames until the frame budget is spent, the program halts or ctx ends.
// It returns the number of frames run; a halted program is not an error.
func (h *Headless) Run(ctx context.Context) (int, error) {
	if h.reg != nil {
		h.reg.Labels.Get(status.HostMode).Set(string(ModeHeadless))
	}
	start := time.Now()

	n := 0
	for h.frames == 0 || n < h.frames {
		err := h.m.RunFrameSync(ctx)
		if errors.Is(err, gba.ErrHalted) {
			h.log.Info("program halted", "frames", n)
			break
		}
		if err != nil {
			return n, err
		}
		if h.rec != nil {
			h.rec.CaptureFrame()
		}
		n++
	}

	if h.reg != nil {
		if secs := time.Since(start).Seconds(); secs > 0 {
			h.reg.Gauges.Get(status.HostFPS).Set(float64(n) / secs)
		}
	}
	h.log.Info("headless run finished", "frames", n, "elapsed", time.Since(start))
	return n, nil
}
