// Package audio plays and records the emulated machine's sound output on the host.
package audio

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/agb-ecs/gba"
)

// ErrAlreadyRunning is returned by Start on a running service
var ErrAlreadyRunning = errors.New("audio: already running")

// Service streams the machine's sound output to the host speaker.
// A host without an audio device runs silently; that is not an error.
type Service struct {
	m *gba.Machine

	mu     sync.Mutex
	cfg    *Config
	out    *output
	device bool // speaker.Init succeeded

	running  atomic.Bool
	disabled atomic.Bool
}

// NewService creates the audio service for m
func NewService(m *gba.Machine) *Service {
	return &Service{m: m, cfg: DefaultConfig()}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "audio"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements service.Service.
// Recognized args: *Config replaces the configuration; a true bool mutes.
func (s *Service) Init(args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, arg := range args {
		switch v := arg.(type) {
		case *Config:
			c := *v
			s.cfg = &c
		case bool:
			if v {
				s.cfg.Enabled = false
			}
		}
	}

	if !s.cfg.Enabled {
		s.disabled.Store(true)
		return nil
	}

	rate := beep.SampleRate(s.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(s.cfg.Buffer)); err != nil {
		slog.Warn("audio device unavailable, running silent", "err", err)
		s.disabled.Store(true)
		return nil
	}
	s.device = true
	s.out = newOutput(s.m.Audio(), s.m.SampleRate(), rate, s.cfg.Volume)
	return nil
}

// Start implements service.Service
func (s *Service) Start() error {
	if s.disabled.Load() {
		return nil
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	speaker.Play(s.out.ctrl)
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.CompareAndSwap(true, false) {
		speaker.Clear()
	}
	if s.device {
		speaker.Close()
		s.device = false
	}
	return nil
}

// ToggleMute pauses or resumes output and reports whether it is now muted
func (s *Service) ToggleMute() bool {
	if s.disabled.Load() || s.out == nil {
		return true
	}
	speaker.Lock()
	s.out.ctrl.Paused = !s.out.ctrl.Paused
	muted := s.out.ctrl.Paused
	speaker.Unlock()
	return muted
}

// SetVolume changes the output gain, 0 to 1
func (s *Service) SetVolume(gain float64) {
	if s.disabled.Load() || s.out == nil {
		return
	}
	speaker.Lock()
	setLinear(s.out.volume, min(max(gain, 0), 1))
	speaker.Unlock()
}

// IsDisabled reports whether the service runs without a device
func (s *Service) IsDisabled() bool {
	return s.disabled.Load()
}
