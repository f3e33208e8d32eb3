// Package terminal is the terminal front end: a tcell screen showing the
// console display in half-block cells, with the keyboard as keypad.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/agb-ecs/core"
	"github.com/lixenwraith/agb-ecs/gba"
	"github.com/lixenwraith/agb-ecs/host"
	"github.com/lixenwraith/agb-ecs/status"
)

// FramePeriod is the console refresh interval, ~16.74ms
const FramePeriod = time.Second * gba.CyclesPerFrame / gba.CyclesPerSecond

// ErrQuit is returned by Run when the user quits
var ErrQuit = errors.New("terminal: quit")

// Service owns the screen and polls it for keys
type Service struct {
	m   *gba.Machine
	reg *status.Registry
	log *slog.Logger

	screen tcell.Screen
	keys   *keyLatch
	frame  *image.RGBA

	// OnMute is called for the mute key; reports the new mute state
	OnMute func() bool

	quit     chan struct{}
	quitOnce sync.Once
	finiOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewService creates the terminal front end for m; reg may be nil
func NewService(m *gba.Machine, reg *status.Registry, log *slog.Logger) *Service {
	return &Service{
		m:      m,
		reg:    reg,
		log:    log,
		keys:   newKeyLatch(),
		frame:  host.NewFrame(),
		quit:   make(chan struct{}),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "terminal"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements service.Service.
// A tcell.Screen arg is used instead of the real terminal.
func (s *Service) Init(args ...any) error {
	for _, arg := range args {
		if scr, ok := arg.(tcell.Screen); ok {
			s.screen = scr
		}
	}
	if s.screen == nil {
		scr, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal init: %w", err)
		}
		s.screen = scr
	}
	if err := s.screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	s.screen.HideCursor()
	core.SetCrashReset(s.screen.Fini)
	return nil
}

// Start implements service.Service; launches the poll goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	core.Go(s.pollLoop)
	return nil
}

func (s *Service) pollLoop() {
	defer close(s.doneCh)
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		ev := s.screen.PollEvent()
		if ev == nil {
			return // Screen finalized
		}
		s.handle(ev)
	}
}

func (s *Service) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			s.quitOnce.Do(func() { close(s.quit) })
			return
		}
		if ev.Key() == tcell.KeyRune && ev.Rune() == 'm' && s.OnMute != nil {
			s.log.Info("mute toggled", "muted", s.OnMute())
			return
		}
		if b, ok := buttonFor(ev); ok {
			s.keys.press(b)
		}
	case *tcell.EventResize:
		s.screen.Sync()
	}
}

// Stop implements service.Service; restores the terminal
func (s *Service) Stop() error {
	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	if wasRunning {
		close(s.stopCh)
	}
	s.fini() // Unblocks PollEvent
	if wasRunning {
		<-s.doneCh
	}
	return nil
}

func (s *Service) fini() {
	if s.screen == nil {
		return
	}
	s.finiOnce.Do(func() {
		s.screen.Fini()
		core.SetCrashReset(nil)
	})
}

// Run free-runs the machine at the console refresh rate until the user quits,
// the program halts or ctx ends. A program that overruns a frame drops it.
func (s *Service) Run(ctx context.Context) error {
	if s.reg != nil {
		s.reg.Labels.Get(status.HostMode).Set(string(host.ModeTerminal))
	}

	ticker := time.NewTicker(FramePeriod)
	defer ticker.Stop()

	var frames int
	window := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.quit:
			return ErrQuit
		case <-ticker.C:
		}

		s.Step()
		if s.m.Halted() {
			s.log.Info("program halted")
			return nil
		}

		frames++
		if d := time.Since(window); d >= time.Second {
			if s.reg != nil {
				s.reg.Gauges.Get(status.HostFPS).Set(float64(frames) / d.Seconds())
			}
			frames, window = 0, time.Now()
		}
	}
}

// Step latches keys, runs one frame and redraws
func (s *Service) Step() {
	s.m.SetKeys(s.keys.advance())
	s.m.RunFrame()
	s.Draw()
}
