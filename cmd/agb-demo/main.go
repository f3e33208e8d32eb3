// Command agb-demo boots a small sprite demo on the emulated console and
// shows it through the terminal, a window or a headless lockstep driver.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/lixenwraith/agb-ecs/audio"
	"github.com/lixenwraith/agb-ecs/core"
	"github.com/lixenwraith/agb-ecs/gba"
	"github.com/lixenwraith/agb-ecs/host"
	"github.com/lixenwraith/agb-ecs/host/terminal"
	"github.com/lixenwraith/agb-ecs/host/window"
	"github.com/lixenwraith/agb-ecs/service"
	"github.com/lixenwraith/agb-ecs/status"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	cfg, err := host.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "agb-demo: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "agb-demo: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *host.Config) error {
	log, closer, err := host.NewLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	m := gba.NewMachine(
		gba.WithDebugPort(cfg.DebugPort),
		gba.WithDebugSink(host.DebugSink(log)),
	)
	reg := status.NewRegistry()

	hub := service.NewHub()
	if err := hub.Register(host.NewSaveService(m, cfg.SavePath)); err != nil {
		return err
	}
	var sound *audio.Service
	if cfg.Mode != host.ModeHeadless {
		sound = audio.NewService(m)
		if err := hub.Register(sound); err != nil {
			return err
		}
	}
	var term *terminal.Service
	if cfg.Mode == host.ModeTerminal {
		term = terminal.NewService(m, reg, log)
		term.OnMute = sound.ToggleMute
		if err := hub.Register(term); err != nil {
			return err
		}
	}

	if err := hub.InitAll(audio.LoadConfig(), cfg.Mute); err != nil {
		return err
	}
	if err := hub.StartAll(); err != nil {
		return err
	}
	log.Info("host started", "mode", cfg.Mode, "services", hub.Names())

	core.Go(func() { romMain(m, reg) })

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runErr := runHost(ctx, cfg, m, reg, log, sound, term)

	if cfg.Screenshot != "" {
		if err := host.WriteScreenshot(m, cfg.Screenshot, cfg.Scale); err != nil {
			log.Error("screenshot failed", "err", err)
		}
	}
	m.PowerOff()
	log.Info("host stopped", "frames", m.Frames(), "status", reg.Line())

	return errors.Join(runErr, hub.StopAll())
}

func runHost(ctx context.Context, cfg *host.Config, m *gba.Machine, reg *status.Registry, log *slog.Logger, sound *audio.Service, term *terminal.Service) error {
	switch cfg.Mode {
	case host.ModeHeadless:
		h := host.NewHeadless(m, cfg.Frames, log, reg)
		var rec *audio.Recorder
		if cfg.Record != "" {
			rec = audio.NewRecorder(m)
			h.Record(rec)
		}
		if _, err := h.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		if rec != nil {
			return rec.WriteFile(cfg.Record)
		}
		return nil

	case host.ModeTerminal:
		if err := term.Run(ctx); err != nil && !errors.Is(err, terminal.ErrQuit) && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil

	case host.ModeWindow:
		g := window.NewGame(m, reg, log)
		g.OnMute = sound.ToggleMute
		return window.Run(g, cfg.Scale)
	}
	return fmt.Errorf("unknown host %q", cfg.Mode)
}
