package main

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/lixenwraith/agb-ecs/clock"
	"github.com/lixenwraith/agb-ecs/core"
	"github.com/lixenwraith/agb-ecs/engine"
	"github.com/lixenwraith/agb-ecs/gba"
	"github.com/lixenwraith/agb-ecs/input"
	"github.com/lixenwraith/agb-ecs/platform"
	"github.com/lixenwraith/agb-ecs/status"
	"github.com/lixenwraith/agb-ecs/transform"
	"github.com/lixenwraith/agb-ecs/vmath"
)

const (
	shipSpeed   = 60 // Pixels per second
	orbitRadius = 14
	orbitPeriod = 2 * time.Second
	beepRate    = 1750 // ~440 Hz
	beepLength  = 80 * time.Millisecond
	screenMaxX  = gba.ScreenWidth - 16
	screenMaxY  = gba.ScreenHeight - 16

	scoreOffset = 0
	erasedScore = 0xFFFFFFFF
)

type ship struct{}

type satellite struct{}

// score is the persistent B-press counter kept in SRAM
type score struct {
	N uint32
}

// newApp assembles the program; src overrides the clock for tests
func newApp(m *gba.Machine, reg *status.Registry, src *clock.Source) *engine.App {
	return engine.NewApp().AddPlugins(
		platform.Plugins{Machine: m, Clock: src, Registry: reg},
		engine.TimePlugin{Source: src},
		engine.FrameCountPlugin{},
		transform.Plugin{},
		input.Plugin{},
		demoPlugin{},
	)
}

// romMain is the program the console boots into. It never returns.
func romMain(m *gba.Machine, reg *status.Registry) {
	defer func() {
		if r := recover(); r != nil {
			platform.Fatal(m, fmt.Sprint("panic: ", r))
			panic(r)
		}
	}()

	exit := newApp(m, reg, nil).Run()
	slog.Info("app exited", "code", exit.Code)
	gba.Halt(m)
}

type demoPlugin struct{}

func (demoPlugin) Build(app *engine.App) {
	app.AddSystems(engine.Startup,
		engine.NewSystem("setup_display", setupDisplay),
		engine.NewSystem("load_score", loadScore),
		engine.NewSystem("spawn_ship", spawnShip),
	)
	app.AddSystems(engine.Update,
		engine.NewSystem("move_ship", moveShip),
		engine.NewSystem("orbit_satellite", orbitSatellite),
		engine.NewSystem("beep_on_a", beepOnA),
		engine.NewSystem("count_on_b", countOnB),
		engine.NewSystem("quit_on_start_select", quitOnStartSelect),
	)
}

func setupDisplay(w *engine.World) {
	video := engine.MustGetResource[platform.Video](w.Resources)
	video.Tiled0().SetBackgroundColor(gba.RGB15(2, 2, 8))
	engine.MustGetResource[platform.Sound](w.Resources).Enable()
}

func loadScore(w *engine.World) {
	saves := engine.MustGetResource[platform.SaveManager](w.Resources)
	saves.InitSram()

	var s score
	if data, err := saves.Access(); err != nil {
		slog.Error("save unavailable", "err", err)
	} else {
		var buf [4]byte
		if _, err := data.ReadAt(buf[:], scoreOffset); err == nil {
			if v := binary.LittleEndian.Uint32(buf[:]); v != erasedScore {
				s.N = v
			}
		}
	}
	slog.Info("score loaded", "score", s.N)
	engine.AddResource(w.Resources, &s)
}

func spawnShip(w *engine.World) {
	loader := engine.MustGetNonSend[platform.SpriteLoader](w)
	shipVram, err := loader.GetVramSprite(shipSprite())
	if err != nil {
		panic(err)
	}
	satVram, err := loader.GetVramSprite(satelliteSprite())
	if err != nil {
		panic(err)
	}

	player := w.NewEntity()
	engine.With(player, ship{})
	engine.With(player, transform.FromXYZ(screenMaxX/2, screenMaxY/2, 0))
	engine.With(player, platform.Sprite{Handle: shipVram})
	shipID := player.Build()

	moon := w.NewEntity()
	engine.With(moon, satellite{})
	engine.With(moon, transform.FromXYZ(orbitRadius, 0, 0))
	engine.With(moon, transform.Parent{Entity: shipID})
	engine.With(moon, platform.Sprite{Handle: satVram})
	moon.Build()
}

func gamepad(w *engine.World) *input.Gamepad {
	_, pad, ok := engine.Single[input.Gamepad](w)
	if !ok {
		return nil
	}
	return pad
}

func moveShip(w *engine.World) {
	pad := gamepad(w)
	if pad == nil {
		return
	}
	dt := float32(engine.MustGetResource[*engine.Time](w.Resources).Delta.Seconds())

	var dx, dy float32
	if pad.Pressed(input.DPadLeft) {
		dx--
	}
	if pad.Pressed(input.DPadRight) {
		dx++
	}
	if pad.Pressed(input.DPadUp) {
		dy--
	}
	if pad.Pressed(input.DPadDown) {
		dy++
	}
	if dx == 0 && dy == 0 {
		return
	}

	engine.Query2(w, func(_ core.Entity, _ *ship, t *transform.Transform) bool {
		t.Translation.X = clamp(t.Translation.X+dx*shipSpeed*dt, 0, screenMaxX)
		t.Translation.Y = clamp(t.Translation.Y+dy*shipSpeed*dt, 0, screenMaxY)
		return true
	})
	engine.Query2(w, func(_ core.Entity, _ *ship, s *platform.Sprite) bool {
		if dx != 0 {
			s.HorizontalFlipped = dx < 0
		}
		return true
	})
}

func orbitSatellite(w *engine.World) {
	elapsed := engine.MustGetResource[*engine.Time](w.Resources).Elapsed
	angle := 2 * math.Pi * float64(elapsed%orbitPeriod) / float64(orbitPeriod)

	engine.Query2(w, func(_ core.Entity, _ *satellite, t *transform.Transform) bool {
		t.Translation = vmath.Vec3{
			X: 4 + orbitRadius*float32(math.Cos(angle)),
			Y: 4 + orbitRadius*float32(math.Sin(angle)),
		}
		return true
	})
}

func beepOnA(w *engine.World) {
	if pad := gamepad(w); pad != nil && pad.JustPressed(input.East) {
		engine.MustGetResource[platform.Sound](w.Resources).Channel1().
			PlaySound(beepRate, gba.Duty50, 12, beepLength)
	}
}

func countOnB(w *engine.World) {
	pad := gamepad(w)
	if pad == nil || !pad.JustPressed(input.South) {
		return
	}
	s := engine.MustGetResource[*score](w.Resources)
	s.N++

	data, err := engine.MustGetResource[platform.SaveManager](w.Resources).Access()
	if err != nil {
		slog.Error("save unavailable", "err", err)
		return
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], s.N)
	if _, err := data.WriteAt(buf[:], scoreOffset); err != nil {
		slog.Error("score not saved", "err", err)
		return
	}
	slog.Info("score saved", "score", s.N)
}

func quitOnStartSelect(w *engine.World) {
	if pad := gamepad(w); pad != nil && pad.Pressed(input.Start) && pad.Pressed(input.Select) {
		w.SendExit(engine.AppExitSuccess)
	}
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
