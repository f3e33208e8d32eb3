package host

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lixenwraith/agb-ecs/audio"
	"github.com/lixenwraith/agb-ecs/gba"
	"github.com/lixenwraith/agb-ecs/status"
	"github.com/lixenwraith/agb-ecs/vmath"
)

var (
	green = gba.RGB15(0, 31, 0)
	blue  = gba.RGB15(0, 0, 31)
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clearHostEnv(t *testing.T) {
	for _, k := range []string{"AGB_HOST", "AGB_SCALE", "AGB_MUTE", "AGB_SAVE", "AGB_DEBUG_PORT", "AGB_FRAMES", "AGB_LOG"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearHostEnv(t)
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scale != 3 || cfg.Frames != 600 || !cfg.DebugPort || cfg.Mute {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigEnvThenFlags(t *testing.T) {
	clearHostEnv(t)
	t.Setenv("AGB_HOST", "window")
	t.Setenv("AGB_SCALE", "2")
	t.Setenv("AGB_MUTE", "true")
	t.Setenv("AGB_FRAMES", "30")
	t.Setenv("AGB_SAVE", "game.sav")

	cfg, err := LoadConfig([]string{"-scale", "4", "-host", "headless", "-debug-port=false"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != ModeHeadless {
		t.Errorf("flag should override env host, got %q", cfg.Mode)
	}
	if cfg.Scale != 4 {
		t.Errorf("flag should override env scale, got %d", cfg.Scale)
	}
	if !cfg.Mute || cfg.Frames != 30 || cfg.SavePath != "game.sav" || cfg.DebugPort {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"bad scale env", map[string]string{"AGB_SCALE": "big"}, nil},
		{"bad mute env", map[string]string{"AGB_MUTE": "loud"}, nil},
		{"unknown host", nil, []string{"-host", "vr"}},
		{"scale range", nil, []string{"-scale", "0"}},
		{"negative frames", nil, []string{"-frames", "-1"}},
		{"record needs headless", nil, []string{"-host", "window", "-record", "a.wav"}},
		{"unbounded recording", nil, []string{"-host", "headless", "-frames", "0", "-record", "a.wav"}},
		{"unknown flag", nil, []string{"-turbo"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			clearHostEnv(t)
			for k, v := range c.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(c.args); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestValidateWraps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scale = 9
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

// bootObject places one 8x8 object whose left column uses color 1
func bootObject(t *testing.T, m *gba.Machine, x, y int32, hflip bool) {
	t.Helper()
	g := gba.NewInEntry(m)
	g.Display.Video.Tiled0().SetBackgroundColor(blue)

	oam, loader := g.Display.Object.GetUnmanaged()
	data := make([]byte, 32)
	for row := 0; row < 8; row++ {
		data[row*4] = 0x01 // Pixel 0 = color 1, pixel 1 transparent
	}
	pal := &gba.Palette16{}
	pal.Colors[1] = green
	s, err := gba.NewSprite(data, gba.S8x8, pal)
	if err != nil {
		t.Fatal(err)
	}
	v, err := loader.GetVramSprite(s)
	if err != nil {
		t.Fatal(err)
	}

	it := oam.Iter()
	slot, _ := it.Next()
	slot.Set(gba.NewObjectUnmanaged(v).Show().SetPosition(vmath.Vector2D{X: x, Y: y}).SetHFlip(hflip))
	it.Close()
}

func rgba(c gba.Color) color.RGBA {
	r, g, b := c.RGB8()
	return color.RGBA{r, g, b, 0xFF}
}

func TestComposeObject(t *testing.T) {
	m := gba.NewMachine()
	bootObject(t, m, 10, 20, false)

	frame := NewFrame()
	Compose(m, frame)

	checks := []struct {
		x, y int
		want gba.Color
	}{
		{10, 20, green},
		{10, 27, green},
		{11, 20, blue}, // Transparent pixel shows backdrop
		{17, 20, blue},
		{0, 0, blue},
	}
	for _, c := range checks {
		if got := frame.RGBAAt(c.x, c.y); got != rgba(c.want) {
			t.Errorf("(%d,%d): expected %v, got %v", c.x, c.y, rgba(c.want), got)
		}
	}
}

func TestComposeHFlipAndClip(t *testing.T) {
	m := gba.NewMachine()
	bootObject(t, m, -4, 156, true)

	frame := NewFrame()
	Compose(m, frame)

	// Flipped: the colored column is the object's rightmost, x = -4 + 7 = 3
	if got := frame.RGBAAt(3, 156); got != rgba(green) {
		t.Errorf("Expected flipped column at x=3, got %v", got)
	}
	if got := frame.RGBAAt(3, 159); got != rgba(green) {
		t.Errorf("Expected clipped object on last row, got %v", got)
	}
}

func TestComposeForcedBlank(t *testing.T) {
	m := gba.NewMachine()
	g := gba.NewInEntry(m)
	g.Display.Video.SetForcedBlank(true)

	frame := NewFrame()
	Compose(m, frame)
	if got := frame.RGBAAt(100, 100); got != (color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Errorf("forced blank should be white, got %v", got)
	}
}

func TestScreenshotScales(t *testing.T) {
	m := gba.NewMachine()
	bootObject(t, m, 10, 20, false)

	img := Screenshot(m, 3)
	if b := img.Bounds(); b.Dx() != 720 || b.Dy() != 480 {
		t.Fatalf("Expected 720x480, got %v", b)
	}
	for _, p := range [][2]int{{30, 60}, {32, 62}} {
		if got := img.RGBAAt(p[0], p[1]); got != rgba(green) {
			t.Errorf("%v: expected object pixel, got %v", p, got)
		}
	}

	path := filepath.Join(t.TempDir(), "shot.png")
	if err := WriteScreenshot(m, path, 2); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 480 || cfg.Height != 320 {
		t.Errorf("Expected 480x320 PNG, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestSaveServiceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.sav")

	m := gba.NewMachine()
	s := NewSaveService(m, path)
	if err := s.Init(); err != nil {
		t.Fatalf("missing file should be a fresh cartridge: %v", err)
	}
	m.Write8(gba.SRAMStart+5, 0x42)
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}

	m2 := gba.NewMachine()
	if err := NewSaveService(m2, path).Init(); err != nil {
		t.Fatal(err)
	}
	if got := m2.Read8(gba.SRAMStart + 5); got != 0x42 {
		t.Errorf("Expected restored byte 0x42, got %#x", got)
	}
	if got := m2.Read8(gba.SRAMStart + 6); got != 0xFF {
		t.Errorf("Expected erased byte 0xFF, got %#x", got)
	}
}

func TestSaveServiceRejectsOversize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.sav")
	if err := os.WriteFile(path, make([]byte, gba.SRAMSize+1), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewSaveService(gba.NewMachine(), path).Init(); err == nil {
		t.Error("Expected oversize save to be rejected")
	}
}

func TestSaveServiceDisabled(t *testing.T) {
	s := NewSaveService(gba.NewMachine(), "")
	if err := s.Init(); err != nil {
		t.Error(err)
	}
	if err := s.Stop(); err != nil {
		t.Error(err)
	}
}

// program waits for frames VBlanks and halts, like a ROM whose app exits
func program(m *gba.Machine, frames int) {
	vblank := gba.VBlankGet(m)
	for i := 0; i < frames; i++ {
		vblank.WaitForVBlank()
	}
	gba.Halt(m)
}

func TestHeadlessStopsAtHalt(t *testing.T) {
	m := gba.NewMachine()
	defer m.PowerOff()
	go program(m, 3)

	reg := status.NewRegistry()
	n, err := NewHeadless(m, 100, discard(), reg).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Expected 3 frames before halt, got %d", n)
	}
	if got := reg.Labels.Get(status.HostMode).Get(); got != "headless" {
		t.Errorf("Expected host mode label, got %q", got)
	}
}

func TestHeadlessFrameBudget(t *testing.T) {
	m := gba.NewMachine()
	defer m.PowerOff()
	go program(m, 1000)

	h := NewHeadless(m, 12, discard(), nil)
	rec := audio.NewRecorder(m)
	h.Record(rec)

	n, err := h.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 12 || m.Frames() != 12 {
		t.Errorf("Expected 12 frames, ran %d, machine at %d", n, m.Frames())
	}
	if rec.Len() == 0 {
		t.Error("recorder captured nothing")
	}
}

func TestHeadlessContextCancel(t *testing.T) {
	m := gba.NewMachine()
	defer m.PowerOff()
	// No program: nobody ever waits for VBlank

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewHeadless(m, 5, discard(), nil).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "host.log")
	log, closer, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	sink := DebugSink(log)
	sink(gba.DebugLine{Level: gba.MgbaWarning, Text: "low on tiles"})
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, `msg="low on tiles"`) || !strings.Contains(out, "source=mgba") {
		t.Errorf("unexpected log output %q", out)
	}
}

func TestNewLoggerDiscard(t *testing.T) {
	log, closer, err := NewLogger("")
	if err != nil {
		t.Fatal(err)
	}
	log.Info("nowhere")
	if err := closer.Close(); err != nil {
		t.Error(err)
	}
}

func TestDebugLevelMapping(t *testing.T) {
	cases := map[gba.MgbaLevel]slog.Level{
		gba.MgbaFatal:   slog.LevelError,
		gba.MgbaError:   slog.LevelError,
		gba.MgbaWarning: slog.LevelWarn,
		gba.MgbaInfo:    slog.LevelInfo,
		gba.MgbaDebug:   slog.LevelDebug,
	}
	for in, want := range cases {
		if got := debugLevel(in); got != want {
			t.Errorf("%v: expected %v, got %v", in, want, got)
		}
	}
}
