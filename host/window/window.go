// Package window is the desktop front end: an ebiten window showing the
// console display, with the keyboard as keypad.
package window

import (
	"image"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/lixenwraith/agb-ecs/gba"
	"github.com/lixenwraith/agb-ecs/host"
	"github.com/lixenwraith/agb-ecs/status"
)

// keyButtons is the keyboard layout; arrows plus the usual emulator letters
var keyButtons = []struct {
	key    ebiten.Key
	button gba.Button
}{
	{ebiten.KeyX, gba.ButtonA},
	{ebiten.KeyZ, gba.ButtonB},
	{ebiten.KeyBackspace, gba.ButtonSelect},
	{ebiten.KeyEnter, gba.ButtonStart},
	{ebiten.KeyArrowRight, gba.ButtonRight},
	{ebiten.KeyArrowLeft, gba.ButtonLeft},
	{ebiten.KeyArrowUp, gba.ButtonUp},
	{ebiten.KeyArrowDown, gba.ButtonDown},
	{ebiten.KeyS, gba.ButtonR},
	{ebiten.KeyA, gba.ButtonL},
}

// Game runs one machine frame per ebiten tick
type Game struct {
	m   *gba.Machine
	reg *status.Registry
	log *slog.Logger

	frame *image.RGBA
	img   *ebiten.Image

	// OnMute is called for the M key; reports the new mute state
	OnMute func() bool
}

// NewGame creates the window front end for m; reg may be nil
func NewGame(m *gba.Machine, reg *status.Registry, log *slog.Logger) *Game {
	return &Game{
		m:     m,
		reg:   reg,
		log:   log,
		frame: host.NewFrame(),
		img:   ebiten.NewImage(gba.ScreenWidth, gba.ScreenHeight),
	}
}

// Update implements ebiten.Game
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.m.Halted() {
		g.log.Info("program halted")
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) && g.OnMute != nil {
		g.log.Info("mute toggled", "muted", g.OnMute())
	}

	var keys gba.Button
	for _, kb := range keyButtons {
		if ebiten.IsKeyPressed(kb.key) {
			keys |= kb.button
		}
	}
	g.m.SetKeys(keys)
	g.m.RunFrame()

	if g.reg != nil {
		g.reg.Gauges.Get(status.HostFPS).Set(ebiten.ActualTPS())
	}
	return nil
}

// Draw implements ebiten.Game
func (g *Game) Draw(screen *ebiten.Image) {
	host.Compose(g.m, g.frame)
	g.img.WritePixels(g.frame.Pix)
	screen.DrawImage(g.img, nil)
}

// Layout implements ebiten.Game; ebiten scales the logical screen to the window
func (g *Game) Layout(int, int) (int, int) {
	return gba.ScreenWidth, gba.ScreenHeight
}

// Run opens the window and blocks until it closes. Must be called from the main goroutine.
func Run(g *Game, scale int) error {
	if g.reg != nil {
		g.reg.Labels.Get(status.HostMode).Set(string(host.ModeWindow))
	}
	ebiten.SetWindowSize(gba.ScreenWidth*scale, gba.ScreenHeight*scale)
	ebiten.SetWindowTitle("agb-ecs")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	// Closest whole rate to the console's 59.73 Hz
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}
