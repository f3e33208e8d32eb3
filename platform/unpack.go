package platform

import (
	"sync"

	"github.com/lixenwraith/agb-ecs/engine"
	"github.com/lixenwraith/agb-ecs/gba"
)

// Shared hardware resources, one per peripheral handle
type (
	Video           struct{ *gba.Video }
	WindowDist      struct{ *gba.Window }
	BlendDist       struct{ *gba.Blend }
	Sound           struct{ *gba.Sound }
	MixerController struct{ *gba.MixerController }
	SaveManager     struct{ *gba.SaveManager }
	Timer2          struct{ *gba.Timer }
	Timer3          struct{ *gba.Timer }
	DmaController   struct{ *gba.DmaController }
)

// Main-context-only resources
type (
	OamCursor    struct{ *gba.OamUnmanaged }
	SpriteLoader struct{ *gba.SpriteLoader }
)

// objectControllers keeps every booted object controller reachable for the life
// of the program; the OAM cursor and sprite loader borrow from it.
var objectControllers struct {
	mu   sync.Mutex
	list []*gba.ObjectController
}

func retainObjectController(c *gba.ObjectController) *gba.ObjectController {
	objectControllers.mu.Lock()
	objectControllers.list = append(objectControllers.list, c)
	objectControllers.mu.Unlock()
	return c
}

// UnpackPlugin takes the peripheral set and publishes each handle as a resource.
// Taking the peripherals twice on one machine panics.
type UnpackPlugin struct {
	Machine *gba.Machine
}

func (p UnpackPlugin) Build(app *engine.App) {
	g := gba.NewInEntry(p.Machine)

	object := retainObjectController(g.Display.Object)
	oam, loader := object.GetUnmanaged()
	engine.InsertNonSend(app, OamCursor{oam})
	engine.InsertNonSend(app, SpriteLoader{loader})

	engine.InsertResource(app, Video{g.Display.Video})
	engine.InsertResource(app, WindowDist{g.Display.Window})
	engine.InsertResource(app, BlendDist{g.Display.Blend})
	engine.InsertResource(app, Sound{g.Sound})
	engine.InsertResource(app, MixerController{g.Mixer})
	engine.InsertResource(app, SaveManager{g.Save})
	engine.InsertResource(app, Timer2{g.Timers.Timer2})
	engine.InsertResource(app, Timer3{g.Timers.Timer3})
	engine.InsertResource(app, DmaController{g.Dma})
}
