package platform

import (
	"github.com/lixenwraith/agb-ecs/core"
	"github.com/lixenwraith/agb-ecs/engine"
	"github.com/lixenwraith/agb-ecs/gba"
	"github.com/lixenwraith/agb-ecs/status"
	"github.com/lixenwraith/agb-ecs/transform"
	"github.com/lixenwraith/agb-ecs/vmath"
)

// Sprite draws an entity at its GlobalTransform. It holds a VRAM reference, so it
// must only be created and dropped on the main context.
type Sprite struct {
	Handle            gba.SpriteVram
	HorizontalFlipped bool
	VerticalFlipped   bool
}

// RenderPlugin writes every Sprite into object attribute memory at the end of each update
type RenderPlugin struct{}

func (RenderPlugin) Build(app *engine.App) {
	app.AddSystems(engine.Last, engine.NewSystem("render_objects", renderObjects))
}

// renderObjects fills OAM in entity iteration order; sprites past the last slot are dropped for the frame
func renderObjects(w *engine.World) {
	oam := engine.MustGetNonSend[OamCursor](w)
	it := oam.Iter()
	defer it.Close()

	drawn, full := 0, false
	engine.Query2(w, func(_ core.Entity, s *Sprite, g *transform.GlobalTransform) bool {
		slot, ok := it.Next()
		if !ok {
			full = true
			return false
		}
		obj := gba.NewObjectUnmanaged(s.Handle.Clone())
		obj.Show().
			SetPosition(vmath.Truncate(g.Translation)).
			SetHFlip(s.HorizontalFlipped).
			SetVFlip(s.VerticalFlipped)
		slot.Set(obj)
		drawn++
		return true
	})

	if reg, ok := engine.GetResource[*status.Registry](w.Resources); ok {
		reg.Counters.Get(status.SpritesDrawn).Store(uint64(drawn))
		if full {
			if dropped := renderable(w) - drawn; dropped > 0 {
				reg.Counters.Get(status.SpritesDropped).Add(uint64(dropped))
			}
		}
	}
}

// renderable counts the entities a pass would draw given unlimited slots
func renderable(w *engine.World) int {
	n := 0
	engine.Query2(w, func(core.Entity, *Sprite, *transform.GlobalTransform) bool {
		n++
		return true
	})
	return n
}
