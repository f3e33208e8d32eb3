package transform

import (
	"github.com/lixenwraith/agb-ecs/core"
	"github.com/lixenwraith/agb-ecs/engine"
)

// Plugin keeps GlobalTransform in sync with the Transform hierarchy.
// Propagation runs in PostUpdate so the renderer in Last sees this frame's positions.
type Plugin struct{}

func (Plugin) Build(app *engine.App) {
	app.AddSystems(engine.PostUpdate,
		engine.NewSystemWithPriority("sync_simple_transforms", engine.PriorityDefault-1, ensureGlobals),
		engine.NewSystem("propagate_transforms", Propagate),
	)
}

// ensureGlobals attaches a GlobalTransform to every entity that has only a Transform
func ensureGlobals(w *engine.World) {
	globals := engine.GetStore[GlobalTransform](w)
	engine.Query1(w, func(e core.Entity, t *Transform) bool {
		if !globals.Has(e) {
			globals.Set(e, FromTransform(*t))
		}
		return true
	})
}

// Propagate recomputes every GlobalTransform from its Transform and parent chain.
// Entities whose parent has no Transform are treated as roots; cycles are broken at the revisit.
func Propagate(w *engine.World) {
	locals := engine.GetStore[Transform](w)
	parents := engine.GetStore[Parent](w)

	resolved := make(map[core.Entity]GlobalTransform, locals.Count())
	visiting := make(map[core.Entity]bool)

	var resolve func(e core.Entity) GlobalTransform
	resolve = func(e core.Entity) GlobalTransform {
		if g, ok := resolved[e]; ok {
			return g
		}
		local := locals.Ref(e)
		g := FromTransform(*local)

		if p := parents.Ref(e); p != nil && locals.Has(p.Entity) && !visiting[e] {
			visiting[e] = true
			g = resolve(p.Entity).MulTransform(*local)
			delete(visiting, e)
		}
		resolved[e] = g
		return g
	}

	engine.Query2(w, func(e core.Entity, _ *Transform, global *GlobalTransform) bool {
		*global = resolve(e)
		return true
	})
}
