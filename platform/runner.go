package platform

import (
	"sync/atomic"

	"github.com/lixenwraith/agb-ecs/engine"
	"github.com/lixenwraith/agb-ecs/gba"
	"github.com/lixenwraith/agb-ecs/status"
)

// RunnerPlugin paces the app to the display refresh
type RunnerPlugin struct {
	Machine *gba.Machine
}

func (p RunnerPlugin) Build(app *engine.App) {
	app.SetRunner(Runner(p.Machine))
}

// Runner returns a runner that performs one update per VBlank until the app exits.
// An update that overruns a frame makes the next wait return at once: the frame
// is dropped, never made up with a second update.
func Runner(m *gba.Machine) engine.RunnerFunc {
	return func(app *engine.App) engine.AppExit {
		vblank := gba.VBlankGet(m)

		var updates, late *atomic.Uint64
		if reg, ok := engine.GetResource[*status.Registry](app.World().Resources); ok {
			updates = reg.Counters.Get(status.Updates)
			late = reg.Counters.Get(status.LateFrames)
		}

		for {
			app.Update()
			if exit, ok := app.ShouldExit(); ok {
				return exit
			}
			if updates != nil {
				updates.Add(1)
				if vblank.Missed() {
					late.Add(1)
				}
			}
			vblank.WaitForVBlank()
		}
	}
}
