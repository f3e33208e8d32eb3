package platform

import (
	"github.com/lixenwraith/agb-ecs/clock"
	"github.com/lixenwraith/agb-ecs/engine"
	"github.com/lixenwraith/agb-ecs/gba"
	"github.com/lixenwraith/agb-ecs/status"
)

// Plugins is the full platform integration for one machine
type Plugins struct {
	Machine *gba.Machine

	// Clock overrides clock.Default
	Clock *clock.Source
	// Registry, when set, is published as a resource and receives platform metrics
	Registry *status.Registry
}

func (p Plugins) Build(app *engine.App) {
	app.AddPlugins(p.Plugins()...)
}

// Plugins lists the members in build order
func (p Plugins) Plugins() []engine.Plugin {
	var list []engine.Plugin
	if p.Registry != nil {
		list = append(list, statusPlugin{p.Registry})
	}
	return append(list,
		UnpackPlugin{Machine: p.Machine},
		LogPlugin{Machine: p.Machine, Registry: p.Registry},
		InputPlugin{Machine: p.Machine},
		RenderPlugin{},
		RunnerPlugin{Machine: p.Machine},
		TimePlugin{Machine: p.Machine, Clock: p.Clock},
	)
}

// Install adds the platform plugins for m to app
func Install(app *engine.App, m *gba.Machine) *engine.App {
	return app.AddPlugins(Plugins{Machine: m})
}

type statusPlugin struct {
	registry *status.Registry
}

func (p statusPlugin) Build(app *engine.App) {
	engine.InsertResource(app, p.registry)
}
