package input

import (
	"log/slog"

	"github.com/lixenwraith/agb-ecs/core"
	"github.com/lixenwraith/agb-ecs/engine"
)

// Plugin registers the gamepad event streams and turns raw events into Gamepad state
type Plugin struct{}

func (Plugin) Build(app *engine.App) {
	raw := engine.AddEvent[RawGamepadEvent](app)
	engine.AddEvent[GamepadConnectionEvent](app)
	engine.AddEvent[RawGamepadButtonChangedEvent](app)
	engine.AddEvent[GamepadButtonChangedEvent](app)
	engine.AddEvent[GamepadButtonStateChangedEvent](app)

	reader := raw.Reader()
	app.AddSystems(engine.PreUpdate, engine.NewSystem("gamepad_event_processing", func(w *engine.World) {
		processRawEvents(w, reader)
	}))
}

func processRawEvents(w *engine.World, reader *engine.EventReader[RawGamepadEvent]) {
	pads := engine.GetStore[Gamepad](w)
	pads.Each(func(_ core.Entity, g *Gamepad) bool {
		g.clearFrame()
		return true
	})

	changed := engine.EventsOf[GamepadButtonChangedEvent](w)
	states := engine.EventsOf[GamepadButtonStateChangedEvent](w)

	for _, ev := range reader.Read() {
		switch e := ev.(type) {
		case GamepadConnectionEvent:
			if e.Connection.Connected {
				info := e.Connection.Info
				pads.Set(e.Entity, Gamepad{Name: info.Name, VendorID: info.VendorID, ProductID: info.ProductID})
				slog.Info("gamepad connected", "entity", uint64(e.Entity), "name", info.Name)
			} else {
				pads.Remove(e.Entity)
				slog.Info("gamepad disconnected", "entity", uint64(e.Entity))
			}

		case RawGamepadButtonChangedEvent:
			g := pads.Ref(e.Entity)
			if g == nil {
				continue
			}
			changed.Send(GamepadButtonChangedEvent(e))
			if state, ok := g.apply(e.Button, e.Value); ok {
				states.Send(GamepadButtonStateChangedEvent{Entity: e.Entity, Button: e.Button, State: state})
			}
		}
	}
}
