package platform

import (
	"sync/atomic"

	"github.com/lixenwraith/agb-ecs/core"
	"github.com/lixenwraith/agb-ecs/engine"
	"github.com/lixenwraith/agb-ecs/gba"
	"github.com/lixenwraith/agb-ecs/input"
	"github.com/lixenwraith/agb-ecs/status"
)

// GamepadName is reported in the connection event
const GamepadName = "GameBoy Advance Gamepad"

// GameBoyGamepad marks the entity standing for the built-in buttons
type GameBoyGamepad struct{}

// ButtonController is the shared button snapshot
type ButtonController struct{ *gba.ButtonController }

// buttonMapping is also the order in which changes are emitted within a frame
var buttonMapping = [...]struct {
	from gba.Button
	to   input.GamepadButton
}{
	{gba.ButtonA, input.East},
	{gba.ButtonB, input.South},
	{gba.ButtonSelect, input.Select},
	{gba.ButtonStart, input.Start},
	{gba.ButtonRight, input.DPadRight},
	{gba.ButtonLeft, input.DPadLeft},
	{gba.ButtonUp, input.DPadUp},
	{gba.ButtonDown, input.DPadDown},
	{gba.ButtonR, input.RightTrigger},
	{gba.ButtonL, input.LeftTrigger},
}

// InputPlugin publishes the buttons as a connected gamepad
type InputPlugin struct {
	Machine *gba.Machine
}

func (p InputPlugin) Build(app *engine.App) {
	engine.AddEvent[input.RawGamepadEvent](app)
	engine.AddEvent[input.GamepadConnectionEvent](app)
	engine.AddEvent[input.RawGamepadButtonChangedEvent](app)

	w := app.World()
	pad := w.NewEntity()
	engine.With(pad, GameBoyGamepad{})
	pad.Build()

	engine.InsertResource(app, ButtonController{gba.NewButtonController(p.Machine)})

	app.AddSystems(engine.Startup, engine.NewSystem("add_gamepad", addGamepad))
	app.AddSystems(engine.First, engine.NewSystemWithPriority("update_buttons", engine.PriorityFirst, updateButtons))
}

func gamepadEntity(w *engine.World) core.Entity {
	e, _, ok := engine.Single[GameBoyGamepad](w)
	if !ok {
		panic("platform: gamepad entity missing")
	}
	return e
}

func addGamepad(w *engine.World) {
	ev := input.GamepadConnectionEvent{
		Entity: gamepadEntity(w),
		Connection: input.Connected(input.GamepadInfo{
			Name:      GamepadName,
			VendorID:  nil,
			ProductID: nil,
		}),
	}
	engine.EventsOf[input.RawGamepadEvent](w).Send(ev)
	engine.EventsOf[input.GamepadConnectionEvent](w).Send(ev)

	if reg, ok := engine.GetResource[*status.Registry](w.Resources); ok {
		reg.Labels.Get(status.GamepadName).Set(GamepadName)
	}
}

func updateButtons(w *engine.World) {
	buttons := engine.MustGetResource[ButtonController](w.Resources)
	buttons.Update()

	entity := gamepadEntity(w)
	raw := engine.EventsOf[input.RawGamepadEvent](w)
	changed := engine.EventsOf[input.RawGamepadButtonChangedEvent](w)

	var counter *atomic.Uint64
	if reg, ok := engine.GetResource[*status.Registry](w.Resources); ok {
		counter = reg.Counters.Get(status.ButtonEvents)
	}

	for _, m := range buttonMapping {
		var value float32
		switch {
		case buttons.IsJustPressed(m.from):
			value = 1
		case buttons.IsJustReleased(m.from):
			value = 0
		default:
			continue
		}

		ev := input.RawGamepadButtonChangedEvent{Entity: entity, Button: m.to, Value: value}
		raw.Send(ev)
		changed.Send(ev)
		if counter != nil {
			counter.Add(1)
		}
	}
}
