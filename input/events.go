package input

import "github.com/lixenwraith/agb-ecs/core"

// RawGamepadEvent is the combined stream of connection and raw button events.
// Implemented by GamepadConnectionEvent and RawGamepadButtonChangedEvent.
type RawGamepadEvent interface {
	Gamepad() core.Entity
	isRawGamepadEvent()
}

// GamepadConnectionEvent reports a gamepad connecting or disconnecting
type GamepadConnectionEvent struct {
	Entity     core.Entity
	Connection GamepadConnection
}

func (e GamepadConnectionEvent) Gamepad() core.Entity { return e.Entity }
func (GamepadConnectionEvent) isRawGamepadEvent()     {}

// RawGamepadButtonChangedEvent reports a new analog value for one button, before processing
type RawGamepadButtonChangedEvent struct {
	Entity core.Entity
	Button GamepadButton
	Value  float32
}

func (e RawGamepadButtonChangedEvent) Gamepad() core.Entity { return e.Entity }
func (RawGamepadButtonChangedEvent) isRawGamepadEvent()     {}

// GamepadButtonChangedEvent is the processed analog value of a button
type GamepadButtonChangedEvent struct {
	Entity core.Entity
	Button GamepadButton
	Value  float32
}

// GamepadButtonStateChangedEvent is a processed digital edge
type GamepadButtonStateChangedEvent struct {
	Entity core.Entity
	Button GamepadButton
	State  ButtonState
}
