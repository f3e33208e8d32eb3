// Package input holds the engine-side gamepad abstractions: button identities,
// connection and raw change events, and the per-entity Gamepad state component.
package input

// GamepadButton identifies a button on an abstract gamepad layout
type GamepadButton uint8

const (
	South GamepadButton = iota
	East
	North
	West
	C
	Z
	LeftTrigger
	LeftTrigger2
	RightTrigger
	RightTrigger2
	Select
	Start
	Mode
	LeftThumb
	RightThumb
	DPadUp
	DPadDown
	DPadLeft
	DPadRight

	buttonCount
)

var buttonNames = [buttonCount]string{
	South:         "South",
	East:          "East",
	North:         "North",
	West:          "West",
	C:             "C",
	Z:             "Z",
	LeftTrigger:   "LeftTrigger",
	LeftTrigger2:  "LeftTrigger2",
	RightTrigger:  "RightTrigger",
	RightTrigger2: "RightTrigger2",
	Select:        "Select",
	Start:         "Start",
	Mode:          "Mode",
	LeftThumb:     "LeftThumb",
	RightThumb:    "RightThumb",
	DPadUp:        "DPadUp",
	DPadDown:      "DPadDown",
	DPadLeft:      "DPadLeft",
	DPadRight:     "DPadRight",
}

func (b GamepadButton) String() string {
	if b < buttonCount {
		return buttonNames[b]
	}
	return "Unknown"
}

// ButtonCount is the number of distinct GamepadButton values
const ButtonCount = int(buttonCount)

// PressThreshold is the value at or above which a button counts as pressed
const PressThreshold = 0.75

// Gamepad is the processed state of one connected gamepad entity
type Gamepad struct {
	Name      string
	VendorID  *uint16
	ProductID *uint16

	values       [buttonCount]float32
	pressed      uint32
	justPressed  uint32
	justReleased uint32
}

// Pressed reports whether b is currently held
func (g *Gamepad) Pressed(b GamepadButton) bool {
	return g.pressed&(1<<b) != 0
}

// JustPressed reports whether b went down during this frame
func (g *Gamepad) JustPressed(b GamepadButton) bool {
	return g.justPressed&(1<<b) != 0
}

// JustReleased reports whether b went up during this frame
func (g *Gamepad) JustReleased(b GamepadButton) bool {
	return g.justReleased&(1<<b) != 0
}

// Value returns the last analog value reported for b
func (g *Gamepad) Value(b GamepadButton) float32 {
	if b >= buttonCount {
		return 0
	}
	return g.values[b]
}

// clearFrame resets the per-frame edge flags
func (g *Gamepad) clearFrame() {
	g.justPressed = 0
	g.justReleased = 0
}

// apply records a new value for b; returns the state transition, if any
func (g *Gamepad) apply(b GamepadButton, value float32) (ButtonState, bool) {
	if b >= buttonCount {
		return 0, false
	}
	g.values[b] = value
	bit := uint32(1) << b
	was := g.pressed&bit != 0
	now := value >= PressThreshold

	switch {
	case now && !was:
		g.pressed |= bit
		g.justPressed |= bit
		return Pressed, true
	case !now && was:
		g.pressed &^= bit
		g.justReleased |= bit
		return Released, true
	}
	return 0, false
}

// ButtonState is a digital button edge
type ButtonState uint8

const (
	Released ButtonState = iota
	Pressed
)

func (s ButtonState) String() string {
	if s == Pressed {
		return "Pressed"
	}
	return "Released"
}

// GamepadInfo is the identity reported on connection
type GamepadInfo struct {
	Name      string
	VendorID  *uint16
	ProductID *uint16
}

// GamepadConnection is either Connected (Info set) or Disconnected
type GamepadConnection struct {
	Connected bool
	Info      GamepadInfo
}

// Connected builds a connection value
func Connected(info GamepadInfo) GamepadConnection {
	return GamepadConnection{Connected: true, Info: info}
}

// Disconnected builds a disconnection value
func Disconnected() GamepadConnection {
	return GamepadConnection{}
}
