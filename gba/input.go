package gba

// Button is a bit in the KEYINPUT register
type Button uint16

const (
	ButtonA      Button = 1 << 0
	ButtonB      Button = 1 << 1
	ButtonSelect Button = 1 << 2
	ButtonStart  Button = 1 << 3
	ButtonRight  Button = 1 << 4
	ButtonLeft   Button = 1 << 5
	ButtonUp     Button = 1 << 6
	ButtonDown   Button = 1 << 7
	ButtonR      Button = 1 << 8
	ButtonL      Button = 1 << 9

	// ButtonNone is the empty mask
	ButtonNone Button = 0

	keyMask = 0x3FF
)

var buttonNames = []struct {
	b    Button
	name string
}{
	{ButtonA, "A"}, {ButtonB, "B"}, {ButtonSelect, "SELECT"}, {ButtonStart, "START"},
	{ButtonRight, "RIGHT"}, {ButtonLeft, "LEFT"}, {ButtonUp, "UP"}, {ButtonDown, "DOWN"},
	{ButtonR, "R"}, {ButtonL, "L"},
}

func (b Button) String() string {
	if b == ButtonNone {
		return "NONE"
	}
	s := ""
	for _, bn := range buttonNames {
		if b&bn.b != 0 {
			if s != "" {
				s += "|"
			}
			s += bn.name
		}
	}
	return s
}

// ButtonController keeps the current and previous KEYINPUT samples
type ButtonController struct {
	m        *Machine
	current  Button
	previous Button
}

// NewButtonController samples the register once so the first Update reports no edges
func NewButtonController(m *Machine) *ButtonController {
	c := &ButtonController{m: m}
	c.current = c.sample()
	c.previous = c.current
	return c
}

func (c *ButtonController) sample() Button {
	return Button(^c.m.Read16(IOStart+RegKEYINPUT) & keyMask)
}

// Update shifts current into previous and takes one new sample
func (c *ButtonController) Update() {
	c.previous = c.current
	c.current = c.sample()
}

// IsPressed reports whether b is held in the current sample
func (c *ButtonController) IsPressed(b Button) bool {
	return c.current&b != 0
}

// IsJustPressed reports a 0->1 transition between the two samples
func (c *ButtonController) IsJustPressed(b Button) bool {
	return c.current&b != 0 && c.previous&b == 0
}

// IsReleased reports whether b is up in the current sample
func (c *ButtonController) IsReleased(b Button) bool {
	return c.current&b == 0
}

// IsJustReleased reports a 1->0 transition between the two samples
func (c *ButtonController) IsJustReleased(b Button) bool {
	return c.current&b == 0 && c.previous&b != 0
}

// Current returns the latest sample
func (c *ButtonController) Current() Button {
	return c.current
}
