package gba

// Divider selects the timer prescaler
type Divider uint8

const (
	Divider1 Divider = iota
	Divider64
	Divider256
	Divider1024
)

// Cycles returns the number of system cycles per timer tick
func (d Divider) Cycles() int {
	switch d {
	case Divider64:
		return 64
	case Divider256:
		return 256
	case Divider1024:
		return 1024
	default:
		return 1
	}
}

// TMxCNT_H bits
const (
	timerCascade = 1 << 2
	timerIRQ     = 1 << 6
	timerEnable  = 1 << 7
)

type timerState struct {
	reload  uint16
	counter uint16
	control uint16
	sub     int // Cycles accumulated toward the next tick
}

func (t *timerState) setControl(v uint16) {
	if t.control&timerEnable == 0 && v&timerEnable != 0 {
		t.counter = t.reload
		t.sub = 0
	}
	t.control = v
}

// tick advances by n counter increments, returning the number of overflows
func (t *timerState) tick(n int) int {
	overflows := 0
	for n > 0 {
		toOverflow := 0x10000 - int(t.counter)
		if n < toOverflow {
			t.counter += uint16(n)
			break
		}
		n -= toOverflow
		t.counter = t.reload
		overflows++
	}
	return overflows
}

// stepTimers advances all enabled timers; caller holds mu
func (m *Machine) stepTimers(cycles int, fired *[irqCount]int) {
	cascaded := 0
	for i := range m.timers {
		t := &m.timers[i]
		if t.control&timerEnable == 0 {
			cascaded = 0
			continue
		}

		var overflows int
		if i > 0 && t.control&timerCascade != 0 {
			overflows = t.tick(cascaded)
		} else {
			div := Divider(t.control & 3).Cycles()
			t.sub += cycles
			ticks := t.sub / div
			t.sub %= div
			overflows = t.tick(ticks)
		}

		if overflows > 0 && t.control&timerIRQ != 0 {
			fired[IrqTimer0+Interrupt(i)] += overflows
		}
		cascaded = overflows
	}
}

// Timer is the handle to one hardware timer
type Timer struct {
	m     *Machine
	index int
}

func (t *Timer) cntl() uint32 { return IOStart + RegTM0CNTL + uint32(t.index)*4 }
func (t *Timer) cnth() uint32 { return t.cntl() + 2 }

func (t *Timer) setBits(mask uint16, on bool) *Timer {
	v := t.m.Read16(t.cnth())
	if on {
		v |= mask
	} else {
		v &^= mask
	}
	t.m.Write16(t.cnth(), v)
	return t
}

// SetDivider selects the prescaler
func (t *Timer) SetDivider(d Divider) *Timer {
	v := t.m.Read16(t.cnth())&^3 | uint16(d)
	t.m.Write16(t.cnth(), v)
	return t
}

// SetOverflowAmount makes the timer overflow every n ticks
func (t *Timer) SetOverflowAmount(n uint16) *Timer {
	t.m.Write16(t.cntl(), 0-n)
	return t
}

// SetEnabled starts or stops the timer; starting reloads the counter
func (t *Timer) SetEnabled(on bool) *Timer {
	return t.setBits(timerEnable, on)
}

// SetInterrupt raises the timer interrupt on each overflow
func (t *Timer) SetInterrupt(on bool) *Timer {
	return t.setBits(timerIRQ, on)
}

// SetCascade counts overflows of the previous timer instead of cycles
func (t *Timer) SetCascade(on bool) *Timer {
	return t.setBits(timerCascade, on)
}

// Value returns the current counter
func (t *Timer) Value() uint16 {
	return t.m.Read16(t.cntl())
}

// Interrupt returns the interrupt source this timer raises
func (t *Timer) Interrupt() Interrupt {
	return IrqTimer0 + Interrupt(t.index)
}

// Timers holds the two timers free for program use; 0 and 1 drive sound DMA
type Timers struct {
	Timer2 *Timer
	Timer3 *Timer
}
