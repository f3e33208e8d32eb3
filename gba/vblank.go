package gba

import "runtime"

// VBlank waits for the vertical blank interrupt
type VBlank struct {
	m *Machine
}

// VBlankGet arms the VBlank interrupt on first use and returns a waiter
func VBlankGet(m *Machine) VBlank {
	m.vblankOnce.Do(func() {
		m.mu.Lock()
		m.setIO16(RegDISPSTAT, m.io16(RegDISPSTAT)|dispstatVBlankIRQ)
		m.mu.Unlock()

		AddInterruptHandler(m, IrqVBlank, func() {
			m.sched.Lock()
			m.vblankSeen = true
			m.schedCond.Broadcast()
			m.sched.Unlock()
		})
	})
	return VBlank{m: m}
}

// WaitForVBlank returns at once if a VBlank happened since the previous wait,
// otherwise blocks until the next one. A late caller therefore drops a frame
// rather than catching up.
//
// If the machine is powered off while waiting, the calling goroutine exits.
func (v VBlank) WaitForVBlank() {
	m := v.m
	m.sched.Lock()
	if m.vblankSeen {
		m.vblankSeen = false
		m.sched.Unlock()
		return
	}

	m.waiters++
	m.schedCond.Broadcast()
	for !m.vblankSeen && !m.off {
		m.schedCond.Wait()
	}
	m.waiters--
	m.vblankSeen = false
	off := m.off
	m.sched.Unlock()

	if off {
		runtime.Goexit()
	}
}

// Missed reports whether a VBlank already happened since the previous wait,
// meaning the next wait will not block
func (v VBlank) Missed() bool {
	v.m.sched.Lock()
	defer v.m.sched.Unlock()
	return v.m.vblankSeen
}

// Waiting reports whether the program is blocked in WaitForVBlank
func (m *Machine) Waiting() bool {
	m.sched.Lock()
	defer m.sched.Unlock()
	return m.waiters > 0
}
