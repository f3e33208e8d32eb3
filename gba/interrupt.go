package gba

import "fmt"

// Interrupt identifies an interrupt source; the value is its IE/IF bit
type Interrupt uint8

const (
	IrqVBlank Interrupt = iota
	IrqHBlank
	IrqVCounter
	IrqTimer0
	IrqTimer1
	IrqTimer2
	IrqTimer3
	IrqSerial
	IrqDma0
	IrqDma1
	IrqDma2
	IrqDma3
	IrqKeypad
	IrqGamepak

	irqCount
)

func (i Interrupt) String() string {
	names := [...]string{
		"VBlank", "HBlank", "VCounter",
		"Timer0", "Timer1", "Timer2", "Timer3",
		"Serial", "Dma0", "Dma1", "Dma2", "Dma3",
		"Keypad", "Gamepak",
	}
	if int(i) < len(names) {
		return names[i]
	}
	return fmt.Sprintf("Interrupt(%d)", i)
}

// InterruptHandler is a registered handler; it stays armed until Remove
type InterruptHandler struct {
	m   *Machine
	irq Interrupt
	fn  func()
}

// AddInterruptHandler arms fn for irq and enables the source in IE and IME.
// fn runs in interrupt context: keep it short and touch shared state only through sync/atomic.
func AddInterruptHandler(m *Machine, irq Interrupt, fn func()) *InterruptHandler {
	if irq >= irqCount {
		panic(fmt.Sprintf("gba: invalid interrupt %d", irq))
	}
	h := &InterruptHandler{m: m, irq: irq, fn: fn}

	m.handlerMu.Lock()
	m.handlers[irq] = append(m.handlers[irq], h)
	m.handlerMu.Unlock()

	m.mu.Lock()
	m.setIO16(RegIE, m.io16(RegIE)|1<<irq)
	m.setIO16(RegIME, 1)
	m.mu.Unlock()
	return h
}

// Interrupt returns the source the handler is armed for
func (h *InterruptHandler) Interrupt() Interrupt {
	return h.irq
}

// Remove disarms the handler; the source stays enabled in IE
func (h *InterruptHandler) Remove() {
	m := h.m
	m.handlerMu.Lock()
	defer m.handlerMu.Unlock()
	list := m.handlers[h.irq]
	for i, other := range list {
		if other == h {
			m.handlers[h.irq] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}
