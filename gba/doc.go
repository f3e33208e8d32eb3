// Package gba is the console hardware abstraction: peripheral handles, interrupts,
// timers, the VBlank waiter, buttons, object attribute memory, sprite VRAM, the
// emulator debug port, DMA, save media and the two sound units.
//
// The handles talk to a Machine through its memory-mapped bus, the same way a
// build for the real console talks to volatile registers. The Machine in this
// package is cycle-stepped by a host, which lets programs run unmodified on a
// desktop or in tests.
package gba
