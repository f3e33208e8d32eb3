package gba

import (
	"context"
	"encoding/binary"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
)

var (
	// ErrHalted is returned by frame drivers once the program has halted
	ErrHalted = errors.New("gba: program halted")
	// ErrPoweredOff is returned by frame drivers after PowerOff
	ErrPoweredOff = errors.New("gba: machine powered off")
)

// DefaultSampleRate is the rate of the machine's audio output
const DefaultSampleRate = beep.SampleRate(32768)

const debugLineHistory = 1024

// Machine is a cycle-stepped model of the console's memory-mapped hardware.
//
// Two goroutines touch a machine. The host goroutine ("interrupt context") calls
// Step/RunFrame, and every interrupt handler runs there. The program goroutine
// ("main context") talks to hardware through the bus and blocks in the VBlank wait.
type Machine struct {
	mu sync.Mutex

	io      [IOSize]byte
	palette [PaletteLen]byte
	vram    [VRAMSize]byte
	oam     [OAMSize]byte
	ewram   []byte
	sram    [SRAMSize]byte

	// KEYINPUT, active-low, read without the bus lock
	keys atomic.Uint32

	cycles     uint64
	frameCycle int
	frames     uint64
	timers     [4]timerState
	pending    [irqCount]int // Raised by the program side, dispatched on the next step

	handlerMu sync.RWMutex
	handlers  [irqCount][]*InterruptHandler

	// Frame scheduling between host and program
	sched      sync.Mutex
	schedCond  *sync.Cond
	waiters    int
	vblankSeen bool
	vblankOnce sync.Once
	halted     bool
	off        bool

	debugPort  bool
	debugOn    bool
	debugBuf   [mgbaBufferLen]byte
	debugLines []DebugLine
	debugSink  func(DebugLine)

	peripheralsTaken atomic.Bool

	sampleRate beep.SampleRate
	audio      *lockedMixer
}

// Option configures a Machine
type Option func(*Machine)

// WithDebugPort sets whether the emulator debug port answers; defaults to present
func WithDebugPort(present bool) Option {
	return func(m *Machine) { m.debugPort = present }
}

// WithDebugSink receives every line flushed through the debug port
func WithDebugSink(fn func(DebugLine)) Option {
	return func(m *Machine) { m.debugSink = fn }
}

// WithSampleRate sets the audio output rate
func WithSampleRate(sr beep.SampleRate) Option {
	return func(m *Machine) { m.sampleRate = sr }
}

// NewMachine powers on a machine with cleared memory and no buttons pressed
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		ewram:      make([]byte, EWRAMSize),
		debugPort:  true,
		sampleRate: DefaultSampleRate,
	}
	m.schedCond = sync.NewCond(&m.sched)
	m.keys.Store(keyMask)
	for _, opt := range opts {
		opt(m)
	}
	m.audio = newLockedMixer()

	for i := range m.sram {
		m.sram[i] = 0xFF
	}
	// OAM resets to all objects hidden
	for i := 0; i < OAMSize; i += 8 {
		binary.LittleEndian.PutUint16(m.oam[i:], attr0Disable)
	}
	return m
}

// SetKeys latches the pressed buttons into KEYINPUT; mask bits follow the Button values
func (m *Machine) SetKeys(pressed Button) {
	m.keys.Store(uint32(^uint16(pressed)) & keyMask)
}

// Keys returns the currently latched pressed buttons
func (m *Machine) Keys() Button {
	return Button(^m.keys.Load() & keyMask)
}

// Cycles returns the total number of cycles stepped since power on
func (m *Machine) Cycles() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles
}

// Frames returns the number of completed frames
func (m *Machine) Frames() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// SampleRate returns the audio output rate
func (m *Machine) SampleRate() beep.SampleRate {
	return m.sampleRate
}

// Audio returns the machine's mixed sound output; safe to stream from another goroutine
func (m *Machine) Audio() beep.Streamer {
	return m.audio
}

// Step advances the machine by n cycles, dispatching interrupts as they fire
func (m *Machine) Step(n int) {
	for n > 0 {
		m.mu.Lock()
		fired := m.pending
		m.pending = [irqCount]int{}
		chunk := m.cyclesToNextEvent()
		if chunk > n {
			chunk = n
		}
		m.stepTimers(chunk, &fired)

		before := m.frameCycle
		m.frameCycle += chunk
		m.cycles += uint64(chunk)
		if before < vblankStartCycle && m.frameCycle >= vblankStartCycle {
			if m.io16(RegDISPSTAT)&dispstatVBlankIRQ != 0 {
				fired[IrqVBlank]++
			}
		}
		if m.frameCycle >= CyclesPerFrame {
			m.frameCycle -= CyclesPerFrame
			m.frames++
		}
		dispatch := m.latchInterrupts(&fired)
		m.mu.Unlock()

		if dispatch {
			m.dispatch(&fired)
		}
		n -= chunk
	}
}

// RunFrame steps to the next frame boundary
func (m *Machine) RunFrame() {
	m.mu.Lock()
	remaining := CyclesPerFrame - m.frameCycle
	m.mu.Unlock()
	m.Step(remaining)
}

// RunFrameSync waits until the program is blocked waiting for VBlank, then runs one frame.
// Drives the machine in lockstep with the program so every frame sees exactly one update.
func (m *Machine) RunFrameSync(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		m.sched.Lock()
		m.schedCond.Broadcast()
		m.sched.Unlock()
	})
	defer stop()

	m.sched.Lock()
	// A signaled waiter that has not woken yet does not count as blocked
	for (m.waiters == 0 || m.vblankSeen) && !m.halted && !m.off && ctx.Err() == nil {
		m.schedCond.Wait()
	}
	halted, off := m.halted, m.off
	m.sched.Unlock()

	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case off:
		return ErrPoweredOff
	case halted:
		return ErrHalted
	}
	m.RunFrame()
	return nil
}

// Halted reports whether the program has entered its final halt
func (m *Machine) Halted() bool {
	m.sched.Lock()
	defer m.sched.Unlock()
	return m.halted
}

// PowerOff releases a program blocked in the VBlank wait or halt; its goroutine exits
func (m *Machine) PowerOff() {
	m.sched.Lock()
	m.off = true
	m.schedCond.Broadcast()
	m.sched.Unlock()
}

// Halt parks the calling program goroutine for good.
// The goroutine exits when the machine is powered off; Halt never returns.
func Halt(m *Machine) {
	m.sched.Lock()
	m.halted = true
	m.schedCond.Broadcast()
	for !m.off {
		m.schedCond.Wait()
	}
	m.sched.Unlock()
	runtime.Goexit()
}

// Read16 reads a halfword from the bus
func (m *Machine) Read16(addr uint32) uint16 {
	if addr == IOStart+RegKEYINPUT {
		return uint16(m.keys.Load())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read16(addr &^ 1)
}

// Write16 writes a halfword to the bus
func (m *Machine) Write16(addr uint32, v uint16) {
	m.mu.Lock()
	line, flushed := m.write16(addr&^1, v)
	m.mu.Unlock()
	if flushed && m.debugSink != nil {
		m.debugSink(line)
	}
}

// Read8 reads a byte from the bus
func (m *Machine) Read8(addr uint32) byte {
	if region, off, ok := m.byteRegion(addr); ok {
		m.mu.Lock()
		defer m.mu.Unlock()
		return region[off]
	}
	v := m.Read16(addr &^ 1)
	return byte(v >> (8 * (addr & 1)))
}

// Write8 writes a byte to the bus
func (m *Machine) Write8(addr uint32, v byte) {
	if region, off, ok := m.byteRegion(addr); ok {
		m.mu.Lock()
		region[off] = v
		m.mu.Unlock()
		return
	}
	m.mu.Lock()
	cur := m.read16(addr &^ 1)
	m.mu.Unlock()
	shift := 8 * (addr & 1)
	m.Write16(addr&^1, cur&^(0xFF<<shift)|uint16(v)<<shift)
}

// byteRegion maps byte-addressable memory; everything else goes through the halfword path
func (m *Machine) byteRegion(addr uint32) ([]byte, uint32, bool) {
	switch {
	case addr >= SRAMStart && addr < SRAMStart+SRAMSize:
		return m.sram[:], addr - SRAMStart, true
	case addr >= MgbaDebugBuffer && addr < MgbaDebugBuffer+mgbaBufferLen:
		return m.debugBuf[:], addr - MgbaDebugBuffer, true
	case addr >= EWRAMStart && addr < EWRAMStart+EWRAMSize:
		return m.ewram, addr - EWRAMStart, true
	}
	return nil, 0, false
}

// memRegion maps plain RAM regions; caller holds mu
func (m *Machine) memRegion(addr uint32) ([]byte, uint32, bool) {
	switch {
	case addr >= EWRAMStart && addr < EWRAMStart+EWRAMSize:
		return m.ewram, addr - EWRAMStart, true
	case addr >= PaletteRAM && addr < PaletteRAM+PaletteLen:
		return m.palette[:], addr - PaletteRAM, true
	case addr >= VRAMStart && addr < VRAMStart+VRAMSize:
		return m.vram[:], addr - VRAMStart, true
	case addr >= OAMStart && addr < OAMStart+OAMSize:
		return m.oam[:], addr - OAMStart, true
	case addr >= SRAMStart && addr < SRAMStart+SRAMSize:
		return m.sram[:], addr - SRAMStart, true
	case addr >= MgbaDebugBuffer && addr < MgbaDebugBuffer+mgbaBufferLen:
		return m.debugBuf[:], addr - MgbaDebugBuffer, true
	}
	return nil, 0, false
}

func (m *Machine) read16(addr uint32) uint16 {
	if addr >= IOStart && addr < IOStart+IOSize {
		return m.ioRead16(addr - IOStart)
	}
	if addr == MgbaDebugEnable {
		if m.debugOn {
			return mgbaEnableAck
		}
		return 0
	}
	if region, off, ok := m.memRegion(addr); ok && int(off)+1 < len(region) {
		return binary.LittleEndian.Uint16(region[off:])
	}
	return 0
}

func (m *Machine) write16(addr uint32, v uint16) (DebugLine, bool) {
	switch {
	case addr >= IOStart && addr < IOStart+IOSize:
		m.ioWrite16(addr-IOStart, v)
	case addr == MgbaDebugEnable:
		m.debugOn = m.debugPort && v == mgbaEnableRequest
	case addr == MgbaDebugFlags:
		if m.debugOn && v&mgbaFlagSend != 0 {
			return m.flushDebug(MgbaLevel(v & 0x7)), true
		}
	default:
		if region, off, ok := m.memRegion(addr); ok && int(off)+1 < len(region) {
			binary.LittleEndian.PutUint16(region[off:], v)
		}
	}
	return DebugLine{}, false
}

func (m *Machine) io16(off uint32) uint16 {
	return binary.LittleEndian.Uint16(m.io[off:])
}

func (m *Machine) setIO16(off uint32, v uint16) {
	binary.LittleEndian.PutUint16(m.io[off:], v)
}

func (m *Machine) ioRead16(off uint32) uint16 {
	switch {
	case off == RegKEYINPUT:
		return uint16(m.keys.Load())
	case off == RegVCOUNT:
		return uint16(m.frameCycle / CyclesPerScanline)
	case off == RegDISPSTAT:
		v := m.io16(off) &^ (dispstatVBlank | dispstatHBlank)
		if m.frameCycle >= vblankStartCycle {
			v |= dispstatVBlank
		}
		if m.frameCycle%CyclesPerScanline >= ScreenWidth*4 {
			v |= dispstatHBlank
		}
		return v
	case off >= RegTM0CNTL && off < RegTM0CNTL+16 && (off-RegTM0CNTL)%4 == 0:
		return m.timers[(off-RegTM0CNTL)/4].counter
	}
	return m.io16(off)
}

func (m *Machine) ioWrite16(off uint32, v uint16) {
	switch {
	case off == RegKEYINPUT, off == RegVCOUNT:
		return
	case off == RegIF:
		// Writing 1 acknowledges
		m.setIO16(off, m.io16(off)&^v)
		return
	case off >= RegTM0CNTL && off < RegTM0CNTL+16:
		idx := (off - RegTM0CNTL) / 4
		if (off-RegTM0CNTL)%4 == 0 {
			m.timers[idx].reload = v
		} else {
			m.timers[idx].setControl(v)
		}
	case off >= RegDMA0SAD && off < RegDMA0SAD+48:
		m.setIO16(off, v)
		m.dmaControlWritten(off)
		return
	}
	m.setIO16(off, v)

	switch {
	case off == RegSOUND1CNTX && v&square1Restart != 0:
		m.triggerSquare1()
	case off == RegSOUNDCNTX && v&soundMasterEnable == 0:
		m.stopSquare1()
	}
}

// latchInterrupts records fired sources in IF and reports whether any should dispatch
func (m *Machine) latchInterrupts(fired *[irqCount]int) bool {
	var bits uint16
	for irq, n := range fired {
		if n > 0 {
			bits |= 1 << irq
		}
	}
	if bits == 0 {
		return false
	}
	m.setIO16(RegIF, m.io16(RegIF)|bits)

	enabled := m.io16(RegIE)
	if m.io16(RegIME)&1 == 0 {
		enabled = 0
	}
	for irq := range fired {
		if enabled&(1<<irq) == 0 {
			fired[irq] = 0
		}
	}
	return enabled&bits != 0
}

func (m *Machine) dispatch(fired *[irqCount]int) {
	var ack uint16
	for irq, n := range fired {
		if n == 0 {
			continue
		}
		m.handlerMu.RLock()
		hs := append([]*InterruptHandler(nil), m.handlers[irq]...)
		m.handlerMu.RUnlock()
		for i := 0; i < n; i++ {
			for _, h := range hs {
				h.fn()
			}
		}
		ack |= 1 << irq
	}

	m.mu.Lock()
	m.setIO16(RegIF, m.io16(RegIF)&^ack)
	m.mu.Unlock()
}

// cyclesToNextEvent bounds a step so VBlank and frame wrap are observed exactly
func (m *Machine) cyclesToNextEvent() int {
	if m.frameCycle < vblankStartCycle {
		return vblankStartCycle - m.frameCycle
	}
	return CyclesPerFrame - m.frameCycle
}

// DebugLines returns the retained lines flushed through the debug port, oldest first
func (m *Machine) DebugLines() []DebugLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DebugLine, len(m.debugLines))
	copy(out, m.debugLines)
	return out
}

// Palette returns a copy of palette RAM as BGR555 entries; 0-255 background, 256-511 objects
func (m *Machine) Palette() [PaletteLen / 2]uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [PaletteLen / 2]uint16
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(m.palette[i*2:])
	}
	return out
}

// ObjectTiles returns a copy of object tile VRAM
func (m *Machine) ObjectTiles() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, ObjVRAMLen)
	copy(out, m.vram[ObjVRAM-VRAMStart:])
	return out
}

// SaveData returns a copy of cartridge SRAM
func (m *Machine) SaveData() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, SRAMSize)
	copy(out, m.sram[:])
	return out
}

// LoadSave replaces cartridge SRAM; shorter input leaves the tail erased (0xFF)
func (m *Machine) LoadSave(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := copy(m.sram[:], data)
	for i := n; i < SRAMSize; i++ {
		m.sram[i] = 0xFF
	}
}

// writeBytes copies data onto the bus in one locked pass
func (m *Machine) writeBytes(addr uint32, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	region, off, ok := m.memRegion(addr)
	if !ok {
		return
	}
	copy(region[off:], data)
}
