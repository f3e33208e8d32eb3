package gba

import "fmt"

// MgbaLevel is the severity carried in the debug port flags register
type MgbaLevel uint8

const (
	MgbaFatal MgbaLevel = iota
	MgbaError
	MgbaWarning
	MgbaInfo
	MgbaDebug
)

func (l MgbaLevel) String() string {
	switch l {
	case MgbaFatal:
		return "FATAL"
	case MgbaError:
		return "ERROR"
	case MgbaWarning:
		return "WARN"
	case MgbaInfo:
		return "INFO"
	case MgbaDebug:
		return "DEBUG"
	}
	return fmt.Sprintf("LEVEL(%d)", uint8(l))
}

// DebugLine is one message flushed through the emulator debug port
type DebugLine struct {
	Level MgbaLevel
	Text  string
}

// flushDebug emits the buffer up to its first NUL; caller holds mu
func (m *Machine) flushDebug(level MgbaLevel) DebugLine {
	n := 0
	for n < len(m.debugBuf) && m.debugBuf[n] != 0 {
		n++
	}
	line := DebugLine{Level: level, Text: string(m.debugBuf[:n])}
	clear(m.debugBuf[:])

	if len(m.debugLines) >= debugLineHistory {
		m.debugLines = append(m.debugLines[:0], m.debugLines[1:]...)
	}
	m.debugLines = append(m.debugLines, line)
	return line
}

// Mgba is a handle to an enabled emulator debug port
type Mgba struct {
	m   *Machine
	pos int
}

// NewMgba enables the debug port; ok is false when the emulator does not provide one
func NewMgba(m *Machine) (*Mgba, bool) {
	m.Write16(MgbaDebugEnable, mgbaEnableRequest)
	if m.Read16(MgbaDebugEnable) != mgbaEnableAck {
		return nil, false
	}
	return &Mgba{m: m}, true
}

// Print writes msg at level, splitting it across flushes when it exceeds the port buffer
func (g *Mgba) Print(msg string, level MgbaLevel) {
	for i := 0; i < len(msg); i++ {
		if g.pos == mgbaBufferLen-1 {
			g.flush(level)
		}
		g.m.Write8(MgbaDebugBuffer+uint32(g.pos), msg[i])
		g.pos++
	}
	g.flush(level)
}

func (g *Mgba) flush(level MgbaLevel) {
	g.m.Write8(MgbaDebugBuffer+uint32(g.pos), 0)
	g.m.Write16(MgbaDebugFlags, uint16(level)|mgbaFlagSend)
	g.pos = 0
}
