package gba

import "encoding/binary"

// Video is the handle to display mode control and background setup
type Video struct {
	m *Machine
}

// Tiled0 switches to tiled mode 0 with objects enabled and one-dimensional object mapping
func (v *Video) Tiled0() *Tiled0 {
	v.m.Write16(IOStart+RegDISPCNT, dispcntObjMapping1D|dispcntOBJ)
	return &Tiled0{m: v.m}
}

// SetForcedBlank blanks the screen while held
func (v *Video) SetForcedBlank(on bool) {
	cur := v.m.Read16(IOStart + RegDISPCNT)
	if on {
		cur |= dispcntForceBlank
	} else {
		cur &^= dispcntForceBlank
	}
	v.m.Write16(IOStart+RegDISPCNT, cur)
}

// Tiled0 is mode 0: four regular tiled backgrounds
type Tiled0 struct {
	m *Machine
}

// SetBackgroundColor sets the backdrop, palette entry 0
func (t *Tiled0) SetBackgroundColor(c Color) {
	t.m.Write16(PaletteRAM, uint16(c))
}

// SetBackgroundPalette loads one 16-color background bank
func (t *Tiled0) SetBackgroundPalette(bank int, p *Palette16) {
	writePalette(t.m, PaletteRAM, bank, p)
}

// EnableBackground0 shows background 0
func (t *Tiled0) EnableBackground0(on bool) {
	cur := t.m.Read16(IOStart + RegDISPCNT)
	if on {
		cur |= dispcntBG0
	} else {
		cur &^= dispcntBG0
	}
	t.m.Write16(IOStart+RegDISPCNT, cur)
}

// Color is a BGR555 color
type Color uint16

// RGB15 packs 5-bit channels
func RGB15(r, g, b uint8) Color {
	return Color(uint16(r&31) | uint16(g&31)<<5 | uint16(b&31)<<10)
}

// RGB8 returns 8-bit channels, replicating the high bits into the low ones
func (c Color) RGB8() (r, g, b uint8) {
	expand := func(v uint16) uint8 {
		v &= 31
		return uint8(v<<3 | v>>2)
	}
	return expand(uint16(c)), expand(uint16(c) >> 5), expand(uint16(c) >> 10)
}

// Palette16 is one 16-color bank; entry 0 is transparent for objects
type Palette16 struct {
	Colors [16]Color
}

func writePalette(m *Machine, base uint32, bank int, p *Palette16) {
	addr := base + uint32(bank)*32
	for i, c := range p.Colors {
		m.Write16(addr+uint32(i)*2, uint16(c))
	}
}

// DisplayState is what a host needs from DISPCNT and palette RAM to scan out a frame
type DisplayState struct {
	ForcedBlank bool
	Objects     bool
	Backdrop    Color
}

// Display returns the current display state
func (m *Machine) Display() DisplayState {
	m.mu.Lock()
	defer m.mu.Unlock()
	cnt := m.io16(RegDISPCNT)
	return DisplayState{
		ForcedBlank: cnt&dispcntForceBlank != 0,
		Objects:     cnt&dispcntOBJ != 0,
		Backdrop:    Color(binary.LittleEndian.Uint16(m.palette[:])),
	}
}
