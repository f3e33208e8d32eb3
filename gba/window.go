package gba

// Window is the handle to the two rectangular windows and the outside region
type Window struct {
	m *Machine
}

// WinID selects a rectangular window
type WinID uint8

const (
	Win0 WinID = iota
	Win1
)

// Rect is a screen rectangle in pixels
type Rect struct {
	X, Y, Width, Height int
}

// Layer flags for window and blend control
const (
	LayerBG0 uint16 = 1 << iota
	LayerBG1
	LayerBG2
	LayerBG3
	LayerOBJ
	LayerBackdrop // Blend targets only
)

// WindowEffects enables color special effects inside a window region
const WindowEffects uint16 = 1 << 5

// SetRect positions a window; the rectangle is clamped to the screen
func (w *Window) SetRect(id WinID, r Rect) {
	clampX := func(v int) uint16 { return uint16(min(max(v, 0), ScreenWidth)) }
	clampY := func(v int) uint16 { return uint16(min(max(v, 0), ScreenHeight)) }

	h := clampX(r.X)<<8 | clampX(r.X+r.Width)
	v := clampY(r.Y)<<8 | clampY(r.Y+r.Height)
	w.m.Write16(IOStart+RegWIN0H+uint32(id)*2, h)
	w.m.Write16(IOStart+RegWIN0V+uint32(id)*2, v)
}

// SetLayers selects the layers visible inside a window
func (w *Window) SetLayers(id WinID, layers uint16) {
	cur := w.m.Read16(IOStart + RegWININ)
	shift := uint(id) * 8
	cur = cur&^(0x3F<<shift) | (layers&0x3F)<<shift
	w.m.Write16(IOStart+RegWININ, cur)
}

// SetOutsideLayers selects the layers visible outside every window
func (w *Window) SetOutsideLayers(layers uint16) {
	cur := w.m.Read16(IOStart + RegWINOUT)
	w.m.Write16(IOStart+RegWINOUT, cur&^0x3F|layers&0x3F)
}

// Enable turns a window on or off in DISPCNT
func (w *Window) Enable(id WinID, on bool) {
	bit := uint16(dispcntWin0)
	if id == Win1 {
		bit = dispcntWin1
	}
	cur := w.m.Read16(IOStart + RegDISPCNT)
	if on {
		cur |= bit
	} else {
		cur &^= bit
	}
	w.m.Write16(IOStart+RegDISPCNT, cur)
}
