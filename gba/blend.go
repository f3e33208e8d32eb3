package gba

// BlendMode is the color special effect
type BlendMode uint8

const (
	BlendOff BlendMode = iota
	BlendAlpha
	BlendBrighten
	BlendDarken
)

// Blend is the handle to the color special effects registers
type Blend struct {
	m *Machine
}

// SetMode selects the effect and its first and second target layers
func (b *Blend) SetMode(mode BlendMode, top, bottom uint16) {
	v := top&0x3F | uint16(mode)<<6 | (bottom&0x3F)<<8
	b.m.Write16(IOStart+RegBLDCNT, v)
}

// SetAlpha sets the alpha coefficients in sixteenths, clamped to 16
func (b *Blend) SetAlpha(top, bottom uint8) {
	b.m.Write16(IOStart+RegBLDALPHA, uint16(min(top, 16))|uint16(min(bottom, 16))<<8)
}

// SetFade sets the brighten/darken coefficient in sixteenths, clamped to 16
func (b *Blend) SetFade(y uint8) {
	b.m.Write16(IOStart+RegBLDY, uint16(min(y, 16)))
}

// Mode returns the configured effect
func (b *Blend) Mode() BlendMode {
	return BlendMode(b.m.Read16(IOStart+RegBLDCNT) >> 6 & 3)
}
