package gba

import "fmt"

// DMAxCNT_H bits
const (
	dmaDestFixed  = 2 << 5
	dmaSrcFixed   = 2 << 7
	dmaWord       = 1 << 10
	dmaTimingMask = 3 << 12
	dmaIRQ        = 1 << 14
	dmaEnable     = 1 << 15
)

const dmaChannelStride = 12

// DmaController owns the four DMA channels
type DmaController struct {
	channels [4]*Dma
}

func newDmaController(m *Machine) *DmaController {
	c := &DmaController{}
	for i := range c.channels {
		c.channels[i] = &Dma{m: m, index: i}
	}
	return c
}

// Channel returns DMA channel n (0-3)
func (c *DmaController) Channel(n int) *Dma {
	if n < 0 || n >= len(c.channels) {
		panic(fmt.Sprintf("gba: dma channel %d out of range", n))
	}
	return c.channels[n]
}

// Dma is one DMA channel
type Dma struct {
	m     *Machine
	index int
}

func (d *Dma) base() uint32 {
	return IOStart + RegDMA0SAD + uint32(d.index)*dmaChannelStride
}

func (d *Dma) start(dst, src uint32, count int, control uint16) {
	if count <= 0 {
		return
	}
	base := d.base()
	control |= d.m.Read16(base+10) & dmaIRQ
	d.m.Write16(base, uint16(src))
	d.m.Write16(base+2, uint16(src>>16))
	d.m.Write16(base+4, uint16(dst))
	d.m.Write16(base+6, uint16(dst>>16))
	d.m.Write16(base+8, uint16(count))
	d.m.Write16(base+10, control|dmaEnable)
}

// Copy transfers count halfwords from src to dst immediately
func (d *Dma) Copy(dst, src uint32, count int) {
	d.start(dst, src, count, 0)
}

// Copy32 transfers count words from src to dst immediately
func (d *Dma) Copy32(dst, src uint32, count int) {
	d.start(dst, src, count, dmaWord)
}

// SetInterrupt raises the channel's interrupt when a transfer completes
func (d *Dma) SetInterrupt(on bool) {
	addr := d.base() + 10
	v := d.m.Read16(addr)
	if on {
		v |= dmaIRQ
	} else {
		v &^= dmaIRQ
	}
	d.m.Write16(addr, v&^dmaEnable)
}

// Busy reports whether the channel still has its enable bit set
func (d *Dma) Busy() bool {
	return d.m.Read16(d.base()+10)&dmaEnable != 0
}

// dmaControlWritten runs immediate transfers when a control register is enabled; caller holds mu
func (m *Machine) dmaControlWritten(off uint32) {
	rel := off - RegDMA0SAD
	ch := rel / dmaChannelStride
	if rel%dmaChannelStride != 10 {
		return
	}
	base := RegDMA0SAD + ch*dmaChannelStride
	control := m.io16(base + 10)
	if control&dmaEnable == 0 || control&dmaTimingMask != 0 {
		return
	}

	src := uint32(m.io16(base)) | uint32(m.io16(base+2))<<16
	dst := uint32(m.io16(base+4)) | uint32(m.io16(base+6))<<16
	count := int(m.io16(base + 8))
	if count == 0 {
		count = 0x4000
	}
	units := 1
	if control&dmaWord != 0 {
		units = 2
	}

	for i := 0; i < count*units; i++ {
		m.write16(dst, m.read16(src))
		if control&dmaSrcFixed == 0 {
			src += 2
		}
		if control&dmaDestFixed == 0 {
			dst += 2
		}
	}

	m.setIO16(base+10, control&^dmaEnable)
	if control&dmaIRQ != 0 {
		m.pending[IrqDma0+Interrupt(ch)]++
	}
}
