package gba

import (
	"encoding/binary"
	"sync"

	"github.com/lixenwraith/agb-ecs/vmath"
)

// OAMSlots is the number of object attribute entries
const OAMSlots = 128

// Object attribute bits
const (
	attr0Disable = 2 << 8
	attr1HFlip   = 1 << 12
	attr1VFlip   = 1 << 13
)

// Priority orders objects against backgrounds; 0 is frontmost
type Priority uint8

// ObjectController owns object attribute memory
type ObjectController struct {
	m      *Machine
	once   sync.Once
	oam    *OamUnmanaged
	loader *SpriteLoader
}

// GetUnmanaged returns the OAM cursor and the sprite loader; repeated calls return the same pair
func (c *ObjectController) GetUnmanaged() (*OamUnmanaged, *SpriteLoader) {
	c.once.Do(func() {
		c.oam = &OamUnmanaged{m: c.m}
		c.loader = newSpriteLoader(c.m)
	})
	return c.oam, c.loader
}

// OamUnmanaged writes objects straight into OAM, one pass per frame
type OamUnmanaged struct {
	m        *Machine
	retained [OAMSlots]SpriteVram
	written  [OAMSlots]bool
	current  *OamIterator
}

// Iter starts a new pass over the slots, closing any pass still open
func (o *OamUnmanaged) Iter() *OamIterator {
	if o.current != nil {
		o.current.Close()
	}
	o.written = [OAMSlots]bool{}
	it := &OamIterator{oam: o}
	o.current = it
	return it
}

// OamIterator hands out each slot once; it never rewinds
type OamIterator struct {
	oam    *OamUnmanaged
	next   int
	closed bool
}

// Next returns the following slot; ok is false once all slots were handed out
func (it *OamIterator) Next() (*OamSlot, bool) {
	if it.closed || it.next >= OAMSlots {
		return nil, false
	}
	slot := &OamSlot{oam: it.oam, index: it.next}
	it.next++
	return slot, true
}

// Close ends the pass: every slot the pass did not set is hidden and releases its sprite
func (it *OamIterator) Close() {
	if it.closed {
		return
	}
	it.closed = true
	o := it.oam
	if o.current == it {
		o.current = nil
	}
	for i := 0; i < OAMSlots; i++ {
		if o.written[i] {
			continue
		}
		o.m.Write16(OAMStart+uint32(i)*8, attr0Disable)
		o.retained[i].Release()
		o.retained[i] = SpriteVram{}
	}
}

// OamSlot is one entry of the table
type OamSlot struct {
	oam   *OamUnmanaged
	index int
}

// Index returns the slot number
func (s *OamSlot) Index() int {
	return s.index
}

// Set writes obj into the slot and moves its sprite reference into the slot.
// The reference the slot held before is released; obj must not be reused.
func (s *OamSlot) Set(obj *ObjectUnmanaged) {
	o := s.oam
	a0, a1, a2 := obj.Attributes()
	base := OAMStart + uint32(s.index)*8
	o.m.Write16(base, a0)
	o.m.Write16(base+2, a1)
	o.m.Write16(base+4, a2)

	o.retained[s.index].Release()
	o.retained[s.index] = obj.sprite
	obj.sprite = SpriteVram{}
	o.written[s.index] = true
}

// ObjectUnmanaged is the staged state of one object
type ObjectUnmanaged struct {
	sprite   SpriteVram
	visible  bool
	pos      vmath.Vector2D
	hflip    bool
	vflip    bool
	priority Priority
}

// NewObjectUnmanaged creates a hidden object holding sprite; it takes over that reference
func NewObjectUnmanaged(sprite SpriteVram) *ObjectUnmanaged {
	return &ObjectUnmanaged{sprite: sprite}
}

func (o *ObjectUnmanaged) Show() *ObjectUnmanaged {
	o.visible = true
	return o
}

func (o *ObjectUnmanaged) Hide() *ObjectUnmanaged {
	o.visible = false
	return o
}

// SetPosition places the top-left corner; coordinates wrap at the hardware field widths
func (o *ObjectUnmanaged) SetPosition(p vmath.Vector2D) *ObjectUnmanaged {
	o.pos = p
	return o
}

func (o *ObjectUnmanaged) SetHFlip(on bool) *ObjectUnmanaged {
	o.hflip = on
	return o
}

func (o *ObjectUnmanaged) SetVFlip(on bool) *ObjectUnmanaged {
	o.vflip = on
	return o
}

func (o *ObjectUnmanaged) SetPriority(p Priority) *ObjectUnmanaged {
	o.priority = p & 3
	return o
}

// Release drops the sprite reference of an object that was never placed in a slot
func (o *ObjectUnmanaged) Release() {
	o.sprite.Release()
	o.sprite = SpriteVram{}
}

// Attributes encodes the object into attr0-2
func (o *ObjectUnmanaged) Attributes() (a0, a1, a2 uint16) {
	shape, size := o.sprite.Size().shapeSize()

	a0 = uint16(o.pos.Y)&0xFF | shape<<14
	if !o.visible {
		a0 |= attr0Disable
	}
	a1 = uint16(o.pos.X)&0x1FF | size<<14
	if o.hflip {
		a1 |= attr1HFlip
	}
	if o.vflip {
		a1 |= attr1VFlip
	}
	a2 = o.sprite.TileIndex()&0x3FF | uint16(o.priority)<<10 | uint16(o.sprite.PaletteBank())<<12
	return a0, a1, a2
}

// ObjectAttributes is a decoded OAM entry
type ObjectAttributes struct {
	Visible  bool
	X, Y     int
	HFlip    bool
	VFlip    bool
	Size     Size
	Tile     uint16
	Palette  uint8
	Priority Priority
}

// DecodeObject unpacks raw attributes. X is sign-extended from 9 bits; Y values
// at or past the bottom of the screen wrap to negative, as the hardware draws them.
func DecodeObject(a0, a1, a2 uint16) ObjectAttributes {
	x := int(a1 & 0x1FF)
	if x >= 256 {
		x -= 512
	}
	y := int(a0 & 0xFF)
	if y >= ScreenHeight {
		y -= 256
	}
	return ObjectAttributes{
		Visible:  a0&(3<<8) != attr0Disable,
		X:        x,
		Y:        y,
		HFlip:    a1&attr1HFlip != 0,
		VFlip:    a1&attr1VFlip != 0,
		Size:     sizeFromShape(a0>>14, a1>>14),
		Tile:     a2 & 0x3FF,
		Palette:  uint8(a2 >> 12),
		Priority: Priority(a2 >> 10 & 3),
	}
}

// Objects decodes all OAM entries
func (m *Machine) Objects() [OAMSlots]ObjectAttributes {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [OAMSlots]ObjectAttributes
	for i := range out {
		b := m.oam[i*8:]
		out[i] = DecodeObject(
			binary.LittleEndian.Uint16(b),
			binary.LittleEndian.Uint16(b[2:]),
			binary.LittleEndian.Uint16(b[4:]),
		)
	}
	return out
}
