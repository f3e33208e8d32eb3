package gba

import (
	"errors"
	"fmt"
)

var (
	// ErrVramFull is returned when no contiguous run of object tiles is free
	ErrVramFull = errors.New("gba: object vram full")
	// ErrPaletteFull is returned when all 16 object palette banks are in use
	ErrPaletteFull = errors.New("gba: object palettes full")
	// ErrSpriteData is returned for sprites whose data does not match their size
	ErrSpriteData = errors.New("gba: sprite data size mismatch")
)

const (
	tileBytes4bpp  = 32
	objTileCount   = ObjVRAMLen / tileBytes4bpp
	objPaletteBase = PaletteRAM + 0x200
)

// Size is an object shape and size combination
type Size uint8

const (
	S8x8 Size = iota
	S16x16
	S32x32
	S64x64
	S16x8
	S32x8
	S32x16
	S64x32
	S8x16
	S8x32
	S16x32
	S32x64
)

var sizeDims = [...][2]int{
	S8x8: {8, 8}, S16x16: {16, 16}, S32x32: {32, 32}, S64x64: {64, 64},
	S16x8: {16, 8}, S32x8: {32, 8}, S32x16: {32, 16}, S64x32: {64, 32},
	S8x16: {8, 16}, S8x32: {8, 32}, S16x32: {16, 32}, S32x64: {32, 64},
}

// Dimensions returns width and height in pixels
func (s Size) Dimensions() (w, h int) {
	d := sizeDims[s]
	return d[0], d[1]
}

// Tiles returns the number of 8x8 tiles the size occupies
func (s Size) Tiles() int {
	w, h := s.Dimensions()
	return w * h / 64
}

// shapeSize returns the attr0 shape and attr1 size fields
func (s Size) shapeSize() (shape, size uint16) {
	return uint16(s) / 4, uint16(s) % 4
}

func sizeFromShape(shape, size uint16) Size {
	return Size(shape%3*4 + size%4)
}

func (s Size) String() string {
	w, h := s.Dimensions()
	return fmt.Sprintf("%dx%d", w, h)
}

// Sprite is static 4bpp image data with its palette
type Sprite struct {
	Data    []byte
	Size    Size
	Palette *Palette16
}

// NewSprite validates that data covers exactly the tiles of size
func NewSprite(data []byte, size Size, palette *Palette16) (*Sprite, error) {
	if len(data) != size.Tiles()*tileBytes4bpp {
		return nil, fmt.Errorf("%s needs %d bytes, got %d: %w", size, size.Tiles()*tileBytes4bpp, len(data), ErrSpriteData)
	}
	if palette == nil {
		palette = &Palette16{}
	}
	return &Sprite{Data: data, Size: size, Palette: palette}, nil
}

type spriteData struct {
	loader  *SpriteLoader
	sprite  *Sprite
	tile    int
	palette *paletteData
	refs    int
}

type paletteData struct {
	bank int
	refs int
}

// SpriteVram is a counted reference to a sprite resident in object VRAM.
// The zero value refers to nothing. Every Clone needs a matching Release.
type SpriteVram struct {
	d *spriteData
}

// Valid reports whether the handle refers to a loaded sprite
func (v SpriteVram) Valid() bool {
	return v.d != nil && v.d.refs > 0
}

// Clone adds a reference
func (v SpriteVram) Clone() SpriteVram {
	if v.d != nil {
		v.d.refs++
	}
	return v
}

// Release drops a reference; the tiles are freed with the last one
func (v SpriteVram) Release() {
	if v.d == nil || v.d.refs == 0 {
		return
	}
	v.d.refs--
	if v.d.refs == 0 {
		v.d.loader.free(v.d)
	}
}

// TileIndex returns the first object tile
func (v SpriteVram) TileIndex() uint16 {
	if v.d == nil {
		return 0
	}
	return uint16(v.d.tile)
}

// PaletteBank returns the object palette bank
func (v SpriteVram) PaletteBank() uint8 {
	if v.d == nil {
		return 0
	}
	return uint8(v.d.palette.bank)
}

// Size returns the sprite size
func (v SpriteVram) Size() Size {
	if v.d == nil {
		return S8x8
	}
	return v.d.sprite.Size
}

// SpriteLoader allocates object VRAM tiles and palette banks for sprites.
// A sprite loaded twice shares one allocation. Not safe for concurrent use.
type SpriteLoader struct {
	m        *Machine
	used     [objTileCount]bool
	sprites  map[*Sprite]*spriteData
	palettes map[*Palette16]*paletteData
	banks    [16]bool
}

func newSpriteLoader(m *Machine) *SpriteLoader {
	return &SpriteLoader{
		m:        m,
		sprites:  make(map[*Sprite]*spriteData),
		palettes: make(map[*Palette16]*paletteData),
	}
}

// GetVramSprite returns a handle to s in VRAM, loading it on first use
func (l *SpriteLoader) GetVramSprite(s *Sprite) (SpriteVram, error) {
	if d, ok := l.sprites[s]; ok {
		d.refs++
		return SpriteVram{d: d}, nil
	}
	if len(s.Data) != s.Size.Tiles()*tileBytes4bpp {
		return SpriteVram{}, ErrSpriteData
	}

	pal, err := l.loadPalette(s.Palette)
	if err != nil {
		return SpriteVram{}, err
	}

	tile, ok := l.allocTiles(s.Size.Tiles())
	if !ok {
		l.releasePalette(s.Palette, pal)
		return SpriteVram{}, fmt.Errorf("%d tiles for %s: %w", s.Size.Tiles(), s.Size, ErrVramFull)
	}
	l.m.writeBytes(ObjVRAM+uint32(tile)*tileBytes4bpp, s.Data)

	d := &spriteData{loader: l, sprite: s, tile: tile, palette: pal, refs: 1}
	l.sprites[s] = d
	return SpriteVram{d: d}, nil
}

// Loaded returns the number of distinct sprites resident in VRAM
func (l *SpriteLoader) Loaded() int {
	return len(l.sprites)
}

// FreeTiles returns the number of unallocated object tiles
func (l *SpriteLoader) FreeTiles() int {
	n := 0
	for _, u := range l.used {
		if !u {
			n++
		}
	}
	return n
}

// allocTiles finds the first run of n free tiles
func (l *SpriteLoader) allocTiles(n int) (int, bool) {
	run := 0
	for i, u := range l.used {
		if u {
			run = 0
			continue
		}
		run++
		if run == n {
			start := i - n + 1
			for j := start; j <= i; j++ {
				l.used[j] = true
			}
			return start, true
		}
	}
	return 0, false
}

func (l *SpriteLoader) loadPalette(p *Palette16) (*paletteData, error) {
	if pd, ok := l.palettes[p]; ok {
		pd.refs++
		return pd, nil
	}
	for bank, used := range l.banks {
		if !used {
			l.banks[bank] = true
			writePalette(l.m, objPaletteBase, bank, p)
			pd := &paletteData{bank: bank, refs: 1}
			l.palettes[p] = pd
			return pd, nil
		}
	}
	return nil, ErrPaletteFull
}

func (l *SpriteLoader) releasePalette(p *Palette16, pd *paletteData) {
	pd.refs--
	if pd.refs == 0 {
		l.banks[pd.bank] = false
		delete(l.palettes, p)
	}
}

func (l *SpriteLoader) free(d *spriteData) {
	for i := d.tile; i < d.tile+d.sprite.Size.Tiles(); i++ {
		l.used[i] = false
	}
	l.releasePalette(d.sprite.Palette, d.palette)
	delete(l.sprites, d.sprite)
}
