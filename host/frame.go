package host

import (
	"image"
	"image/color"

	"github.com/lixenwraith/agb-ecs/gba"
)

const (
	tileBytes   = 32
	tilesInVram = gba.ObjVRAMLen / tileBytes
	objPalette  = 256 // First object entry in Palette()
)

// Bounds is the console screen rectangle
var Bounds = image.Rect(0, 0, gba.ScreenWidth, gba.ScreenHeight)

// NewFrame allocates a screen-sized image for Compose
func NewFrame() *image.RGBA {
	return image.NewRGBA(Bounds)
}

// Compose scans the machine's display out into dst: backdrop, then objects.
// Lower slots draw over higher ones at equal priority, as on hardware.
func Compose(m *gba.Machine, dst *image.RGBA) {
	state := m.Display()
	if state.ForcedBlank {
		fill(dst, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF})
		return
	}
	fill(dst, toRGBA(state.Backdrop))
	if !state.Objects {
		return
	}

	objs := m.Objects()
	tiles := m.ObjectTiles()
	pal := m.Palette()

	for p := gba.Priority(3); ; p-- {
		for i := len(objs) - 1; i >= 0; i-- {
			if objs[i].Visible && objs[i].Priority == p {
				drawObject(dst, &objs[i], tiles, &pal)
			}
		}
		if p == 0 {
			break
		}
	}
}

func drawObject(dst *image.RGBA, o *gba.ObjectAttributes, tiles []byte, pal *[gba.PaletteLen / 2]uint16) {
	w, h := o.Size.Dimensions()
	tilesWide := w / 8
	bank := objPalette + int(o.Palette)*16

	for py := 0; py < h; py++ {
		y := o.Y + py
		if y < 0 || y >= gba.ScreenHeight {
			continue
		}
		sy := py
		if o.VFlip {
			sy = h - 1 - py
		}
		for px := 0; px < w; px++ {
			x := o.X + px
			if x < 0 || x >= gba.ScreenWidth {
				continue
			}
			sx := px
			if o.HFlip {
				sx = w - 1 - px
			}

			tile := (int(o.Tile) + (sy/8)*tilesWide + sx/8) % tilesInVram
			b := tiles[tile*tileBytes+(sy%8)*4+(sx%8)/2]
			idx := b >> (uint(sx%2) * 4) & 0xF
			if idx == 0 {
				continue // Transparent
			}
			dst.SetRGBA(x, y, toRGBA(gba.Color(pal[bank+int(idx)])))
		}
	}
}

func fill(dst *image.RGBA, c color.RGBA) {
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}

func toRGBA(c gba.Color) color.RGBA {
	r, g, b := c.RGB8()
	return color.RGBA{r, g, b, 0xFF}
}
