package host

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/lixenwraith/agb-ecs/gba"
)

// Screenshot composes the current frame scaled up with nearest-neighbor sampling
func Screenshot(m *gba.Machine, scale int) *image.RGBA {
	frame := NewFrame()
	Compose(m, frame)
	if scale <= 1 {
		return frame
	}
	out := image.NewRGBA(image.Rect(0, 0, gba.ScreenWidth*scale, gba.ScreenHeight*scale))
	draw.NearestNeighbor.Scale(out, out.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	return out
}

// WriteScreenshot saves Screenshot as a PNG file
func WriteScreenshot(m *gba.Machine, path string, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create screenshot: %w", err)
	}
	if err := png.Encode(f, Screenshot(m, scale)); err != nil {
		f.Close()
		return fmt.Errorf("encode screenshot: %w", err)
	}
	return f.Close()
}
