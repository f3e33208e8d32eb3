package main

import (
	"github.com/lixenwraith/agb-ecs/gba"
)

var demoPalette = &gba.Palette16{Colors: [16]gba.Color{
	1: gba.RGB15(31, 31, 31),
	2: gba.RGB15(4, 24, 28),
	3: gba.RGB15(31, 26, 4),
}}

// paint renders a 4bpp sprite in one-dimensional tile order
func paint(size gba.Size, px func(x, y int) uint8) []byte {
	w, h := size.Dimensions()
	data := make([]byte, size.Tiles()*32)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := px(x, y) & 0xF
			tile := (y/8)*(w/8) + x/8
			i := tile*32 + (y%8)*4 + (x%8)/2
			if x%2 == 0 {
				data[i] |= c
			} else {
				data[i] |= c << 4
			}
		}
	}
	return data
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// shipSprite is a 16x16 outlined diamond
func shipSprite() *gba.Sprite {
	data := paint(gba.S16x16, func(x, y int) uint8 {
		d := abs(2*x-15) + abs(2*y-15)
		switch {
		case d > 14:
			return 0
		case d > 10:
			return 1
		}
		return 2
	})
	s, err := gba.NewSprite(data, gba.S16x16, demoPalette)
	if err != nil {
		panic(err)
	}
	return s
}

// satelliteSprite is an 8x8 disc
func satelliteSprite() *gba.Sprite {
	data := paint(gba.S8x8, func(x, y int) uint8 {
		dx, dy := 2*x-7, 2*y-7
		if dx*dx+dy*dy <= 49 {
			return 3
		}
		return 0
	})
	s, err := gba.NewSprite(data, gba.S8x8, demoPalette)
	if err != nil {
		panic(err)
	}
	return s
}
