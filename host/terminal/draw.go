package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/agb-ecs/gba"
	"github.com/lixenwraith/agb-ecs/host"
)

// upperHalf shows the top pixel as foreground and the bottom one as background
const upperHalf = '▀'

// sampleStep returns the pixel stride that fits the display into cols x rows
// cells, two pixel rows per cell
func sampleStep(cols, rows int) int {
	step := 1
	for gba.ScreenWidth/step > cols || gba.ScreenHeight/(2*step) > rows {
		step++
	}
	return step
}

// Draw composes the display and the status line
func (s *Service) Draw() {
	host.Compose(s.m, s.frame)

	cols, rows := s.screen.Size()
	screenRows := rows
	if s.reg != nil {
		screenRows-- // Status line
	}
	if cols <= 0 || screenRows <= 0 {
		return
	}

	s.screen.Clear()
	step := sampleStep(cols, screenRows)
	for cy := 0; cy*2*step < gba.ScreenHeight; cy++ {
		for cx := 0; cx*step < gba.ScreenWidth; cx++ {
			top := s.frame.RGBAAt(cx*step, cy*2*step)
			bottom := s.frame.RGBAAt(cx*step, (cy*2+1)*step)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			s.screen.SetContent(cx, cy, upperHalf, nil, style)
		}
	}

	if s.reg != nil {
		line := s.reg.Line()
		for i, r := range []rune(line) {
			if i >= cols {
				break
			}
			s.screen.SetContent(i, rows-1, r, nil, tcell.StyleDefault.Reverse(true))
		}
	}
	s.screen.Show()
}
