package gba

import "testing"

func TestDisplayState(t *testing.T) {
	m := NewMachine()
	g := NewInEntry(m)

	g.Display.Video.Tiled0().SetBackgroundColor(RGB15(31, 0, 0))
	d := m.Display()
	if d.ForcedBlank || !d.Objects {
		t.Errorf("Expected objects on and no blank after Tiled0, got %+v", d)
	}
	if d.Backdrop != RGB15(31, 0, 0) {
		t.Errorf("Expected red backdrop, got %#x", d.Backdrop)
	}

	g.Display.Video.SetForcedBlank(true)
	if !m.Display().ForcedBlank {
		t.Error("forced blank not reported")
	}
	g.Display.Video.SetForcedBlank(false)
	if m.Display().ForcedBlank {
		t.Error("forced blank still reported after release")
	}
}

func TestColorRGB8(t *testing.T) {
	r, g, b := RGB15(31, 16, 0).RGB8()
	if r != 255 || g < 128 || g > 135 || b != 0 {
		t.Errorf("Expected (255,~132,0), got (%d,%d,%d)", r, g, b)
	}
}
