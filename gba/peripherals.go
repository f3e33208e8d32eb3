package gba

// Gba is the set of exclusive peripheral handles, available once per boot
type Gba struct {
	Display Display
	Sound   *Sound
	Mixer   *MixerController
	Save    *SaveManager
	Timers  Timers
	Dma     *DmaController
}

// Display groups the video-related handles
type Display struct {
	Video  *Video
	Object *ObjectController
	Window *Window
	Blend  *Blend
}

// NewInEntry takes the peripheral set. Handles are exclusive for the lifetime of
// the program, so a second call on the same machine panics.
func NewInEntry(m *Machine) *Gba {
	if !m.peripheralsTaken.CompareAndSwap(false, true) {
		panic("gba: peripherals already taken")
	}

	return &Gba{
		Display: Display{
			Video:  &Video{m: m},
			Object: &ObjectController{m: m},
			Window: &Window{m: m},
			Blend:  &Blend{m: m},
		},
		Sound: &Sound{m: m},
		Mixer: &MixerController{m: m},
		Save:  &SaveManager{m: m},
		Timers: Timers{
			Timer2: &Timer{m: m, index: 2},
			Timer3: &Timer{m: m, index: 3},
		},
		Dma: newDmaController(m),
	}
}
