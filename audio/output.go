package audio

import (
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// resampleQuality trades CPU for aliasing; 4 is beep's recommended default
const resampleQuality = 4

// output converts the machine stream to the device rate and applies volume and mute
type output struct {
	ctrl   *beep.Ctrl
	volume *effects.Volume
}

func newOutput(src beep.Streamer, from, to beep.SampleRate, volume float64) *output {
	var s beep.Streamer = src
	if from != to {
		s = beep.Resample(resampleQuality, from, to, src)
	}
	vol := &effects.Volume{Streamer: s, Base: 2}
	setLinear(vol, volume)
	return &output{
		ctrl:   &beep.Ctrl{Streamer: vol},
		volume: vol,
	}
}

// setLinear maps a 0-1 gain onto the volume effect's log scale
func setLinear(v *effects.Volume, gain float64) {
	if gain <= 0 {
		v.Silent = true
		return
	}
	v.Silent = false
	v.Volume = math.Log2(gain)
}
