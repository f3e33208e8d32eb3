package gba

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// SOUNDCNT_X master enable, SOUND1CNT_X bits
const (
	soundMasterEnable = 1 << 7
	square1Restart    = 1 << 15
	square1Timed      = 1 << 14
)

// DutyCycle is the high fraction of the square wave
type DutyCycle uint8

const (
	Duty12 DutyCycle = iota // 12.5%
	Duty25
	Duty50
	Duty75
)

func (d DutyCycle) fraction() float64 {
	switch d {
	case Duty12:
		return 0.125
	case Duty25:
		return 0.25
	case Duty75:
		return 0.75
	default:
		return 0.5
	}
}

// Sound is the handle to the legacy DMG sound unit
type Sound struct {
	m *Machine
}

// Enable turns on the sound unit with both stereo sides at full volume for channel 1
func (s *Sound) Enable() {
	s.m.Write16(IOStart+RegSOUNDCNTX, soundMasterEnable)
	s.m.Write16(IOStart+RegSOUNDCNTL, 0x7|0x7<<4|1<<8|1<<12)
	s.m.Write16(IOStart+RegSOUNDCNTH, 2) // DMG at 100%
}

// Disable silences the unit and stops any playing tone
func (s *Sound) Disable() {
	s.m.Write16(IOStart+RegSOUNDCNTX, 0)
}

// Channel1 returns the square-wave channel with sweep
func (s *Sound) Channel1() *SquareChannel {
	return &SquareChannel{m: s.m}
}

// SquareChannel is DMG channel 1
type SquareChannel struct {
	m *Machine
}

// PlaySound starts a tone. rate is the 11-bit frequency value (131072/(2048-rate) Hz),
// volume 0-15, length zero for a continuous tone.
func (c *SquareChannel) PlaySound(rate uint16, duty DutyCycle, volume uint8, length time.Duration) {
	h := uint16(duty&3)<<6 | uint16(min(volume, 15))<<12
	x := rate&0x7FF | square1Restart
	if length > 0 {
		// Length counter counts (64-t) 256ths of a second
		t := 64 - int(length*256/time.Second)
		h |= uint16(min(max(t, 0), 63))
		x |= square1Timed
	}
	c.m.Write16(IOStart+RegSOUND1CNTH, h)
	c.m.Write16(IOStart+RegSOUND1CNTX, x)
}

// Stop silences channel 1
func (c *SquareChannel) Stop() {
	c.m.stopSquare1()
}

func (m *Machine) stopSquare1() {
	m.audio.mu.Lock()
	defer m.audio.mu.Unlock()
	if m.audio.square1 != nil {
		m.audio.square1.Streamer = nil
		m.audio.square1 = nil
	}
}

// Frequency returns the tone frequency for an 11-bit rate value
func Frequency(rate uint16) float64 {
	return 131072 / float64(2048-int(rate&0x7FF))
}

// triggerSquare1 starts channel 1 from its registers; caller holds mu
func (m *Machine) triggerSquare1() {
	if m.io16(RegSOUNDCNTX)&soundMasterEnable == 0 {
		return
	}
	h := m.io16(RegSOUND1CNTH)
	x := m.io16(RegSOUND1CNTX)

	volume := float64(h>>12) / 15
	var s beep.Streamer = &squareWave{
		sr:   m.sampleRate,
		freq: Frequency(x),
		duty: DutyCycle(h >> 6 & 3).fraction(),
	}
	if x&square1Timed != 0 {
		length := time.Duration(64-int(h&63)) * time.Second / 256
		s = beep.Take(m.sampleRate.N(length), s)
	}
	s = &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(volume), Silent: volume == 0}

	ctrl := &beep.Ctrl{Streamer: s}
	m.audio.mu.Lock()
	if m.audio.square1 != nil {
		m.audio.square1.Streamer = nil
	}
	m.audio.square1 = ctrl
	m.audio.mixer.Add(ctrl)
	m.audio.mu.Unlock()
}

// squareWave is a band-unlimited pulse generator at a fixed duty cycle
type squareWave struct {
	sr    beep.SampleRate
	freq  float64
	duty  float64
	phase float64
}

func (g *squareWave) Stream(samples [][2]float64) (int, bool) {
	step := g.freq / float64(g.sr)
	for i := range samples {
		v := -0.5
		if g.phase < g.duty {
			v = 0.5
		}
		samples[i][0], samples[i][1] = v, v
		g.phase += step
		if g.phase >= 1 {
			g.phase -= 1
		}
	}
	return len(samples), true
}

func (g *squareWave) Err() error {
	return nil
}
