package gba

import (
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"
)

// lockedMixer is the machine's audio output, shared between the program and the audio host
type lockedMixer struct {
	mu      sync.Mutex
	mixer   beep.Mixer
	square1 *beep.Ctrl
}

func newLockedMixer() *lockedMixer {
	return &lockedMixer{}
}

func (l *lockedMixer) Stream(samples [][2]float64) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mixer.Stream(samples)
}

func (l *lockedMixer) Err() error {
	return nil
}

// Voices returns the number of streams currently mixed
func (l *lockedMixer) Voices() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mixer.Len()
}

// Voices returns the number of sounds the machine is currently mixing
func (m *Machine) Voices() int {
	return m.audio.Voices()
}

// MixerController hands out the software mixer
type MixerController struct {
	m     *Machine
	mixer *Mixer
}

// Mixer returns the software mixer, creating it on first use
func (c *MixerController) Mixer() *Mixer {
	if c.mixer == nil {
		c.mixer = &Mixer{m: c.m, channels: make(map[ChannelID]*mixerChannel)}
	}
	return c.mixer
}

// SoundData is a decoded sample held in memory at its native rate
type SoundData struct {
	buffer *beep.Buffer
	format beep.Format
}

// LoadWav decodes a WAV stream fully into memory
func LoadWav(r io.Reader) (*SoundData, error) {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return &SoundData{buffer: buffer, format: format}, nil
}

// Duration returns the sample length
func (d *SoundData) Duration() float64 {
	return d.format.SampleRate.D(d.buffer.Len()).Seconds()
}

// ChannelID identifies a playing mixer channel
type ChannelID uint32

// SoundChannel describes how to play a SoundData
type SoundChannel struct {
	Data   *SoundData
	Volume float64 // 0..1, zero means full
	Loop   bool
}

type mixerChannel struct {
	ctrl *beep.Ctrl
	done atomic.Bool
}

// Mixer plays decoded samples through the machine's audio output
type Mixer struct {
	m        *Machine
	enabled  bool
	next     ChannelID
	channels map[ChannelID]*mixerChannel
}

// Enable starts accepting sounds
func (mx *Mixer) Enable() {
	mx.enabled = true
}

// PlaySound starts a channel; ok is false while the mixer is disabled
func (mx *Mixer) PlaySound(ch SoundChannel) (ChannelID, bool) {
	if !mx.enabled || ch.Data == nil || ch.Data.buffer.Len() == 0 {
		return 0, false
	}

	data := ch.Data
	var s beep.Streamer = data.buffer.Streamer(0, data.buffer.Len())
	if ch.Loop {
		s = beep.Loop(-1, data.buffer.Streamer(0, data.buffer.Len()))
	}
	if data.format.SampleRate != mx.m.sampleRate {
		s = beep.Resample(4, data.format.SampleRate, mx.m.sampleRate, s)
	}
	if ch.Volume > 0 && ch.Volume < 1 {
		s = &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(ch.Volume)}
	}

	mx.next++
	id := mx.next
	c := &mixerChannel{}
	c.ctrl = &beep.Ctrl{Streamer: beep.Seq(s, beep.Callback(func() { c.done.Store(true) }))}
	mx.channels[id] = c

	out := mx.m.audio
	out.mu.Lock()
	out.mixer.Add(c.ctrl)
	out.mu.Unlock()
	return id, true
}

// Stop ends a channel; unknown IDs are ignored
func (mx *Mixer) Stop(id ChannelID) {
	c, ok := mx.channels[id]
	if !ok {
		return
	}
	delete(mx.channels, id)

	out := mx.m.audio
	out.mu.Lock()
	c.ctrl.Streamer = nil
	out.mu.Unlock()
}

// Playing reports whether a channel is still producing samples
func (mx *Mixer) Playing(id ChannelID) bool {
	c, ok := mx.channels[id]
	if !ok {
		return false
	}
	if c.done.Load() {
		delete(mx.channels, id)
		return false
	}
	return true
}
