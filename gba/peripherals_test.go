package gba

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

func TestMgbaPrint(t *testing.T) {
	var sunk []DebugLine
	m := NewMachine(WithDebugSink(func(l DebugLine) { sunk = append(sunk, l) }))

	port, ok := NewMgba(m)
	if !ok {
		t.Fatalf("debug port not detected")
	}
	port.Print("hello", MgbaWarning)

	lines := m.DebugLines()
	if len(lines) != 1 || lines[0].Text != "hello" || lines[0].Level != MgbaWarning {
		t.Fatalf("Expected one WARN hello line, got %+v", lines)
	}
	if len(sunk) != 1 {
		t.Errorf("sink received %d lines", len(sunk))
	}
}

func TestMgbaLongLineSplits(t *testing.T) {
	m := NewMachine()
	port, _ := NewMgba(m)
	msg := strings.Repeat("x", 300)
	port.Print(msg, MgbaInfo)

	lines := m.DebugLines()
	if len(lines) != 2 {
		t.Fatalf("Expected 2 flushes, got %d", len(lines))
	}
	if len(lines[0].Text) != mgbaBufferLen-1 || lines[0].Text+lines[1].Text != msg {
		t.Errorf("split lost data: %d + %d bytes", len(lines[0].Text), len(lines[1].Text))
	}
}

func TestMgbaAbsent(t *testing.T) {
	m := NewMachine(WithDebugPort(false))
	if _, ok := NewMgba(m); ok {
		t.Errorf("port reported present")
	}
	// Writes to the flags register are ignored without the port
	m.Write16(MgbaDebugFlags, uint16(MgbaInfo)|mgbaFlagSend)
	if len(m.DebugLines()) != 0 {
		t.Errorf("line emitted without port")
	}
}

func TestDmaCopy(t *testing.T) {
	m := NewMachine()
	g := NewInEntry(m)

	for i := uint32(0); i < 8; i++ {
		m.Write16(EWRAMStart+i*2, uint16(0x100+i))
	}

	var fired atomic.Uint32
	AddInterruptHandler(m, IrqDma3, func() { fired.Add(1) })
	ch := g.Dma.Channel(3)
	ch.SetInterrupt(true)
	ch.Copy(PaletteRAM, EWRAMStart, 8)

	pal := m.Palette()
	for i := 0; i < 8; i++ {
		if pal[i] != uint16(0x100+i) {
			t.Errorf("entry %d: expected %#x, got %#x", i, 0x100+i, pal[i])
		}
	}
	if ch.Busy() {
		t.Errorf("channel still enabled after immediate transfer")
	}

	m.Step(1)
	if fired.Load() != 1 {
		t.Errorf("Expected DMA interrupt on next step, got %d", fired.Load())
	}
}

func TestDmaChannelRange(t *testing.T) {
	g := NewInEntry(NewMachine())
	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic for channel 4")
		}
	}()
	g.Dma.Channel(4)
}

func TestSaveAccess(t *testing.T) {
	m := NewMachine()
	g := NewInEntry(m)

	if _, err := g.Save.Access(); !errors.Is(err, ErrSaveUninitialized) {
		t.Fatalf("Expected ErrSaveUninitialized, got %v", err)
	}
	g.Save.InitSram()
	data, err := g.Save.Access()
	if err != nil {
		t.Fatalf("Access: %v", err)
	}

	if _, err := data.WriteAt([]byte("SAVE"), 100); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	buf := make([]byte, 4)
	if _, err := data.ReadAt(buf, 100); err != nil || string(buf) != "SAVE" {
		t.Errorf("ReadAt: %q, %v", buf, err)
	}
	if string(m.SaveData()[100:104]) != "SAVE" {
		t.Errorf("SRAM snapshot missing write")
	}

	if _, err := data.WriteAt([]byte("xx"), SRAMSize-1); !errors.Is(err, ErrSaveOutOfBounds) {
		t.Errorf("Expected ErrSaveOutOfBounds, got %v", err)
	}
	n, err := data.ReadAt(make([]byte, 4), SRAMSize-2)
	if n != 2 || err != io.EOF {
		t.Errorf("Expected 2, EOF; got %d, %v", n, err)
	}
}

func TestLoadSaveErasesTail(t *testing.T) {
	m := NewMachine()
	m.LoadSave([]byte{1, 2})
	sram := m.SaveData()
	if sram[0] != 1 || sram[1] != 2 || sram[2] != 0xFF {
		t.Errorf("unexpected SRAM head %v", sram[:3])
	}
}

func TestWindowAndBlendRegisters(t *testing.T) {
	m := NewMachine()
	g := NewInEntry(m)

	g.Display.Window.SetRect(Win0, Rect{X: 10, Y: 20, Width: 300, Height: 30})
	if h := m.Read16(IOStart + RegWIN0H); h != 10<<8|ScreenWidth {
		t.Errorf("WIN0H clamped wrong: %#x", h)
	}
	g.Display.Window.Enable(Win0, true)
	if m.Read16(IOStart+RegDISPCNT)&dispcntWin0 == 0 {
		t.Errorf("window 0 not enabled")
	}

	g.Display.Blend.SetMode(BlendAlpha, LayerOBJ, LayerBG0)
	g.Display.Blend.SetAlpha(20, 4)
	if g.Display.Blend.Mode() != BlendAlpha {
		t.Errorf("blend mode not stored")
	}
	if a := m.Read16(IOStart + RegBLDALPHA); a != 16|4<<8 {
		t.Errorf("BLDALPHA = %#x", a)
	}
}

func TestTiled0EnablesObjects(t *testing.T) {
	m := NewMachine()
	g := NewInEntry(m)
	bg := g.Display.Video.Tiled0()
	bg.SetBackgroundColor(RGB15(0, 0, 31))

	if m.Read16(IOStart+RegDISPCNT)&(dispcntOBJ|dispcntObjMapping1D) != dispcntOBJ|dispcntObjMapping1D {
		t.Errorf("objects not enabled")
	}
	if Color(m.Palette()[0]) != RGB15(0, 0, 31) {
		t.Errorf("backdrop not set")
	}
	r, g8, b := RGB15(31, 0, 16).RGB8()
	if r != 255 || g8 != 0 || b != 132 {
		t.Errorf("RGB8 = %d,%d,%d", r, g8, b)
	}
}

func TestSquareChannelPlays(t *testing.T) {
	m := NewMachine()
	g := NewInEntry(m)

	// Disabled unit ignores triggers
	g.Sound.Channel1().PlaySound(1750, Duty50, 12, 0)
	if m.Voices() != 0 {
		t.Fatalf("tone started with sound disabled")
	}

	g.Sound.Enable()
	g.Sound.Channel1().PlaySound(1750, Duty50, 12, 0)
	if m.Voices() != 1 {
		t.Fatalf("Expected 1 voice, got %d", m.Voices())
	}

	samples := make([][2]float64, 512)
	m.Audio().Stream(samples)
	nonZero := false
	for _, s := range samples {
		if s[0] != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Errorf("square channel produced silence")
	}

	g.Sound.Channel1().Stop()
	m.Audio().Stream(samples)
	m.Audio().Stream(samples)
	if m.Voices() != 0 {
		t.Errorf("Expected stopped tone to leave the mixer, got %d voices", m.Voices())
	}
}

func TestTimedSquareEnds(t *testing.T) {
	m := NewMachine()
	g := NewInEntry(m)
	g.Sound.Enable()
	g.Sound.Channel1().PlaySound(1024, Duty25, 15, 10*time.Millisecond)

	samples := make([][2]float64, m.SampleRate().N(50*time.Millisecond))
	m.Audio().Stream(samples)
	m.Audio().Stream(samples)
	if m.Voices() != 0 {
		t.Errorf("timed tone still mixing after its length")
	}
}

func TestMixerPlaysWav(t *testing.T) {
	format := beep.Format{SampleRate: 22050, NumChannels: 1, Precision: 2}
	f, err := os.CreateTemp(t.TempDir(), "*.wav")
	if err != nil {
		t.Fatal(err)
	}
	tone := beep.Take(format.SampleRate.N(20*time.Millisecond), &squareWave{sr: format.SampleRate, freq: 440, duty: 0.5})
	if err := wav.Encode(f, tone, format); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}

	data, err := LoadWav(f)
	f.Close()
	if err != nil {
		t.Fatalf("LoadWav: %v", err)
	}
	if d := data.Duration(); d < 0.019 || d > 0.021 {
		t.Errorf("Expected ~20ms, got %vs", d)
	}

	m := NewMachine()
	mixer := NewInEntry(m).Mixer.Mixer()
	if _, ok := mixer.PlaySound(SoundChannel{Data: data}); ok {
		t.Fatalf("disabled mixer accepted a sound")
	}
	mixer.Enable()
	id, ok := mixer.PlaySound(SoundChannel{Data: data, Volume: 0.5})
	if !ok || !mixer.Playing(id) {
		t.Fatalf("sound not playing")
	}

	samples := make([][2]float64, m.SampleRate().N(40*time.Millisecond))
	m.Audio().Stream(samples)
	m.Audio().Stream(samples)
	if mixer.Playing(id) {
		t.Errorf("sound still playing after its length")
	}

	loop, _ := mixer.PlaySound(SoundChannel{Data: data, Loop: true})
	m.Audio().Stream(samples)
	if !mixer.Playing(loop) {
		t.Errorf("looping sound ended")
	}
	mixer.Stop(loop)
	if mixer.Playing(loop) {
		t.Errorf("stopped sound reported playing")
	}
}
