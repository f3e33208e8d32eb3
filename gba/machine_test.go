package gba

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeyInputActiveLow(t *testing.T) {
	m := NewMachine()
	if got := m.Read16(IOStart + RegKEYINPUT); got != 0x3FF {
		t.Fatalf("Expected 0x3FF with nothing pressed, got %#x", got)
	}

	m.SetKeys(ButtonA | ButtonL)
	if got := m.Read16(IOStart + RegKEYINPUT); got != 0x3FF&^0x201 {
		t.Errorf("Expected A and L bits low, got %#x", got)
	}
	if m.Keys() != ButtonA|ButtonL {
		t.Errorf("Keys() = %v", m.Keys())
	}
}

func TestTimer2OverflowRate(t *testing.T) {
	m := NewMachine()
	g := NewInEntry(m)

	var ticks atomic.Uint32
	AddInterruptHandler(m, IrqTimer2, func() { ticks.Add(1) })
	g.Timers.Timer2.
		SetDivider(Divider1).
		SetOverflowAmount(0xFFFF).
		SetInterrupt(true).
		SetEnabled(true)

	// One second of machine time
	for i := 0; i < 60; i++ {
		m.RunFrame()
	}
	m.Step(CyclesPerSecond - 60*CyclesPerFrame)

	got := ticks.Load()
	if got < 255 || got > 257 {
		t.Errorf("Expected ~256 overflows per second, got %d", got)
	}
}

func TestTimerCascade(t *testing.T) {
	m := NewMachine()
	g := NewInEntry(m)

	var t3 atomic.Uint32
	AddInterruptHandler(m, IrqTimer3, func() { t3.Add(1) })
	g.Timers.Timer2.SetDivider(Divider1).SetOverflowAmount(100).SetEnabled(true)
	g.Timers.Timer3.SetCascade(true).SetOverflowAmount(10).SetInterrupt(true).SetEnabled(true)

	m.Step(100 * 10 * 3)
	if got := t3.Load(); got != 3 {
		t.Errorf("Expected 3 cascaded overflows, got %d", got)
	}
}

func TestInterruptNeedsIME(t *testing.T) {
	m := NewMachine()
	g := NewInEntry(m)

	var fired atomic.Uint32
	AddInterruptHandler(m, IrqTimer3, func() { fired.Add(1) })
	m.Write16(IOStart+RegIME, 0)
	g.Timers.Timer3.SetOverflowAmount(10).SetInterrupt(true).SetEnabled(true)

	m.Step(100)
	if fired.Load() != 0 {
		t.Fatalf("handler ran with IME clear")
	}
	if m.Read16(IOStart+RegIF)&(1<<IrqTimer3) == 0 {
		t.Errorf("IF not latched")
	}

	// Acknowledge by writing 1
	m.Write16(IOStart+RegIF, 1<<IrqTimer3)
	if m.Read16(IOStart+RegIF) != 0 {
		t.Errorf("IF not cleared by acknowledge")
	}
}

func TestRemoveInterruptHandler(t *testing.T) {
	m := NewMachine()
	var n atomic.Uint32
	h := AddInterruptHandler(m, IrqVBlank, func() { n.Add(1) })
	VBlankGet(m)

	m.RunFrame()
	h.Remove()
	m.RunFrame()
	if n.Load() != 1 {
		t.Errorf("Expected 1 call, got %d", n.Load())
	}
}

func TestVCountAndDispStat(t *testing.T) {
	m := NewMachine()
	m.Step(CyclesPerScanline*100 + 10)
	if got := m.Read16(IOStart + RegVCOUNT); got != 100 {
		t.Errorf("Expected VCOUNT 100, got %d", got)
	}
	if m.Read16(IOStart+RegDISPSTAT)&dispstatVBlank != 0 {
		t.Errorf("VBlank flag set during draw")
	}
	m.Step(CyclesPerScanline * 61)
	if m.Read16(IOStart+RegDISPSTAT)&dispstatVBlank == 0 {
		t.Errorf("VBlank flag clear during vblank")
	}
}

func TestFrameCounting(t *testing.T) {
	m := NewMachine()
	m.Step(CyclesPerFrame / 2)
	m.RunFrame()
	if m.Frames() != 1 {
		t.Errorf("Expected 1 frame after finishing a partial frame, got %d", m.Frames())
	}
	m.RunFrame()
	if m.Frames() != 2 || m.Cycles() != 2*CyclesPerFrame {
		t.Errorf("Expected 2 frames / %d cycles, got %d / %d", 2*CyclesPerFrame, m.Frames(), m.Cycles())
	}
}

func TestWaitForVBlankReturnsImmediatelyAfterMissedVBlank(t *testing.T) {
	m := NewMachine()
	vb := VBlankGet(m)

	// VBlank happened while the program was busy
	m.RunFrame()

	done := make(chan struct{})
	go func() {
		vb.WaitForVBlank()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("wait blocked despite pending vblank")
	}

	// The flag is consumed: the next wait blocks until another frame
	done2 := make(chan struct{})
	go func() {
		vb.WaitForVBlank()
		close(done2)
	}()
	select {
	case <-done2:
		t.Fatalf("second wait returned without a new vblank")
	case <-time.After(50 * time.Millisecond):
	}
	m.RunFrame()
	select {
	case <-done2:
	case <-time.After(time.Second):
		t.Fatalf("wait not released by vblank")
	}
}

func TestRunFrameSyncLockstep(t *testing.T) {
	m := NewMachine()
	vb := VBlankGet(m)

	var updates atomic.Int32
	go func() {
		for i := 0; i < 3; i++ {
			updates.Add(1)
			vb.WaitForVBlank()
		}
		Halt(m)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	frames := 0
	for {
		err := m.RunFrameSync(ctx)
		if err == ErrHalted {
			break
		}
		if err != nil {
			t.Fatalf("RunFrameSync: %v", err)
		}
		frames++
	}
	if frames != 3 || updates.Load() != 3 {
		t.Errorf("Expected 3 frames for 3 updates, got %d frames, %d updates", frames, updates.Load())
	}
	m.PowerOff()
}

func TestRunFrameSyncHonorsContext(t *testing.T) {
	m := NewMachine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.RunFrameSync(ctx); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestPowerOffReleasesWaiter(t *testing.T) {
	m := NewMachine()
	vb := VBlankGet(m)

	exited := make(chan struct{})
	go func() {
		defer close(exited)
		vb.WaitForVBlank()
		t.Errorf("WaitForVBlank returned after power off")
	}()

	for !m.Waiting() {
		time.Sleep(time.Millisecond)
	}
	m.PowerOff()

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatalf("waiter goroutine did not exit")
	}
}

func TestNewInEntryOnce(t *testing.T) {
	m := NewMachine()
	NewInEntry(m)
	defer func() {
		if recover() == nil {
			t.Errorf("second NewInEntry did not panic")
		}
	}()
	NewInEntry(m)
}

func TestButtonControllerEdges(t *testing.T) {
	m := NewMachine()
	c := NewButtonController(m)

	m.SetKeys(ButtonA)
	c.Update()
	if !c.IsJustPressed(ButtonA) || !c.IsPressed(ButtonA) {
		t.Errorf("A should be just pressed")
	}
	c.Update()
	if c.IsJustPressed(ButtonA) || !c.IsPressed(ButtonA) {
		t.Errorf("A should be held without edge")
	}
	m.SetKeys(ButtonNone)
	c.Update()
	if !c.IsJustReleased(ButtonA) || !c.IsReleased(ButtonA) {
		t.Errorf("A should be just released")
	}
}

func TestButtonString(t *testing.T) {
	if s := (ButtonL | ButtonA).String(); s != "A|L" {
		t.Errorf("Expected A|L, got %q", s)
	}
	if ButtonNone.String() != "NONE" {
		t.Errorf("Expected NONE")
	}
}
