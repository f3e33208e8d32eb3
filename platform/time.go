package platform

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/agb-ecs/clock"
	"github.com/lixenwraith/agb-ecs/engine"
	"github.com/lixenwraith/agb-ecs/gba"
)

// TickRate is the timer 2 overflow frequency the clock assumes
const TickRate = 256

// NanosPerTick is the clock resolution, 10^9 / 256
const NanosPerTick = time.Second / TickRate

// TickCounter counts timer 2 overflows. The interrupt handler is its only writer.
type TickCounter struct {
	n atomic.Uint32

	mu    sync.Mutex
	last  uint32
	total uint64
}

// Load returns the tick count; wraps after about 194 days
func (c *TickCounter) Load() uint32 {
	return c.n.Load()
}

// Elapsed converts the tick count to time since boot. The count is widened by
// adding the modular difference since the previous read, so it keeps growing
// across a wrap as long as it is read at least once per wrap period.
func (c *TickCounter) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.n.Load()
	c.total += uint64(n - c.last)
	c.last = n
	return time.Duration(c.total) * NanosPerTick
}

// InterruptHandle keeps the timer 2 handler armed; main context only
type InterruptHandle struct{ *gba.InterruptHandler }

// TimePlugin drives the engine clock from timer 2 interrupts.
// Build installs the clock, so it must precede engine.TimePlugin.
type TimePlugin struct {
	Machine *gba.Machine
	// Clock overrides clock.Default, used by tests
	Clock *clock.Source
}

func (p TimePlugin) Build(app *engine.App) {
	src := p.Clock
	if src == nil {
		src = clock.Default
	}

	ticks := &TickCounter{}
	handler := gba.AddInterruptHandler(p.Machine, gba.IrqTimer2, func() {
		ticks.n.Add(1)
	})
	engine.InsertNonSend(app, InterruptHandle{handler})
	engine.InsertResource(app, ticks)

	if err := src.SetElapsed(ticks.Elapsed); err != nil {
		panic(err)
	}

	app.AddSystems(engine.Startup, engine.NewSystem("start_timer_2", startTimer2))
}

func startTimer2(w *engine.World) {
	timer := engine.MustGetResource[Timer2](w.Resources)
	timer.SetDivider(gba.Divider1).
		SetOverflowAmount(0xFFFF).
		SetInterrupt(true).
		SetEnabled(true)
}
