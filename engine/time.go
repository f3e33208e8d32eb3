package engine

import (
	"time"

	"github.com/lixenwraith/agb-ecs/clock"
)

// Time tracks frame timing read from the installed platform clock
type Time struct {
	startup clock.Instant
	last    clock.Instant

	Delta   time.Duration // Time since the previous update
	Elapsed time.Duration // Time since the plugin was built
}

// Startup returns the instant the time plugin was built
func (t *Time) Startup() clock.Instant {
	return t.startup
}

func (t *Time) advance(now clock.Instant) {
	t.Delta = now.Sub(t.last)
	t.Elapsed = now.Sub(t.startup)
	t.last = now
}

// TimePlugin inserts *Time and refreshes it at the start of every update.
// The clock must already be installed when the plugin is built.
type TimePlugin struct {
	// Source overrides clock.Default, used by tests
	Source *clock.Source
}

func (p TimePlugin) Build(app *App) {
	src := p.Source
	if src == nil {
		src = clock.Default
	}
	if !src.Installed() {
		panic("engine: time plugin requires an installed clock")
	}

	now := src.Now()
	t := &Time{startup: now, last: now}
	InsertResource(app, t)

	app.AddSystems(First, NewSystemWithPriority("time_system", PriorityFirst+1, func(w *World) {
		MustGetResource[*Time](w.Resources).advance(src.Now())
	}))
}

// FrameCount counts completed updates
type FrameCount struct {
	N uint32
}

// FrameCountPlugin inserts *FrameCount and increments it in Last
type FrameCountPlugin struct{}

func (FrameCountPlugin) Build(app *App) {
	InsertResource(app, &FrameCount{})
	app.AddSystems(Last, NewSystemWithPriority("frame_count_system", PriorityLast, func(w *World) {
		fc := MustGetResource[*FrameCount](w.Resources)
		fc.N++
	}))
}
