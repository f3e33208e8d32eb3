package platform

import (
	"testing"

	"github.com/lixenwraith/agb-ecs/clock"
	"github.com/lixenwraith/agb-ecs/engine"
	"github.com/lixenwraith/agb-ecs/gba"
	"github.com/lixenwraith/agb-ecs/input"
	"github.com/lixenwraith/agb-ecs/status"
)

// harness boots the platform on a fresh machine with a private clock
type harness struct {
	t     *testing.T
	m     *gba.Machine
	app   *engine.App
	clock *clock.Source
	reg   *status.Registry

	raw     *engine.EventReader[input.RawGamepadEvent]
	changed *engine.EventReader[input.RawGamepadButtonChangedEvent]
	conn    *engine.EventReader[input.GamepadConnectionEvent]

	// Everything read since boot; events live two updates, so readers are drained every update
	rawLog  []input.RawGamepadEvent
	connLog []input.GamepadConnectionEvent

	// Button events not yet handed out by buttonEvents
	pendingRaw   []input.RawGamepadButtonChangedEvent
	pendingTyped []input.RawGamepadButtonChangedEvent
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		m:     gba.NewMachine(),
		clock: &clock.Source{},
		reg:   status.NewRegistry(),
	}
	h.app = engine.NewApp().AddPlugins(Plugins{Machine: h.m, Clock: h.clock, Registry: h.reg})

	w := h.app.World()
	h.raw = engine.EventsOf[input.RawGamepadEvent](w).Reader()
	h.changed = engine.EventsOf[input.RawGamepadButtonChangedEvent](w).Reader()
	h.conn = engine.EventsOf[input.GamepadConnectionEvent](w).Reader()
	return h
}

// frame latches keys, runs one update and then one display frame
func (h *harness) frame(keys gba.Button) {
	h.m.SetKeys(keys)
	h.app.Update()
	h.drain()
	h.m.RunFrame()
}

// drain moves unread events from every reader into the logs
func (h *harness) drain() {
	for _, ev := range h.raw.Read() {
		h.rawLog = append(h.rawLog, ev)
		if bc, ok := ev.(input.RawGamepadButtonChangedEvent); ok {
			h.pendingRaw = append(h.pendingRaw, bc)
		}
	}
	h.pendingTyped = append(h.pendingTyped, h.changed.Read()...)
	h.connLog = append(h.connLog, h.conn.Read()...)
}

// buttonEvents returns the button events since the previous call and checks both
// streams carry identical payloads
func (h *harness) buttonEvents() []input.RawGamepadButtonChangedEvent {
	h.t.Helper()
	h.drain()
	fromRaw, typed := h.pendingRaw, h.pendingTyped
	h.pendingRaw, h.pendingTyped = nil, nil

	if len(fromRaw) != len(typed) {
		h.t.Fatalf("raw stream has %d button events, typed stream %d", len(fromRaw), len(typed))
	}
	for i := range typed {
		if fromRaw[i] != typed[i] {
			h.t.Fatalf("event %d differs: raw %+v, typed %+v", i, fromRaw[i], typed[i])
		}
	}
	return typed
}

func (h *harness) spawnSprite(sprite Sprite, x, y float32) {
	w := h.app.World()
	e := w.Spawn()
	engine.Insert(w, e, sprite)
	engine.Insert(w, e, globalAt(x, y))
}
