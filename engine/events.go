package engine

import (
	"reflect"
	"sync"
)

// Events is a double-buffered queue of T messages.
//
// Messages sent during frame N are readable during frames N and N+1 and are
// dropped by the second Update after they were sent. Each EventReader keeps its
// own cursor, so independent consumers see every message exactly once as long
// as they read at least once per frame.
type Events[T any] struct {
	mu sync.Mutex

	// previous buffer holds messages from the last frame, current from this one
	previous []eventInstance[T]
	current  []eventInstance[T]

	previousStart uint64 // sequence number of previous[0]
	currentStart  uint64 // sequence number of current[0]
	count         uint64 // next sequence number
}

type eventInstance[T any] struct {
	seq   uint64
	event T
}

// NewEvents creates an empty event queue
func NewEvents[T any]() *Events[T] {
	return &Events[T]{}
}

// Send appends an event to the current buffer
func (ev *Events[T]) Send(event T) {
	ev.mu.Lock()
	ev.current = append(ev.current, eventInstance[T]{seq: ev.count, event: event})
	ev.count++
	ev.mu.Unlock()
}

// SendBatch appends events in order
func (ev *Events[T]) SendBatch(events ...T) {
	ev.mu.Lock()
	for _, event := range events {
		ev.current = append(ev.current, eventInstance[T]{seq: ev.count, event: event})
		ev.count++
	}
	ev.mu.Unlock()
}

// Update swaps buffers, dropping messages older than one frame
func (ev *Events[T]) Update() {
	ev.mu.Lock()
	ev.previous, ev.current = ev.current, ev.previous[:0]
	ev.previousStart = ev.currentStart
	ev.currentStart = ev.count
	ev.mu.Unlock()
}

// Len returns the number of retained messages across both buffers
func (ev *Events[T]) Len() int {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return len(ev.previous) + len(ev.current)
}

// Clear drops all retained messages
func (ev *Events[T]) Clear() {
	ev.mu.Lock()
	ev.previous = ev.previous[:0]
	ev.current = ev.current[:0]
	ev.previousStart = ev.count
	ev.currentStart = ev.count
	ev.mu.Unlock()
}

// Reader returns a cursor that starts at the oldest retained message
func (ev *Events[T]) Reader() *EventReader[T] {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return &EventReader[T]{events: ev, next: ev.previousStart}
}

// EventReader tracks which messages of an Events queue were already consumed
type EventReader[T any] struct {
	events *Events[T]
	next   uint64
}

// Read returns unseen messages in send order and advances the cursor
func (r *EventReader[T]) Read() []T {
	ev := r.events
	ev.mu.Lock()
	defer ev.mu.Unlock()

	if r.next < ev.previousStart {
		r.next = ev.previousStart
	}

	var out []T
	for _, inst := range ev.previous {
		if inst.seq >= r.next {
			out = append(out, inst.event)
		}
	}
	for _, inst := range ev.current {
		if inst.seq >= r.next {
			out = append(out, inst.event)
		}
	}
	r.next = ev.count
	return out
}

// AddEvent registers Events[T] as a world resource and swaps its buffers every update
// Calling it again for the same T returns the existing queue
func AddEvent[T any](app *App) *Events[T] {
	if existing, ok := GetResource[*Events[T]](app.world.Resources); ok {
		return existing
	}
	ev := NewEvents[T]()
	AddResource(app.world.Resources, ev)
	app.eventUpdaters = append(app.eventUpdaters, ev.Update)
	return ev
}

// EventsOf returns the registered Events[T]
// Panics if the event type was never added, naming the type
func EventsOf[T any](w *World) *Events[T] {
	ev, ok := GetResource[*Events[T]](w.Resources)
	if !ok {
		panic("event not registered: " + reflect.TypeFor[T]().String())
	}
	return ev
}
