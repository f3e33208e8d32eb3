package engine

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/agb-ecs/core"
)

// World contains all entities, their components in typed stores, and the resources
type World struct {
	mu           sync.RWMutex
	nextEntityID core.Entity
	alive        map[core.Entity]struct{}

	stores     map[reflect.Type]AnyStore
	storeOrder []AnyStore

	// Resources are shared singletons any system may use
	Resources *ResourceStore

	// NonSend holds main-context-only resources (hardware handles that must not leave
	// the goroutine running the app). Systems run sequentially on that goroutine, so the
	// store only needs to keep other goroutines out by convention.
	NonSend *ResourceStore

	exit atomic.Pointer[AppExit]
}

// NewWorld creates an empty ECS world
func NewWorld() *World {
	return &World{
		nextEntityID: 1,
		alive:        make(map[core.Entity]struct{}),
		stores:       make(map[reflect.Type]AnyStore),
		Resources:    NewResourceStore(),
		NonSend:      NewResourceStore(),
	}
}

// Spawn reserves a new entity ID without components
func (w *World) Spawn() core.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextEntityID
	w.nextEntityID++
	w.alive[id] = struct{}{}
	return id
}

// Despawn removes all components associated with an entity
func (w *World) Despawn(e core.Entity) {
	w.mu.Lock()
	delete(w.alive, e)
	stores := make([]AnyStore, len(w.storeOrder))
	copy(stores, w.storeOrder)
	w.mu.Unlock()

	for _, store := range stores {
		store.Remove(e)
	}
}

// Alive reports whether e was spawned and not despawned
func (w *World) Alive(e core.Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.alive[e]
	return ok
}

// EntityCount returns the number of live entities
func (w *World) EntityCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.alive)
}

// SendExit requests the app to stop; the first error exit wins over success
func (w *World) SendExit(exit AppExit) {
	for {
		cur := w.exit.Load()
		if cur != nil && (!cur.IsSuccess() || exit.IsSuccess()) {
			return
		}
		e := exit
		if w.exit.CompareAndSwap(cur, &e) {
			return
		}
	}
}

// Exit returns the pending exit request, if any
func (w *World) Exit() (AppExit, bool) {
	if e := w.exit.Load(); e != nil {
		return *e, true
	}
	return AppExit{}, false
}

// GetStore returns the store for component type T, creating it on first use
func GetStore[T any](w *World) *Store[T] {
	t := reflect.TypeFor[T]()

	w.mu.RLock()
	s, ok := w.stores[t]
	w.mu.RUnlock()
	if ok {
		return s.(*Store[T])
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if s, ok := w.stores[t]; ok {
		return s.(*Store[T])
	}
	store := NewStore[T]()
	w.stores[t] = store
	w.storeOrder = append(w.storeOrder, store)
	return store
}

// Insert adds or replaces component c on entity e
func Insert[T any](w *World, e core.Entity, c T) {
	GetStore[T](w).Set(e, c)
}

// Get returns a copy of the T component of e
func Get[T any](w *World, e core.Entity) (T, bool) {
	return GetStore[T](w).Get(e)
}

// GetRef returns a mutable pointer to the T component of e, nil if absent
func GetRef[T any](w *World, e core.Entity) *T {
	return GetStore[T](w).Ref(e)
}

// Has reports whether e holds a T component
func Has[T any](w *World, e core.Entity) bool {
	return GetStore[T](w).Has(e)
}

// Remove detaches the T component from e
func Remove[T any](w *World, e core.Entity) {
	GetStore[T](w).Remove(e)
}
