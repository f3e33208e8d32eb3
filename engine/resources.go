package engine

import (
	"reflect"
	"sync"
)

// ResourceStore is a thread-safe container for singleton resources
// It allows systems to access shared data (Time, hardware handles, input state)
// without coupling to the code that created them
type ResourceStore struct {
	mu        sync.RWMutex
	resources map[reflect.Type]any
}

// NewResourceStore creates a new empty resource store
func NewResourceStore() *ResourceStore {
	return &ResourceStore{
		resources: make(map[reflect.Type]any),
	}
}

// AddResource registers or replaces a resource keyed by its static type T
// Pointer types are recommended so systems can mutate the resource in place
func AddResource[T any](rs *ResourceStore, resource T) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.resources[reflect.TypeFor[T]()] = resource
}

// GetResource retrieves a resource of type T from the store
// Returns the zero value of T and false if not found
func GetResource[T any](rs *ResourceStore) (T, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	val, ok := rs.resources[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// MustGetResource retrieves a resource or panics if missing
// Useful for resources a plugin guarantees to insert
func MustGetResource[T any](rs *ResourceStore) T {
	res, ok := GetResource[T](rs)
	if !ok {
		panic("required resource not found: " + reflect.TypeFor[T]().String())
	}
	return res
}

// HasResource reports whether a resource of type T is present
func HasResource[T any](rs *ResourceStore) bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	_, ok := rs.resources[reflect.TypeFor[T]()]
	return ok
}

// RemoveResource deletes the resource of type T
func RemoveResource[T any](rs *ResourceStore) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	delete(rs.resources, reflect.TypeFor[T]())
}

// InsertResource adds a shared resource to the app's world
func InsertResource[T any](app *App, resource T) *App {
	AddResource(app.world.Resources, resource)
	return app
}

// InsertNonSend adds a main-context-only resource to the app's world
func InsertNonSend[T any](app *App, resource T) *App {
	AddResource(app.world.NonSend, resource)
	return app
}

// MustGetNonSend retrieves a main-context-only resource or panics if missing
func MustGetNonSend[T any](w *World) T {
	return MustGetResource[T](w.NonSend)
}
