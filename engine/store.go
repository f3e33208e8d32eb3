package engine

import (
	"sync"

	"github.com/lixenwraith/agb-ecs/core"
)

// Store is a generic container for a specific component type T
// Uses sparse set pattern: dense value slice plus entity->index map for cache-friendly iteration
// Iteration order is insertion order, perturbed only by swap-removal
type Store[T any] struct {
	mu       sync.RWMutex
	index    map[core.Entity]int
	entities []core.Entity
	values   []T
}

// NewStore creates a new component store for type T
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		index:    make(map[core.Entity]int),
		entities: make([]core.Entity, 0, 64),
		values:   make([]T, 0, 64),
	}
}

// Set inserts or updates a component for an entity
func (s *Store[T]) Set(e core.Entity, val T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, exists := s.index[e]; exists {
		s.values[i] = val
		return
	}
	s.index[e] = len(s.entities)
	s.entities = append(s.entities, e)
	s.values = append(s.values, val)
}

// Get retrieves a copy of the component for an entity
func (s *Store[T]) Get(e core.Entity) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.index[e]; ok {
		return s.values[i], true
	}
	var zero T
	return zero, false
}

// Ref returns a pointer to the stored component, nil if absent
// The pointer is valid until the next Set of a new entity or any Remove on this store
func (s *Store[T]) Ref(e core.Entity) *T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.index[e]; ok {
		return &s.values[i]
	}
	return nil
}

// Remove deletes the component of an entity (swap-remove)
func (s *Store[T]) Remove(e core.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, exists := s.index[e]
	if !exists {
		return
	}
	last := len(s.entities) - 1
	if i != last {
		s.entities[i] = s.entities[last]
		s.values[i] = s.values[last]
		s.index[s.entities[i]] = i
	}
	var zero T
	s.values[last] = zero
	s.entities = s.entities[:last]
	s.values = s.values[:last]
	delete(s.index, e)
}

// Has checks if entity has this component
func (s *Store[T]) Has(e core.Entity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[e]
	return ok
}

// All returns a snapshot of the entities holding this component, in iteration order
func (s *Store[T]) All() []core.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]core.Entity, len(s.entities))
	copy(result, s.entities)
	return result
}

// Count returns number of entities with this component
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Clear removes all components from this store
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = make(map[core.Entity]int)
	s.entities = s.entities[:0]
	s.values = s.values[:0]
}

// Each visits every component in iteration order until fn returns false
// Iterates over a snapshot of entity IDs; fn may add or remove components
func (s *Store[T]) Each(fn func(e core.Entity, val *T) bool) {
	for _, e := range s.All() {
		ref := s.Ref(e)
		if ref == nil {
			continue
		}
		if !fn(e, ref) {
			return
		}
	}
}
