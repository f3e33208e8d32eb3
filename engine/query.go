package engine

import "github.com/lixenwraith/agb-ecs/core"

// QueryBuilder provides a fluent interface for querying entities by component intersection.
// Results follow the iteration order of the first store added, so systems that emit
// side effects per entity (sprite slots, log lines) stay deterministic across frames.
type QueryBuilder struct {
	world    *World
	stores   []AnyStore
	executed bool
	results  []core.Entity
}

// Query creates a new QueryBuilder
//
// Example:
//
//	entities := world.Query().
//	    With(engine.GetStore[transform.Transform](world)).
//	    With(engine.GetStore[Sprite](world)).
//	    Execute()
func (w *World) Query() *QueryBuilder {
	return &QueryBuilder{
		world:  w,
		stores: make([]AnyStore, 0, 4),
	}
}

// With adds a component store to the query filter
// Panics if called after Execute()
func (qb *QueryBuilder) With(store AnyStore) *QueryBuilder {
	if qb.executed {
		panic("query already executed - cannot modify after Execute()")
	}
	qb.stores = append(qb.stores, store)
	return qb
}

// Execute returns every entity present in all added stores
// Calling Execute() multiple times returns the cached result
func (qb *QueryBuilder) Execute() []core.Entity {
	if qb.executed {
		return qb.results
	}
	qb.executed = true

	if len(qb.stores) == 0 {
		qb.results = make([]core.Entity, 0)
		return qb.results
	}

	candidates := qb.stores[0].All()
	for _, store := range qb.stores[1:] {
		filtered := candidates[:0]
		for _, e := range candidates {
			if store.Has(e) {
				filtered = append(filtered, e)
			}
		}
		candidates = filtered
		if len(candidates) == 0 {
			break
		}
	}

	qb.results = candidates
	return qb.results
}

// Query1 visits every entity holding A; returning false stops iteration
func Query1[A any](w *World, fn func(e core.Entity, a *A) bool) {
	GetStore[A](w).Each(fn)
}

// Query2 visits every entity holding both A and B, in A's store order
func Query2[A, B any](w *World, fn func(e core.Entity, a *A, b *B) bool) {
	bs := GetStore[B](w)
	GetStore[A](w).Each(func(e core.Entity, a *A) bool {
		b := bs.Ref(e)
		if b == nil {
			return true
		}
		return fn(e, a, b)
	})
}

// Single returns the only entity holding T
// ok is false when zero or more than one entity matches
func Single[T any](w *World) (core.Entity, *T, bool) {
	store := GetStore[T](w)
	if store.Count() != 1 {
		return core.NoEntity, nil, false
	}
	e := store.All()[0]
	return e, store.Ref(e), true
}
