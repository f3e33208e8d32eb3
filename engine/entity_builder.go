package engine

import "github.com/lixenwraith/agb-ecs/core"

// EntityBuilder provides a fluent, type-safe interface for constructing entities with components.
// Components are staged and committed together by Build().
//
// Example usage:
//
//	e := engine.With(engine.With(world.NewEntity(), transform.Transform{}), sprite).Build()
type EntityBuilder struct {
	world   *World
	entity  core.Entity
	pending []func()
	built   bool
}

// NewEntity creates a new EntityBuilder with a reserved entity ID
func (w *World) NewEntity() *EntityBuilder {
	return &EntityBuilder{
		world:  w,
		entity: w.Spawn(),
	}
}

// With stages a component of type T for the entity being built
// Panics if called after Build()
func With[T any](eb *EntityBuilder, component T) *EntityBuilder {
	if eb.built {
		panic("entity already built - cannot add components after Build()")
	}
	w, e := eb.world, eb.entity
	eb.pending = append(eb.pending, func() { Insert(w, e, component) })
	return eb
}

// Build commits the staged components and returns the entity ID
func (eb *EntityBuilder) Build() core.Entity {
	if eb.built {
		panic("entity already built")
	}
	eb.built = true
	for _, add := range eb.pending {
		add()
	}
	eb.pending = nil
	return eb.entity
}
