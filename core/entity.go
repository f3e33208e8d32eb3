package core

// Entity is the identifier of an ECS entity
// IDs are allocated by engine.World and never reused within a World
type Entity uint64

// NoEntity is the zero value; World never hands it out
const NoEntity Entity = 0
