// Package transform provides the local/global transform components and the
// hierarchy propagation the renderer reads from.
package transform

import (
	"github.com/lixenwraith/agb-ecs/core"
	"github.com/lixenwraith/agb-ecs/vmath"
)

// Transform is an entity's placement relative to its parent, or to the world when it has none
type Transform struct {
	Translation vmath.Vec3
	Rotation    float32 // Radians around Z
	Scale       vmath.Vec3
}

// FromXYZ returns a transform at the given translation with identity rotation and scale
func FromXYZ(x, y, z float32) Transform {
	return Transform{Translation: vmath.Vec3{X: x, Y: y, Z: z}, Scale: vmath.One}
}

// Identity is the transform that leaves positions unchanged
func Identity() Transform {
	return Transform{Scale: vmath.One}
}

// GlobalTransform is the world-space result of propagation; written only by the propagation system
type GlobalTransform struct {
	Translation vmath.Vec3
	Rotation    float32
	Scale       vmath.Vec3
}

// FromTransform converts a root transform directly
func FromTransform(t Transform) GlobalTransform {
	return GlobalTransform(t)
}

// MulTransform composes a child's local transform onto this global transform
func (g GlobalTransform) MulTransform(local Transform) GlobalTransform {
	offset := vmath.V3RotateZ(vmath.V3Mul(g.Scale, local.Translation), g.Rotation)
	return GlobalTransform{
		Translation: vmath.V3Add(g.Translation, offset),
		Rotation:    g.Rotation + local.Rotation,
		Scale:       vmath.V3Mul(g.Scale, local.Scale),
	}
}

// Parent links a child entity to the entity its transform is relative to
type Parent struct {
	Entity core.Entity
}
