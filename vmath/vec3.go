package vmath

import "math"

// Vec3 is a float32 3D vector used by world-space transforms
type Vec3 struct {
	X, Y, Z float32
}

// Vector2D is an integer screen-space vector, matching OAM coordinates
type Vector2D struct {
	X, Y int32
}

// One is the identity scale
var One = Vec3{1, 1, 1}

func V3Add(a, b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func V3Sub(a, b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func V3Mul(a, b Vec3) Vec3 {
	return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

func V3Scale(v Vec3, s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// V3RotateZ rotates v around the Z axis by angle radians
func V3RotateZ(v Vec3, angle float32) Vec3 {
	if angle == 0 {
		return v
	}
	sin, cos := math.Sincos(float64(angle))
	s, c := float32(sin), float32(cos)
	return Vec3{v.X*c - v.Y*s, v.X*s + v.Y*c, v.Z}
}

// Truncate converts the X and Y components to integers, rounding toward zero
// Go float-to-int conversion truncates; values outside int32 range are implementation-defined
func Truncate(v Vec3) Vector2D {
	return Vector2D{X: int32(v.X), Y: int32(v.Y)}
}
