package vmath

import "testing"

func TestTruncateTowardZero(t *testing.T) {
	tests := []struct {
		in   Vec3
		want Vector2D
	}{
		{Vec3{10.9, -3.2, 0}, Vector2D{10, -3}},
		{Vec3{-0.9, 0.9, 5}, Vector2D{0, 0}},
		{Vec3{-7.999, 239.5, 0}, Vector2D{-7, 239}},
		{Vec3{0, 0, 0}, Vector2D{0, 0}},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in); got != tt.want {
			t.Errorf("Truncate(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestV3RotateZQuarterTurn(t *testing.T) {
	got := V3RotateZ(Vec3{1, 0, 2}, 1.5707964)
	if got.X > 1e-6 || got.X < -1e-6 || got.Y < 0.999999 || got.Z != 2 {
		t.Errorf("V3RotateZ quarter turn = %v", got)
	}
}
