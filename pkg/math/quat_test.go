package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("QuatIdentity() = %v", q)
	}
}

func TestQuatAxisAngleRoundTrip(t *testing.T) {
	axis := Vec3{0, 1, 0}
	angle := float32(math.Pi / 2)

	q := QuatFromAxisAngle(axis, angle)
	gotAxis, gotAngle := q.ToAxisAngle()

	if gotAxis.Distance(axis) > 1e-5 {
		t.Errorf("axis = %v, want %v", gotAxis, axis)
	}
	if absf(gotAngle-angle) > 1e-5 {
		t.Errorf("angle = %v, want %v", gotAngle, angle)
	}
}

func TestQuatToAxisAngleNegativeW(t *testing.T) {
	// A quaternion with a negative scalar part maps to an angle above pi.
	q := Quat{0, 0.70710678, 0, -0.70710678}
	axis, angle := q.ToAxisAngle()

	if axis.Distance(Vec3{0, 1, 0}) > 1e-5 {
		t.Errorf("axis = %v, want (0, 1, 0)", axis)
	}
	if absf(angle-3*float32(math.Pi)/2) > 1e-5 {
		t.Errorf("angle = %v, want 3*pi/2", angle)
	}
}

func TestQuatToAxisAngleIdentity(t *testing.T) {
	axis, angle := QuatIdentity().ToAxisAngle()
	if angle != 0 {
		t.Errorf("angle = %v, want 0", angle)
	}
	if axis != (Vec3{1, 0, 0}) {
		t.Errorf("axis = %v, want (1, 0, 0)", axis)
	}
}

func TestQuatFromAxes(t *testing.T) {
	// Rotation by 90 degrees around Y: x axis maps to -z, z axis maps to x.
	m := QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/2)).ToMat4()
	q := QuatFromAxes(m.Col(0), m.Col(1), m.Col(2))

	want := QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/2))
	if absf(absf(q.Dot(want))-1) > 1e-5 {
		t.Errorf("QuatFromAxes = %v, want %v", q, want)
	}
}

func TestQuatToMat4RotatesVector(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, float32(math.Pi/2))
	m := q.ToMat4()

	got := m.TransformVec3(Vec3{1, 0, 0})
	want := Vec3{0, 1, 0}
	if got.Distance(want) > 1e-5 {
		t.Errorf("rotated = %v, want %v", got, want)
	}
}

func TestQuatMulIdentity(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{1, 0, 0}, 1.0)
	got := q.Mul(QuatIdentity())
	if absf(got.Dot(q)-1) > 1e-5 {
		t.Errorf("q * identity = %v, want %v", got, q)
	}
}
