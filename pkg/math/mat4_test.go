package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTransformPoint(t *testing.T) {
	// Translate by (10, 20, 30)
	m := Translate(10, 20, 30)
	p := [3]float32{1, 2, 3}
	result := m.TransformPoint(p)

	expected := [3]float32{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestDeterminant(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		want float32
	}{
		{"identity", Identity(), 1},
		{"scale", Scale(2, 3, 4), 24},
		{"mirror", Scale(-1, 1, 1), -1},
		{"all negative", Scale(-1, -1, -1), -1},
	}
	for _, tc := range tests {
		if got := tc.m.Determinant(); got != tc.want {
			t.Errorf("%s: Determinant() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Translate(1, 2, 3).Mul(Scale(2, 2, 2))
	inv := m.Inverse()
	result := m.Mul(inv)

	id := Identity()
	for i := 0; i < 16; i++ {
		if absf(result[i]-id[i]) > 1e-5 {
			t.Fatalf("M * M^-1 element %d: got %f, want %f", i, result[i], id[i])
		}
	}
}

func TestTranspose(t *testing.T) {
	m := Mat4{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	got := m.Transpose()
	want := Mat4{
		1, 5, 9, 13,
		2, 6, 10, 14,
		3, 7, 11, 15,
		4, 8, 12, 16,
	}
	if got != want {
		t.Errorf("Transpose() = %v, want %v", got, want)
	}
}

func TestDecomposeTranslation(t *testing.T) {
	m := Translate(1, 2, 3)
	s, r, tr := m.Decompose()

	if s != (Vec3{1, 1, 1}) {
		t.Errorf("scale = %v, want (1, 1, 1)", s)
	}
	if absf(r.W-1) > 1e-5 {
		t.Errorf("rotation = %v, want identity", r)
	}
	if tr != (Vec3{1, 2, 3}) {
		t.Errorf("translation = %v, want (1, 2, 3)", tr)
	}
}

func TestDecomposeNegativeScale(t *testing.T) {
	// A mirrored matrix puts the sign of the determinant on the X scale.
	m := Scale(1, -2, 3)
	s, _, _ := m.Decompose()

	want := Vec3{-1, 2, 3}
	if s != want {
		t.Errorf("scale = %v, want %v", s, want)
	}
}

func TestComposeDecomposeRoundTrip(t *testing.T) {
	scale := Vec3{2, 3, 4}
	rot := QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/3))
	trans := Vec3{5, -6, 7}

	m := Compose(scale, rot, trans)
	s, r, tr := m.Decompose()

	if s.Distance(scale) > 1e-4 {
		t.Errorf("scale = %v, want %v", s, scale)
	}
	if tr.Distance(trans) > 1e-4 {
		t.Errorf("translation = %v, want %v", tr, trans)
	}
	// Quaternions q and -q represent the same rotation.
	if absf(absf(r.Dot(rot))-1) > 1e-4 {
		t.Errorf("rotation = %v, want %v", r, rot)
	}
}

func TestComposeOrder(t *testing.T) {
	// Compose applies scale, then rotation, then translation.
	rot := QuatFromAxisAngle(Vec3{0, 0, 1}, float32(math.Pi/2))
	m := Compose(Vec3{2, 1, 1}, rot, Vec3{10, 0, 0})

	got := m.TransformVec3(Vec3{1, 0, 0})
	want := Vec3{10, 2, 0}
	if got.Distance(want) > 1e-5 {
		t.Errorf("TransformVec3 = %v, want %v", got, want)
	}
}
