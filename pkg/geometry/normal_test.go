package geometry

import (
	"testing"

	"github.com/Faultbox/brickmesh/pkg/math"
)

func TestFaceNormalsSingleTriangle(t *testing.T) {
	normals := FaceNormals(
		[]math.Vec3{
			{X: -5, Y: 5, Z: 1},
			{X: -5, Y: 0, Z: 1},
			{X: 0, Y: 0, Z: 1},
		},
		[]uint32{0, 1, 2},
		[]uint32{0},
		[]uint32{3},
	)
	if len(normals) != 1 || normals[0] != (math.Vec3{Z: 1}) {
		t.Errorf("normals = %v, want [(0, 0, 1)]", normals)
	}
}

func TestFaceNormalsSingleQuad(t *testing.T) {
	normals := FaceNormals(
		[]math.Vec3{
			{X: -5, Y: 5, Z: 1},
			{X: -5, Y: 0, Z: 1},
			{X: 0, Y: 0, Z: 1},
			{X: 0, Y: 5, Z: 1},
		},
		[]uint32{0, 1, 2, 3},
		[]uint32{0},
		[]uint32{4},
	)
	if len(normals) != 1 || normals[0] != (math.Vec3{Z: 1}) {
		t.Errorf("normals = %v, want [(0, 0, 1)]", normals)
	}
}
