package geometry

import (
	"testing"

	"github.com/Faultbox/brickmesh/pkg/math"
)

func splatVerts(values ...float32) []math.Vec3 {
	verts := make([]math.Vec3, 0, len(values))
	for _, v := range values {
		verts = append(verts, math.Splat(v))
	}
	return verts
}

func checkSplit(t *testing.T, wantVerts []math.Vec3, wantIndices []uint32, gotVerts []math.Vec3, gotIndices []uint32) {
	t.Helper()
	if len(gotVerts) != len(wantVerts) {
		t.Fatalf("len(vertices) = %d, want %d", len(gotVerts), len(wantVerts))
	}
	for i := range wantVerts {
		if gotVerts[i] != wantVerts[i] {
			t.Errorf("vertices[%d] = %v, want %v", i, gotVerts[i], wantVerts[i])
		}
	}
	if len(gotIndices) != len(wantIndices) {
		t.Fatalf("len(indices) = %d, want %d", len(gotIndices), len(wantIndices))
	}
	for i := range wantIndices {
		if gotIndices[i] != wantIndices[i] {
			t.Errorf("indices[%d] = %d, want %d", i, gotIndices[i], wantIndices[i])
		}
	}
}

func TestSplitEdgesTriangleNoSharpEdges(t *testing.T) {
	// 2
	// | \
	// 0 - 1
	verts, indices := SplitEdges(
		splatVerts(0, 1, 2),
		[]uint32{0, 1, 2},
		[]uint32{0},
		[]uint32{3},
		nil,
	)
	checkSplit(t, splatVerts(0, 1, 2), []uint32{0, 1, 2}, verts, indices)
}

func TestSplitEdgesQuadBoundary(t *testing.T) {
	// Quad of two tris and one sharp edge.
	// The topology shouldn't change since 2-3 is already a boundary.
	// 2 - 3
	// | \ |
	// 0 - 1
	verts, indices := SplitEdges(
		splatVerts(0, 1, 2, 3),
		[]uint32{0, 1, 2, 2, 1, 3},
		[]uint32{0, 3},
		[]uint32{3, 3},
		[][2]uint32{{2, 3}},
	)
	checkSplit(t, splatVerts(0, 1, 2, 3), []uint32{0, 1, 2, 2, 1, 3}, verts, indices)
}

func TestSplitEdgesTwoQuadsBoundaries(t *testing.T) {
	// Two quads of two tris.
	// The topology shouldn't change for splitting boundaries.
	// 2 - 3 - 5
	// | \ | \ |
	// 0 - 1 - 4
	verts, indices := SplitEdges(
		splatVerts(0, 1, 2, 3, 4, 5),
		[]uint32{0, 1, 2, 2, 1, 3, 3, 1, 4, 3, 4, 5},
		[]uint32{0, 3, 6, 9},
		[]uint32{3, 3, 3, 3},
		[][2]uint32{{2, 3}, {3, 5}, {0, 1}, {1, 4}},
	)
	checkSplit(t, splatVerts(0, 1, 2, 3, 4, 5),
		[]uint32{0, 1, 2, 2, 1, 3, 3, 1, 4, 3, 4, 5}, verts, indices)
}

func TestSplitEdgesSplitTwoTriangulatedQuads(t *testing.T) {
	// Two quads of two tris and one sharp edge.
	// 2 - 3 - 4
	// | \ | \ |
	// 0 - 1 - 5

	// The edge 1-3 splits the quads in two.
	// 2 - 3    7 - 4
	// | \ |    | \ |
	// 0 - 1    6 - 5
	verts, indices := SplitEdges(
		splatVerts(0, 1, 2, 3, 4, 5),
		[]uint32{0, 1, 2, 2, 1, 3, 3, 1, 5, 3, 5, 4},
		[]uint32{0, 3, 6, 9},
		[]uint32{3, 3, 3, 3},
		[][2]uint32{{1, 3}},
	)
	checkSplit(t, splatVerts(0, 1, 2, 3, 4, 5, 1, 3),
		[]uint32{0, 1, 2, 2, 1, 3, 7, 6, 5, 7, 5, 4}, verts, indices)
}

func TestSplitEdgesSplitTwoQuads(t *testing.T) {
	// Two quads and one sharp edge.
	// 3 - 2 - 5
	// |   |   |
	// 0 - 1 - 4

	// The edge 1-2 splits the quads in two.
	// 3 - 2    7 - 5
	// |   |    |   |
	// 0 - 1    6 - 4
	verts, indices := SplitEdges(
		splatVerts(0, 1, 2, 3, 4, 5),
		[]uint32{0, 1, 2, 3, 1, 4, 5, 2},
		[]uint32{0, 4},
		[]uint32{4, 4},
		[][2]uint32{{1, 2}},
	)
	checkSplit(t, splatVerts(0, 1, 2, 3, 4, 5, 1, 2),
		[]uint32{0, 1, 2, 3, 6, 4, 5, 7}, verts, indices)
}

func TestSplitEdgesCylinderSection(t *testing.T) {
	// Example taken from p/1-8cyli.dat.
	// 3 - 0 - 4
	// | / | / |
	// 2 - 1 - 5

	// 4 - 1 - 5
	// | / | / |
	// 3 - 2 - 0
	verts, indices := SplitEdges(
		splatVerts(0, 1, 2, 3, 4, 5),
		[]uint32{2, 1, 0, 3, 2, 0, 1, 5, 4, 0, 1, 4},
		[]uint32{0, 3, 6, 9},
		[]uint32{3, 3, 3, 3},
		[][2]uint32{{2, 1}, {0, 3}, {1, 5}, {4, 0}},
	)
	checkSplit(t, splatVerts(0, 2, 3, 4, 5, 1),
		[]uint32{1, 5, 0, 2, 1, 0, 5, 4, 3, 0, 5, 3}, verts, indices)
}

func TestSplitEdgesSharpNormalsTetrahedron(t *testing.T) {
	// The angle threshold should split all faces of a tetrahedron even
	// with no explicit edges.
	verts, indices := SplitEdges(
		[]math.Vec3{
			{X: 0, Y: -0.707, Z: -1},
			{X: 0.866025, Y: -0.707, Z: 0.5},
			{X: -0.866025, Y: -0.707, Z: 0.5},
			{X: 0, Y: 0.707, Z: 0},
		},
		[]uint32{0, 3, 1, 0, 1, 2, 1, 3, 2, 2, 3, 0},
		[]uint32{0, 3, 6, 9},
		[]uint32{3, 3, 3, 3},
		nil,
	)
	wantVerts := []math.Vec3{
		{X: 0, Y: -0.707, Z: -1},
		{X: 0.866025, Y: -0.707, Z: 0.5},
		{X: -0.866025, Y: -0.707, Z: 0.5},
		{X: 0, Y: 0.707, Z: 0},
		{X: 0, Y: -0.707, Z: -1},
		{X: 0.866025, Y: -0.707, Z: 0.5},
		{X: 0.866025, Y: -0.707, Z: 0.5},
		{X: -0.866025, Y: -0.707, Z: 0.5},
		{X: 0, Y: 0.707, Z: 0},
		{X: 0, Y: 0.707, Z: 0},
	}
	checkSplit(t, wantVerts, []uint32{0, 3, 1, 4, 5, 2, 6, 8, 7, 2, 9, 4}, verts, indices)
}
