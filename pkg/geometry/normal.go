package geometry

import (
	"github.com/Faultbox/brickmesh/pkg/math"
)

// FaceNormals computes the unit normal of every face. Quads are assumed
// planar, so the first three vertices suffice.
func FaceNormals(vertices []math.Vec3, vertexIndices, faceStarts, faceSizes []uint32) []math.Vec3 {
	normals := make([]math.Vec3, 0, len(faceStarts))
	for i, start := range faceStarts {
		face := vertexIndices[start : start+faceSizes[i]]
		v1 := vertices[face[0]]
		v2 := vertices[face[1]]
		v3 := vertices[face[2]]

		u := v2.Sub(v1)
		v := v3.Sub(v1)
		normals = append(normals, u.Cross(v).Normalize())
	}
	return normals
}
