package geometry

import (
	"go.uber.org/zap"

	"github.com/Faultbox/brickmesh/pkg/ldraw"
	"github.com/Faultbox/brickmesh/pkg/math"
)

// pendingTexture is a registered texture waiting for the faces it applies
// to. The path addresses a descendant file by subfile reference ordinals.
type pendingTexture struct {
	index    uint8
	location *textureLocation
	path     []int
}

// textureLocation projects vertex positions to texture coordinates.
type textureLocation struct {
	transform math.Mat4
	pointMin  math.Vec2
	pointMax  math.Vec2
}

type textureMap struct {
	textureIndex uint8
	uvs          []math.Vec2
}

// registerTexture stores the decoded image on the geometry and returns
// the pending assignment for the current texture path.
func registerTexture(cmd ldraw.TexInfoCmd, path []int, geometry *Geometry) (pendingTexture, bool) {
	// The texture info is initialized lazily, so only touch it once the
	// command is known to be usable.
	info := geometry.textureInfo()

	if len(info.Textures) >= int(NoTextureIndex) {
		zap.L().Error("texture limit exceeded", zap.Int("textures", len(info.Textures)))
		return pendingTexture{}, false
	}

	index := uint8(len(info.Textures))
	info.Textures = append(info.Textures, cmd.Data)

	var location *textureLocation
	if p := cmd.Projection; p != nil {
		location = &textureLocation{
			transform: p.Transform.Matrix(),
			pointMin:  p.PointMin,
			pointMax:  p.PointMax,
		}
	}

	return pendingTexture{
		index:    index,
		location: location,
		path:     append([]int{}, path...),
	}, true
}

// initTextureTransform builds the matrix that moves mesh vertices into
// the texture's box space along with the box half extents.
func initTextureTransform(textureMatrix, partMatrix math.Mat4) (math.Mat4, math.Vec3) {
	scale, rot, tr := partMatrix.Mul(textureMatrix).Decompose()
	mirroring := scale.Signum()
	mirroring.Z *= -1
	boxExtents := scale.Abs().Scale(0.5)
	rhs := math.Compose(mirroring, rot, tr)
	matrix := partMatrix.Inverse().Mul(rhs)
	return matrix, boxExtents
}

// projectTexture computes the UV assignment of a face, or nil when the
// texture does not cover it. Explicit UVs on the face always win.
func projectTexture(
	texture *pendingTexture,
	transform math.Mat4,
	vertices []math.Vec3,
	uvs []math.Vec2,
) *textureMap {
	if uvs != nil {
		return &textureMap{textureIndex: texture.index, uvs: uvs}
	}

	// Without vertex UVs on the face or a projection on the texture the
	// texture is not drawn on this face.
	if texture.location == nil {
		return nil
	}
	loc := texture.location

	matrix, boxExtents := initTextureTransform(loc.transform, transform)
	inverse := matrix.Inverse()
	projected := make([]math.Vec3, len(vertices))
	for i, v := range vertices {
		projected[i] = inverse.TransformVec3(v)
	}

	if !intersectPolyBox(projected, boxExtents) {
		return nil
	}

	min := loc.pointMin
	diff := loc.pointMax.Sub(loc.pointMin)

	mapped := make([]math.Vec2, len(projected))
	for i, v := range projected {
		mapped[i] = v.XZ().Sub(min).Div(diff)
	}
	return &textureMap{textureIndex: texture.index, uvs: mapped}
}

func intersectPolyBox(polygon []math.Vec3, r math.Vec3) bool {
	switch len(polygon) {
	case 3:
		return intersectTriBox([3]math.Vec3{polygon[0], polygon[1], polygon[2]}, r)
	case 4:
		return intersectTriBox([3]math.Vec3{polygon[0], polygon[1], polygon[2]}, r) ||
			intersectTriBox([3]math.Vec3{polygon[2], polygon[3], polygon[0]}, r)
	}
	return false
}

// intersectTriBox tests a triangle against an origin-centered box using
// the separating axis theorem.
func intersectTriBox(triangle [3]math.Vec3, boxExtents math.Vec3) bool {
	a, b, c := triangle[0], triangle[1], triangle[2]
	edges := [3]math.Vec3{b.Sub(a), c.Sub(b), a.Sub(c)}

	normal := edges[0].Cross(edges[1])

	be := boxExtents
	for _, e := range edges {
		axes := [3]struct {
			rhs math.Vec3
			r   float32
		}{
			{math.Vec3{X: 0, Y: -e.Z, Z: e.Y}, be.Y*absf32(e.Z) + be.Z*absf32(e.Y)},
			{math.Vec3{X: e.Z, Y: 0, Z: -e.X}, be.X*absf32(e.Z) + be.Z*absf32(e.X)},
			{math.Vec3{X: -e.Y, Y: e.X, Z: 0}, be.X*absf32(e.Y) + be.Y*absf32(e.X)},
		}
		for _, axis := range axes {
			min, max := minMax3(a.Dot(axis.rhs), b.Dot(axis.rhs), c.Dot(axis.rhs))
			if maxf32(-max, min) > axis.r {
				return false
			}
		}
	}

	coords := func(v math.Vec3, dim int) float32 {
		switch dim {
		case 0:
			return v.X
		case 1:
			return v.Y
		}
		return v.Z
	}
	extents := [3]float32{boxExtents.X, boxExtents.Y, boxExtents.Z}
	for dim := 0; dim < 3; dim++ {
		min, max := minMax3(coords(a, dim), coords(b, dim), coords(c, dim))
		if max < -extents[dim] || min > extents[dim] {
			return false
		}
	}

	return normal.Dot(a) <= normal.Abs().Dot(boxExtents)
}

func minMax3(a, b, c float32) (float32, float32) {
	min, max := a, a
	for _, v := range []float32{b, c} {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func absf32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
