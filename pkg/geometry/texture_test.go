package geometry

import (
	"testing"

	"github.com/Faultbox/brickmesh/pkg/math"
)

func TestIntersectTriBox(t *testing.T) {
	box := geometryVec(1, 1, 1)

	inside := [3]math.Vec3{
		geometryVec(-0.5, 0, 0),
		geometryVec(0.5, 0, 0),
		geometryVec(0, 0.5, 0),
	}
	if !intersectTriBox(inside, box) {
		t.Error("triangle inside the box should intersect")
	}

	outside := [3]math.Vec3{
		geometryVec(5, 5, 5),
		geometryVec(6, 5, 5),
		geometryVec(5, 6, 5),
	}
	if intersectTriBox(outside, box) {
		t.Error("triangle far from the box should not intersect")
	}

	// A large triangle enclosing the box still intersects.
	enclosing := [3]math.Vec3{
		geometryVec(-10, 0, -10),
		geometryVec(10, 0, -10),
		geometryVec(0, 0, 10),
	}
	if !intersectTriBox(enclosing, box) {
		t.Error("triangle enclosing the box should intersect")
	}
}

func TestProjectTextureExplicitUVs(t *testing.T) {
	texture := &pendingTexture{index: 3}
	uvs := []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}

	got := projectTexture(texture, math.Identity(), []math.Vec3{{}, {}, {}}, uvs)
	if got == nil {
		t.Fatal("projectTexture = nil, want explicit UVs")
	}
	if got.textureIndex != 3 {
		t.Errorf("textureIndex = %d, want 3", got.textureIndex)
	}
	if len(got.uvs) != 3 || got.uvs[2] != (math.Vec2{X: 1, Y: 1}) {
		t.Errorf("uvs = %v", got.uvs)
	}
}

func TestProjectTextureNoLocation(t *testing.T) {
	texture := &pendingTexture{index: 0}
	got := projectTexture(texture, math.Identity(), []math.Vec3{{}, {}, {}}, nil)
	if got != nil {
		t.Errorf("projectTexture = %+v, want nil without UVs or projection", got)
	}
}

func TestProjectTexturePlanar(t *testing.T) {
	// A unit box projection over the XZ plane maps positions to UVs.
	texture := &pendingTexture{
		index: 0,
		location: &textureLocation{
			transform: math.Scale(2, 2, 2),
			pointMin:  math.Vec2{X: -1, Y: -1},
			pointMax:  math.Vec2{X: 1, Y: 1},
		},
	}

	face := []math.Vec3{
		{X: -1, Y: 0, Z: -1},
		{X: 1, Y: 0, Z: -1},
		{X: 0, Y: 0, Z: 1},
	}
	got := projectTexture(texture, math.Identity(), face, nil)
	if got == nil {
		t.Fatal("projectTexture = nil, want a projection")
	}
	if len(got.uvs) != 3 {
		t.Fatalf("len(uvs) = %d, want 3", len(got.uvs))
	}
	if got.uvs[0].X < 0 || got.uvs[0].X > 1 || got.uvs[0].Y < 0 || got.uvs[0].Y > 1 {
		t.Errorf("uvs[0] = %v, want within [0, 1]", got.uvs[0])
	}
}

func TestCreateGeometryStudioTexture(t *testing.T) {
	document := "0 PE_TEX_PATH -1\n" +
		"0 PE_TEX_INFO aGVsbG8=\n" +
		"3 16 0 0 0 1 0 0 0 1 0 0 0 1 0 0.5 1\n" +
		"3 16 0 0 2 1 0 2 0 1 2\n"

	settings := DefaultSettings()
	settings.WeldVertices = true
	geometry := buildGeometry(t, document, 16, settings)

	info := geometry.TextureInfo
	if info == nil {
		t.Fatal("TextureInfo = nil")
	}
	if len(info.Textures) != 1 || string(info.Textures[0]) != "hello" {
		t.Errorf("Textures = %v", info.Textures)
	}
	// The textured face uses texture 0, the untextured face the sentinel.
	if len(info.Indices) != 2 || info.Indices[0] != 0 || info.Indices[1] != NoTextureIndex {
		t.Errorf("Indices = %v", info.Indices)
	}
	// Every vertex gets a UV, padded with zeros for untextured faces.
	if len(info.UVs) != len(geometry.VertexIndices) {
		t.Errorf("len(UVs) = %d, want %d", len(info.UVs), len(geometry.VertexIndices))
	}
}
