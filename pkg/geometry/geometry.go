package geometry

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/brickmesh/pkg/ldraw"
	"github.com/Faultbox/brickmesh/pkg/math"
)

// StudStyle selects how stud geometry is generated.
type StudStyle int

const (
	// StudNormal uses the default stud model and quality.
	StudNormal StudStyle = iota
	// StudDisabled removes all visible and internal studs.
	StudDisabled
	// StudLogo4 uses a higher quality modeled logo suitable for
	// realistic rendering.
	StudLogo4
	// StudHighContrast draws stud walls in black similar to official
	// instructions.
	StudHighContrast
)

// Resolution selects the primitive detail level of the parts library.
type Resolution int

const (
	// ResolutionNormal is the standard primitive resolution.
	ResolutionNormal Resolution = iota
	// ResolutionLow prefers primitives from the p/8 folder.
	ResolutionLow
	// ResolutionHigh prefers primitives from the p/48 folder.
	ResolutionHigh
)

// Settings control mesh construction.
type Settings struct {
	Triangulate         bool
	AddGapBetweenParts  bool
	StudStyle           StudStyle
	WeldVertices        bool
	PrimitiveResolution Resolution
	SceneScale          float32
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{SceneScale: 1}
}

// NoTextureIndex marks a face without a texture in TextureInfo.Indices.
const NoTextureIndex = uint8(0xFF)

// Geometry is a flat indexed mesh assembled from a document and its
// referenced subfiles.
type Geometry struct {
	Vertices         []math.Vec3
	VertexIndices    []uint32
	FaceStartIndices []uint32
	FaceSizes        []uint32
	// FaceColors holds the color of each face, or a single element if
	// all faces share a color.
	FaceColors []ldraw.ColorCode
	IsFaceStud []bool
	// EdgeLineIndices are the end points of hard edges.
	EdgeLineIndices [][2]uint32
	// HasGrainySlopes is true if the geometry belongs to a slope piece
	// with grainy faces. Applications may want to texture such faces
	// based on an angle threshold.
	HasGrainySlopes bool
	TextureInfo     *TextureInfo
}

// TextureInfo carries the textures of a mesh built from the Studio
// texture extension.
type TextureInfo struct {
	// Textures holds PNG-encoded images.
	Textures [][]byte
	// Indices maps each face to a texture, with NoTextureIndex for
	// untextured faces. Eight-bit indices save memory for the
	// untextured majority of parts.
	Indices []uint8
	// UVs holds per-vertex coordinates for the entire mesh, including
	// untextured faces.
	UVs []math.Vec2
}

// textureInfo lazily initializes the texture buffers, backfilling faces
// and vertices added before the first texture appeared.
func (g *Geometry) textureInfo() *TextureInfo {
	if g.TextureInfo == nil {
		g.TextureInfo = &TextureInfo{
			Indices: make([]uint8, len(g.FaceStartIndices)),
			UVs:     make([]math.Vec2, len(g.VertexIndices)),
		}
		for i := range g.TextureInfo.Indices {
			g.TextureInfo.Indices[i] = NoTextureIndex
		}
	}
	return g.TextureInfo
}

// context carries the settings that inherit or accumulate when recursing
// into subfiles. It is copied down the recursion and never shared between
// siblings.
type context struct {
	currentColor ldraw.ColorCode
	transform    math.Mat4
	inverted     bool
	isStud       bool
	isSlope      bool
	textures     []pendingTexture
}

// CreateGeometry builds the mesh for a single document. With recursive
// set, subfile references are expanded through the source map.
func CreateGeometry(
	sourceFile *ldraw.SourceFile,
	sourceMap *ldraw.SourceMap,
	name string,
	currentColor ldraw.ColorCode,
	recursive bool,
	settings *Settings,
) *Geometry {
	geometry := &Geometry{
		HasGrainySlopes: IsSlopePiece(name),
	}

	// Parts should never start out inverted.
	ctx := context{
		currentColor: currentColor,
		transform:    math.Identity(),
		isStud:       isStud(name),
		isSlope:      IsSlopePiece(name),
	}

	vertexMap := NewVertexMap()
	var hardEdges [][2]math.Vec3

	appendGeometry(geometry, &hardEdges, vertexMap, sourceFile, sourceMap, ctx, recursive, settings)

	geometry.EdgeLineIndices = edgeIndices(hardEdges, vertexMap)

	if len(geometry.EdgeLineIndices) > 0 {
		splitVertices, splitIndices := SplitEdges(
			geometry.Vertices,
			geometry.VertexIndices,
			geometry.FaceStartIndices,
			geometry.FaceSizes,
			geometry.EdgeLineIndices,
		)
		// The edge indices stay valid since splitting only adds vertices.
		geometry.Vertices = splitVertices
		geometry.VertexIndices = splitIndices
	}

	// Collapse uniform face colors to a single element. A single color
	// can then be applied per object rather than per face.
	if len(geometry.FaceColors) > 0 {
		uniform := true
		for _, c := range geometry.FaceColors[1:] {
			if c != geometry.FaceColors[0] {
				uniform = false
				break
			}
		}
		if uniform {
			geometry.FaceColors = geometry.FaceColors[:1]
		}
	}

	var min, max math.Vec3
	for i, v := range geometry.Vertices {
		if i == 0 {
			min, max = v, v
			continue
		}
		min = min.Min(v)
		max = max.Max(v)
	}
	dimensions := max.Sub(min)

	scale := math.Splat(settings.SceneScale)
	if settings.AddGapBetweenParts {
		scale = gapsScale(dimensions).Scale(settings.SceneScale)
	}

	// Scale last so vertex welding happens in LDUs. This avoids small
	// floating point comparisons for small scene scales.
	for i := range geometry.Vertices {
		geometry.Vertices[i] = geometry.Vertices[i].Mul(scale)
	}

	return geometry
}

func isStud(name string) bool {
	return strings.Contains(name, "stu")
}

func gapsScale(dimensions math.Vec3) math.Vec3 {
	// Convert a distance between parts to a scale factor. The gap is in
	// LDUs since the part has not been scaled yet.
	const gapDistance = 0.1
	if dimensions.LengthSquared() > 0 {
		return math.Splat(2 * gapDistance).Sub(dimensions).Div(dimensions).Abs()
	}
	return math.Splat(1)
}

// edgeIndices resolves the transformed hard edge end points to mesh
// vertex indices.
func edgeIndices(edges [][2]math.Vec3, vertexMap *VertexMap) [][2]uint32 {
	var indices [][2]uint32
	for _, edge := range edges {
		i0, ok0 := vertexMap.Nearest(edge[0])
		i1, ok1 := vertexMap.Nearest(edge[1])
		if ok0 && ok1 {
			indices = append(indices, [2]uint32{i0, i1})
		}
	}
	return indices
}

func appendGeometry(
	geometry *Geometry,
	hardEdges *[][2]math.Vec3,
	vertexMap *VertexMap,
	sourceFile *ldraw.SourceFile,
	sourceMap *ldraw.SourceMap,
	ctx context,
	recursive bool,
	settings *Settings,
) {
	// The default winding can be assumed to be CCW. Winding can change
	// within a file but only applies to the current file's commands.
	currentWinding := ldraw.CCW

	currentInverted := ctx.inverted
	// Invert if the current transform is mirrored.
	if ctx.transform.Determinant() < 0 {
		currentInverted = !currentInverted
	}

	invertNext := false

	texPathIndex := 0
	var currentTexPath []int

	// Textures addressed to this file become active. The rest stay
	// pending for descendants.
	var activeTextures []pendingTexture
	var pendingTextures []pendingTexture
	for _, t := range ctx.textures {
		if len(t.path) == 0 {
			activeTextures = append(activeTextures, t)
		} else {
			pendingTextures = append(pendingTextures, t)
		}
	}
	ctx.textures = pendingTextures

	if len(activeTextures) > 1 {
		zap.L().Warn("multiple active textures, ignoring all but one")
	}

	activeTexture := func() *pendingTexture {
		if len(activeTextures) == 0 {
			return nil
		}
		return &activeTextures[0]
	}

	for _, cmd := range sourceFile.Cmds {
		switch c := cmd.(type) {
		case ldraw.BfcCmd:
			switch c.Mode {
			case ldraw.BfcCertify, ldraw.BfcWinding, ldraw.BfcClip:
				if c.HasWinding {
					currentWinding = c.Winding
				}
			case ldraw.BfcInvertNext:
				invertNext = true
			}
		case ldraw.TexPathCmd:
			currentTexPath = c.Paths
		case ldraw.TexInfoCmd:
			tex, ok := registerTexture(c, currentTexPath, geometry)
			if !ok {
				continue
			}
			if len(tex.path) == 1 && tex.path[0] == -1 {
				tex.path = nil
			}
			if len(tex.path) == 0 {
				if len(activeTextures) > 1 {
					zap.L().Warn("multiple active textures, ignoring all but one")
				}
				activeTextures = append(activeTextures, tex)
			} else {
				ctx.textures = append(ctx.textures, tex)
			}
		case ldraw.TriangleCmd:
			color := replaceColor(c.Color, ctx.currentColor)
			var uvs []math.Vec2
			if c.HasUVs {
				uvs = c.UVs[:]
			}
			addTriangleFace(geometry, &ctx, c.Vertices[:], uvs,
				invertWinding(currentWinding, currentInverted),
				vertexMap, color, settings.WeldVertices, activeTexture())
		case ldraw.QuadCmd:
			color := replaceColor(c.Color, ctx.currentColor)
			var uvs []math.Vec2
			if c.HasUVs {
				uvs = c.UVs[:]
			}
			if settings.Triangulate {
				var triUVs1, triUVs2 []math.Vec2
				if uvs != nil {
					triUVs1 = []math.Vec2{uvs[0], uvs[1], uvs[2]}
					triUVs2 = []math.Vec2{uvs[0], uvs[2], uvs[3]}
				}
				addTriangleFace(geometry, &ctx,
					[]math.Vec3{c.Vertices[0], c.Vertices[1], c.Vertices[2]}, triUVs1,
					invertWinding(currentWinding, currentInverted),
					vertexMap, color, settings.WeldVertices, activeTexture())
				addTriangleFace(geometry, &ctx,
					[]math.Vec3{c.Vertices[0], c.Vertices[2], c.Vertices[3]}, triUVs2,
					invertWinding(currentWinding, currentInverted),
					vertexMap, color, settings.WeldVertices, activeTexture())
			} else {
				addFace(geometry, ctx.transform, c.Vertices[:], uvs,
					invertWinding(currentWinding, currentInverted),
					vertexMap, settings.WeldVertices, activeTexture())
				geometry.FaceColors = append(geometry.FaceColors, color)
				geometry.IsFaceStud = append(geometry.IsFaceStud, ctx.isStud)
			}
		case ldraw.LineCmd:
			edge := [2]math.Vec3{
				ctx.transform.TransformVec3(c.Vertices[0]),
				ctx.transform.TransformVec3(c.Vertices[1]),
			}
			*hardEdges = append(*hardEdges, edge)
		case ldraw.SubFileRefCmd:
			if !recursive {
				continue
			}
			subfilename := replaceStuds(c.File, settings.StudStyle)
			subfile, ok := sourceMap.Get(subfilename)
			if !ok {
				continue
			}

			// Subfiles of slopes or studs are still slopes or studs.
			childIsStud := ctx.isStud || isStud(subfilename)
			childIsSlope := ctx.isSlope || IsSlopePiece(subfilename)

			// High contrast studs get black walls.
			var currentColor ldraw.ColorCode
			if childIsStud && settings.StudStyle == StudHighContrast &&
				strings.Contains(subfilename, "cyli.dat") {
				currentColor = 0
			} else {
				currentColor = replaceColor(c.Color, ctx.currentColor)
			}

			childTextures := append([]pendingTexture{}, activeTextures...)
			for _, texture := range ctx.textures {
				if len(texture.path) > 0 && texture.path[0] == texPathIndex {
					child := texture
					child.path = texture.path[1:]
					childTextures = append(childTextures, child)
				}
			}

			// The determinant is checked per file, so it is not part of
			// the child's context.
			childInverted := ctx.inverted
			if invertNext {
				childInverted = !childInverted
			}
			childCtx := context{
				currentColor: currentColor,
				transform:    ctx.transform.Mul(c.Transform.Matrix()),
				inverted:     childInverted,
				isStud:       childIsStud,
				isSlope:      childIsSlope,
				textures:     childTextures,
			}

			// Only the next subfile reference is inverted.
			invertNext = false

			appendGeometry(geometry, hardEdges, vertexMap, subfile, sourceMap,
				childCtx, recursive, settings)

			texPathIndex++
		}
	}
}

func replaceColor(color, currentColor ldraw.ColorCode) ldraw.ColorCode {
	if color == ldraw.CurrentColor {
		return currentColor
	}
	return color
}

// replaceStuds swaps stud references based on the configured style.
func replaceStuds(file string, style StudStyle) string {
	switch style {
	case StudDisabled:
		if isStud(file) {
			return ""
		}
	case StudLogo4:
		switch file {
		case "stud.dat":
			return "stud-logo4.dat"
		case "stud2.dat":
			return "stud2-logo4.dat"
		case "stud20.dat":
			return "stud20-logo4.dat"
		}
	}
	return file
}

func addTriangleFace(
	geometry *Geometry,
	ctx *context,
	vertices []math.Vec3,
	uvs []math.Vec2,
	winding ldraw.Winding,
	vertexMap *VertexMap,
	color ldraw.ColorCode,
	weldVertices bool,
	texture *pendingTexture,
) {
	addFace(geometry, ctx.transform, vertices, uvs, winding, vertexMap, weldVertices, texture)
	geometry.FaceColors = append(geometry.FaceColors, color)
	geometry.IsFaceStud = append(geometry.IsFaceStud, ctx.isStud)
}

func invertWinding(winding ldraw.Winding, invert bool) ldraw.Winding {
	if !invert {
		return winding
	}
	if winding == ldraw.CCW {
		return ldraw.CW
	}
	return ldraw.CCW
}

func addFace(
	geometry *Geometry,
	transform math.Mat4,
	vertices []math.Vec3,
	uvs []math.Vec2,
	winding ldraw.Winding,
	vertexMap *VertexMap,
	weldVertices bool,
	texture *pendingTexture,
) {
	verts := append([]math.Vec3{}, vertices...)
	if winding == ldraw.CW {
		for i, j := 0, len(verts)-1; i < j; i, j = i+1, j-1 {
			verts[i], verts[j] = verts[j], verts[i]
		}
	}

	var texmap *textureMap
	if texture != nil {
		texmap = projectTexture(texture, transform, verts, uvs)
	}

	startingIndex := uint32(len(geometry.VertexIndices))
	for _, v := range verts {
		index := insertVertex(geometry, transform, v, vertexMap, weldVertices)
		geometry.VertexIndices = append(geometry.VertexIndices, index)
	}
	geometry.FaceStartIndices = append(geometry.FaceStartIndices, startingIndex)
	geometry.FaceSizes = append(geometry.FaceSizes, uint32(len(verts)))

	if texmap != nil {
		info := geometry.textureInfo()
		info.Indices = append(info.Indices, texmap.textureIndex)
		info.UVs = append(info.UVs, texmap.uvs...)
	} else if info := geometry.TextureInfo; info != nil {
		// Pad untextured faces so every vertex gets a UV, but only once
		// the buffers already exist.
		info.Indices = append(info.Indices, NoTextureIndex)
		for range verts {
			info.UVs = append(info.UVs, math.Vec2{})
		}
	}
}

func insertVertex(
	geometry *Geometry,
	transform math.Mat4,
	vertex math.Vec3,
	vertexMap *VertexMap,
	weldVertices bool,
) uint32 {
	newVertex := transform.TransformVec3(vertex)
	newIndex := uint32(len(geometry.Vertices))

	if !weldVertices {
		geometry.Vertices = append(geometry.Vertices, newVertex)
		return newIndex
	}
	if existing, ok := vertexMap.Insert(newIndex, newVertex); ok {
		return existing
	}
	geometry.Vertices = append(geometry.Vertices, newVertex)
	return newIndex
}

