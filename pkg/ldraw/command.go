// Package ldraw parses LDraw brick CAD documents into typed commands
// and resolves multi-file documents into a source map.
package ldraw

import (
	"github.com/Faultbox/brickmesh/pkg/math"
)

// ColorCode identifies an LDraw color. Code 16 inherits the current color.
type ColorCode = uint32

// CurrentColor is the special code that inherits the color of the parent context.
const CurrentColor ColorCode = 16

// Winding is the vertex ordering of a face.
type Winding int

const (
	// CCW is counter-clockwise winding, the LDraw default.
	CCW Winding = iota
	// CW is clockwise winding.
	CW
)

// Command is a single parsed LDraw line.
type Command interface {
	isCommand()
}

// Color is an RGB color in sRGB space.
type Color struct {
	R, G, B uint8
}

// Transform is the 4x3 placement of a subfile reference, stored row-wise
// as it appears on the line.
type Transform struct {
	Pos  math.Vec3
	Row0 math.Vec3
	Row1 math.Vec3
	Row2 math.Vec3
}

// Matrix returns the 4x4 column-major transformation matrix.
func (t Transform) Matrix() math.Mat4 {
	return math.Mat4{
		t.Row0.X, t.Row1.X, t.Row2.X, 0,
		t.Row0.Y, t.Row1.Y, t.Row2.Y, 0,
		t.Row0.Z, t.Row1.Z, t.Row2.Z, 0,
		t.Pos.X, t.Pos.Y, t.Pos.Z, 1,
	}
}

// CommentCmd is a line type 0 comment. Any meta line that fails to parse as
// a known extension also ends up here.
type CommentCmd struct {
	Text string
}

// CategoryCmd is the !CATEGORY meta command.
type CategoryCmd struct {
	Category string
}

// KeywordsCmd is the !KEYWORDS meta command.
type KeywordsCmd struct {
	Keywords []string
}

// Finish describes the surface finish of a !COLOUR definition.
type Finish int

const (
	FinishNone Finish = iota
	FinishChrome
	FinishPearlescent
	FinishRubber
	FinishMatteMetallic
	FinishMetal
	FinishGlitter
	FinishSpeckle
	FinishOtherMaterial
)

func (f Finish) String() string {
	switch f {
	case FinishNone:
		return "plastic"
	case FinishChrome:
		return "chrome"
	case FinishPearlescent:
		return "pearlescent"
	case FinishRubber:
		return "rubber"
	case FinishMatteMetallic:
		return "matte metallic"
	case FinishMetal:
		return "metal"
	case FinishGlitter:
		return "glitter"
	case FinishSpeckle:
		return "speckle"
	default:
		return "material"
	}
}

// Material holds the parameters of a GLITTER or SPECKLE material finish.
type Material struct {
	Value           Color
	Alpha           uint8
	HasAlpha        bool
	Luminance       uint8
	HasLuminance    bool
	SurfaceFraction float32
	// VolumeFraction is only set for glitter materials.
	VolumeFraction float32
	// Grain size, either exact or a min/max range.
	Size    float32
	MinSize float32
	MaxSize float32
	// Other holds the raw text of unrecognized MATERIAL definitions.
	Other string
}

// ColourCmd is the !COLOUR meta command defining a color table entry.
type ColourCmd struct {
	Name         string
	Code         ColorCode
	Value        Color
	Edge         Color
	Alpha        uint8
	HasAlpha     bool
	Luminance    uint8
	HasLuminance bool
	Finish       Finish
	Material     *Material
}

// FileCmd starts a named sub-document in a multi-part document.
type FileCmd struct {
	File string
}

// NoFileCmd ends the current sub-document in a multi-part document.
type NoFileCmd struct{}

// DataCmd is the !DATA meta command naming an embedded binary file.
type DataCmd struct {
	File string
}

// Base64DataCmd is a decoded "0 !:" base64 chunk of an embedded file.
type Base64DataCmd struct {
	Data []byte
}

// SubFileRefCmd is a line type 1 reference placing another file.
type SubFileRefCmd struct {
	Color     ColorCode
	Transform Transform
	File      string
}

// LineCmd is a line type 2 edge segment.
type LineCmd struct {
	Color    ColorCode
	Vertices [2]math.Vec3
}

// TriangleCmd is a line type 3 triangle. UVs are an unofficial Studio
// extension and may be absent.
type TriangleCmd struct {
	Color    ColorCode
	Vertices [3]math.Vec3
	UVs      [3]math.Vec2
	HasUVs   bool
}

// QuadCmd is a line type 4 quadrilateral. UVs are an unofficial Studio
// extension and may be absent.
type QuadCmd struct {
	Color    ColorCode
	Vertices [4]math.Vec3
	UVs      [4]math.Vec2
	HasUVs   bool
}

// OptLineCmd is a line type 5 conditional edge. Control points are required
// by the standard but omitted by some Studio exports.
type OptLineCmd struct {
	Color         ColorCode
	Vertices      [2]math.Vec3
	ControlPoints [2]math.Vec3
}

// BfcMode is the kind of a BFC meta command.
type BfcMode int

const (
	// BfcNoCertify disables BFC processing for the file.
	BfcNoCertify BfcMode = iota
	// BfcCertify certifies the file, optionally setting the winding.
	BfcCertify
	// BfcWinding sets the winding for subsequent commands in the file.
	BfcWinding
	// BfcNoClip disables backface culling.
	BfcNoClip
	// BfcClip enables backface culling, optionally setting the winding.
	BfcClip
	// BfcInvertNext inverts the orientation of the next subfile reference.
	BfcInvertNext
)

// BfcCmd is a BFC language extension meta command.
type BfcCmd struct {
	Mode       BfcMode
	Winding    Winding
	HasWinding bool
}

// TexPathCmd is the PE_TEX_PATH Studio meta command. Paths index subfile
// references starting from the current file; the single path -1 addresses
// the current file itself.
type TexPathCmd struct {
	Paths []int
}

// TexInfoCmd is the PE_TEX_INFO Studio meta command carrying a decoded
// texture image and an optional planar projection.
type TexInfoCmd struct {
	Projection *TexProjection
	Data       []byte
}

// TexProjection maps vertex positions to texture coordinates.
type TexProjection struct {
	Transform Transform
	PointMin  math.Vec2
	PointMax  math.Vec2
}

func (CommentCmd) isCommand()    {}
func (CategoryCmd) isCommand()   {}
func (KeywordsCmd) isCommand()   {}
func (ColourCmd) isCommand()     {}
func (FileCmd) isCommand()       {}
func (NoFileCmd) isCommand()     {}
func (DataCmd) isCommand()       {}
func (Base64DataCmd) isCommand() {}
func (SubFileRefCmd) isCommand() {}
func (LineCmd) isCommand()       {}
func (TriangleCmd) isCommand()   {}
func (QuadCmd) isCommand()       {}
func (OptLineCmd) isCommand()    {}
func (BfcCmd) isCommand()        {}
func (TexPathCmd) isCommand()    {}
func (TexInfoCmd) isCommand()    {}
