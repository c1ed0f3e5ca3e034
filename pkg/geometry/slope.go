package geometry

import (
	stdmath "math"

	"github.com/Faultbox/brickmesh/pkg/math"
)

// slopeAngles maps slope piece filenames to their printed slope angle in
// degrees. Only a handful of pieces deviate from 45 degrees.
var slopeAngles = map[string]int{
	"962.dat":     45,
	"2341.dat":    45,
	"2449.dat":    45,
	"2875.dat":    45,
	"2876.dat":    40,
	"3037.dat":    45,
	"3038.dat":    45,
	"3039.dat":    45,
	"3040.dat":    45,
	"3041.dat":    45,
	"3042.dat":    45,
	"3043.dat":    45,
	"3044.dat":    45,
	"3045.dat":    45,
	"3046.dat":    45,
	"3048.dat":    45,
	"3049.dat":    45,
	"3135.dat":    45,
	"3297.dat":    45,
	"3298.dat":    45,
	"3299.dat":    45,
	"3300.dat":    45,
	"3660.dat":    45,
	"3665.dat":    45,
	"3675.dat":    45,
	"3676.dat":    45,
	"3678b.dat":   45,
	"3684.dat":    45,
	"3685.dat":    45,
	"3688.dat":    45,
	"3747.dat":    45,
	"4089.dat":    45,
	"4161.dat":    45,
	"4286.dat":    45,
	"4287.dat":    45,
	"4445.dat":    45,
	"4460.dat":    45,
	"4509.dat":    45,
	"4854.dat":    45,
	"4856.dat":    45,
	"4857.dat":    45,
	"4858.dat":    45,
	"4861.dat":    45,
	"4871.dat":    45,
	"6069.dat":    45,
	"6153.dat":    45,
	"6227.dat":    45,
	"6270.dat":    45,
	"13269.dat":   45,
	"13548.dat":   45,
	"15571.dat":   45,
	"18759.dat":   45,
	"22390.dat":   45,
	"22391.dat":   45,
	"22889.dat":   45,
	"28192.dat":   45,
	"30180.dat":   45,
	"30182.dat":   45,
	"30183.dat":   45,
	"30249.dat":   45,
	"30283.dat":   45,
	"30363.dat":   45,
	"30373.dat":   45,
	"30382.dat":   45,
	"30390.dat":   45,
	"30499.dat":   45,
	"32083.dat":   45,
	"43708.dat":   45,
	"43710.dat":   45,
	"43711.dat":   45,
	"47759.dat":   45,
	"52501.dat":   45,
	"60219.dat":   45,
	"60477.dat":   45,
	"60481.dat":   45,
	"63341.dat":   45,
	"72454.dat":   45,
	"92946.dat":   45,
	"93348.dat":   45,
	"95188.dat":   45,
	"99301.dat":   45,
	"303923.dat":  45,
	"303926.dat":  45,
	"304826.dat":  45,
	"329826.dat":  45,
	"374726.dat":  45,
	"428621.dat":  45,
	"4162628.dat": 45,
	"4195004.dat": 45,
}

// IsSlopePiece reports whether the filename names a slope piece with
// grainy printed faces.
func IsSlopePiece(name string) bool {
	_, ok := slopeAngles[name]
	return ok
}

// IsGrainySlope reports whether a face on a slope piece is one of the
// grainy sloped faces based on its angle to the ground plane. Studs are
// always smooth regardless of their slope.
func IsGrainySlope(face []math.Vec3, isSlope, isStud bool) bool {
	if !isSlope || isStud {
		return false
	}
	normal := face[1].Sub(face[0]).Cross(face[2].Sub(face[0])).Normalize()
	cosine := clampf(normal.Y, -1, 1)
	angleToGround := float32(stdmath.Acos(float64(cosine)))*180/stdmath.Pi - 90
	abs := angleToGround
	if abs < 0 {
		abs = -abs
	}
	return abs >= 15 && abs <= 75
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
