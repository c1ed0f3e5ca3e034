package ldraw

import (
	stdmath "math"
)

// ColorInfo is a color table entry resolved from !COLOUR definitions,
// with channel values converted to linear color space for rendering.
type ColorInfo struct {
	Name       string
	Finish     Finish
	RGBALinear [4]float32
	// SpeckleRGBALinear is the secondary grain color of glitter and
	// speckle materials, if any.
	SpeckleRGBALinear *[4]float32
	IsMetallic        bool
	IsTransmissive    bool
}

// ColorTable maps numeric color codes to their definitions.
type ColorTable map[ColorCode]ColorInfo

// LoadColorTable reads the library color configuration file through the
// resolver and parses it into a table.
func LoadColorTable(resolver Resolver) (ColorTable, error) {
	data, err := resolver.Resolve("ldconfig.ldr")
	if err != nil {
		return nil, err
	}
	return ParseColorTable(data), nil
}

// ParseColorTable extracts all color definitions from raw LDR content.
// Commands other than !COLOUR are ignored.
func ParseColorTable(data []byte) ColorTable {
	table := make(ColorTable)
	for _, cmd := range ParseCommands(data) {
		c, ok := cmd.(ColourCmd)
		if !ok {
			continue
		}
		table[c.Code] = newColorInfo(c)
	}
	return table
}

func newColorInfo(c ColourCmd) ColorInfo {
	info := ColorInfo{
		Name:           c.Name,
		Finish:         c.Finish,
		RGBALinear:     rgbaLinear(c.Value, c.Alpha, c.HasAlpha),
		IsMetallic:     isMetallic(c.Finish),
		IsTransmissive: c.HasAlpha && c.Alpha < 255,
	}
	if m := c.Material; m != nil && (c.Finish == FinishGlitter || c.Finish == FinishSpeckle) {
		speckle := rgbaLinear(m.Value, m.Alpha, m.HasAlpha)
		info.SpeckleRGBALinear = &speckle
	}
	return info
}

func rgbaLinear(value Color, alpha uint8, hasAlpha bool) [4]float32 {
	a := float32(1)
	if hasAlpha {
		a = float32(alpha) / 255
	}
	return [4]float32{
		srgbToLinear(float32(value.R) / 255),
		srgbToLinear(float32(value.G) / 255),
		srgbToLinear(float32(value.B) / 255),
		a,
	}
}

func isMetallic(f Finish) bool {
	switch f {
	case FinishChrome, FinishMatteMetallic, FinishMetal:
		return true
	}
	return false
}

// srgbToLinear converts a single sRGB channel to linear color space.
func srgbToLinear(srgb float32) float32 {
	if srgb <= 0.04045 {
		return srgb / 12.92
	}
	return float32(stdmath.Pow(float64(srgb+0.055)/1.055, 2.4))
}
