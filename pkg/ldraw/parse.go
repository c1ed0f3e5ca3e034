package ldraw

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/brickmesh/pkg/math"
)

// ParseCommands parses raw LDR content into one command per line without
// resolving subfile references. A UTF-8 byte-order mark is stripped, and
// both LF and CRLF line endings are accepted. Lines that fail to parse are
// logged and skipped so that damaged files still import partially.
func ParseCommands(data []byte) []Command {
	data = stripBOM(data)

	var cmds []Command
	for _, raw := range bytes.FieldsFunc(data, isLineBreak) {
		line := string(raw)
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmd, err := parseLine(line)
		if err != nil {
			zap.L().Error("skipping unparseable line",
				zap.String("line", line),
				zap.Error(err))
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}

func parseLine(line string) (Command, error) {
	sc := newScanner(line)
	lineType, ok := sc.next()
	if !ok {
		return nil, errors.New("empty line")
	}

	switch lineType {
	case "0":
		return parseMeta(sc), nil
	case "1":
		return parseSubFileRef(sc)
	case "2":
		return parseLineSegment(sc)
	case "3":
		return parseTriangle(sc)
	case "4":
		return parseQuad(sc)
	case "5":
		return parseOptLine(sc)
	default:
		return nil, fmt.Errorf("invalid line type %q", lineType)
	}
}

// scanner walks whitespace-delimited tokens of a single line.
// Whitespace is spaces and tabs per the LDraw standard.
type scanner struct {
	s   string
	pos int
}

func newScanner(s string) *scanner {
	return &scanner{s: s}
}

func (sc *scanner) skipSpace() {
	for sc.pos < len(sc.s) && (sc.s[sc.pos] == ' ' || sc.s[sc.pos] == '\t') {
		sc.pos++
	}
}

func (sc *scanner) next() (string, bool) {
	sc.skipSpace()
	start := sc.pos
	for sc.pos < len(sc.s) && sc.s[sc.pos] != ' ' && sc.s[sc.pos] != '\t' {
		sc.pos++
	}
	if start == sc.pos {
		return "", false
	}
	return sc.s[start:sc.pos], true
}

// rest consumes and returns the remainder of the line with surrounding
// whitespace trimmed. Used for comment text and filenames with spaces.
func (sc *scanner) rest() string {
	sc.skipSpace()
	r := strings.TrimRight(sc.s[sc.pos:], " \t")
	sc.pos = len(sc.s)
	return r
}

func (sc *scanner) float() (float32, error) {
	tok, ok := sc.next()
	if !ok {
		return 0, errors.New("expected number")
	}
	f, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", tok)
	}
	return float32(f), nil
}

func (sc *scanner) vec2() (math.Vec2, error) {
	x, err := sc.float()
	if err != nil {
		return math.Vec2{}, err
	}
	y, err := sc.float()
	if err != nil {
		return math.Vec2{}, err
	}
	return math.Vec2{X: x, Y: y}, nil
}

func (sc *scanner) vec3() (math.Vec3, error) {
	x, err := sc.float()
	if err != nil {
		return math.Vec3{}, err
	}
	y, err := sc.float()
	if err != nil {
		return math.Vec3{}, err
	}
	z, err := sc.float()
	if err != nil {
		return math.Vec3{}, err
	}
	return math.Vec3{X: x, Y: y, Z: z}, nil
}

// colorCode parses a color code. Some older files use hex codes with or
// without a 0x prefix.
func (sc *scanner) colorCode() (ColorCode, error) {
	tok, ok := sc.next()
	if !ok {
		return 0, errors.New("expected color code")
	}
	if v, err := strconv.ParseUint(tok, 10, 32); err == nil {
		return ColorCode(v), nil
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color code %q", tok)
	}
	return ColorCode(v), nil
}

func (sc *scanner) transform() (Transform, error) {
	var t Transform
	var err error
	if t.Pos, err = sc.vec3(); err != nil {
		return t, err
	}
	if t.Row0, err = sc.vec3(); err != nil {
		return t, err
	}
	if t.Row1, err = sc.vec3(); err != nil {
		return t, err
	}
	if t.Row2, err = sc.vec3(); err != nil {
		return t, err
	}
	return t, nil
}

// parseMeta parses a line type 0 meta command. Anything that is not a
// recognized extension falls back to a generic comment.
func parseMeta(sc *scanner) Command {
	mark := *sc
	tok, ok := sc.next()
	if !ok {
		return CommentCmd{}
	}

	var cmd Command
	var err error
	switch tok {
	case "!CATEGORY":
		if rest := sc.rest(); rest != "" {
			return CategoryCmd{Category: rest}
		}
	case "!KEYWORDS":
		if rest := sc.rest(); rest != "" {
			parts := strings.Split(rest, ",")
			keywords := make([]string, 0, len(parts))
			for _, p := range parts {
				keywords = append(keywords, strings.TrimSpace(p))
			}
			return KeywordsCmd{Keywords: keywords}
		}
	case "!COLOUR":
		if cmd, err = parseColour(sc); err == nil {
			return cmd
		}
	case "FILE":
		if rest := sc.rest(); rest != "" {
			return FileCmd{File: rest}
		}
	case "NOFILE":
		return NoFileCmd{}
	case "!DATA":
		if rest := sc.rest(); rest != "" {
			return DataCmd{File: rest}
		}
	case "!:":
		if data, derr := decodeBase64(sc.rest()); derr == nil {
			return Base64DataCmd{Data: data}
		}
	case "BFC":
		if cmd, err = parseBfc(sc); err == nil {
			return cmd
		}
	case "PE_TEX_PATH":
		if cmd, err = parseTexPath(sc); err == nil {
			return cmd
		}
	case "PE_TEX_INFO":
		if cmd, err = parseTexInfo(sc); err == nil {
			return cmd
		}
	}

	*sc = mark
	return CommentCmd{Text: sc.rest()}
}

func parseColour(sc *scanner) (Command, error) {
	cmd := ColourCmd{}

	name, ok := sc.next()
	if !ok {
		return nil, errors.New("expected color name")
	}
	cmd.Name = name

	if err := expect(sc, "CODE"); err != nil {
		return nil, err
	}
	code, err := sc.colorCode()
	if err != nil {
		return nil, err
	}
	cmd.Code = code

	if err := expect(sc, "VALUE"); err != nil {
		return nil, err
	}
	if cmd.Value, err = hexColor(sc); err != nil {
		return nil, err
	}

	if err := expect(sc, "EDGE"); err != nil {
		return nil, err
	}
	if cmd.Edge, err = hexColor(sc); err != nil {
		return nil, err
	}

	if cmd.Alpha, cmd.HasAlpha, err = optionalByte(sc, "ALPHA"); err != nil {
		return nil, err
	}
	if cmd.Luminance, cmd.HasLuminance, err = optionalByte(sc, "LUMINANCE"); err != nil {
		return nil, err
	}

	if cmd.Finish, cmd.Material, err = parseFinish(sc); err != nil {
		return nil, err
	}
	return cmd, nil
}

func parseFinish(sc *scanner) (Finish, *Material, error) {
	mark := *sc
	tok, ok := sc.next()
	if !ok {
		return FinishNone, nil, nil
	}
	switch strings.ToUpper(tok) {
	case "CHROME":
		return FinishChrome, nil, nil
	case "PEARLESCENT":
		return FinishPearlescent, nil, nil
	case "RUBBER":
		return FinishRubber, nil, nil
	case "MATTE_METALLIC":
		return FinishMatteMetallic, nil, nil
	case "METAL":
		return FinishMetal, nil, nil
	case "MATERIAL":
		return parseMaterial(sc)
	}
	*sc = mark
	return FinishNone, nil, fmt.Errorf("unexpected token %q", tok)
}

func parseMaterial(sc *scanner) (Finish, *Material, error) {
	mark := *sc
	tok, ok := sc.next()
	if !ok {
		return FinishNone, nil, errors.New("expected material kind")
	}

	var finish Finish
	switch strings.ToUpper(tok) {
	case "GLITTER":
		finish = FinishGlitter
	case "SPECKLE":
		finish = FinishSpeckle
	default:
		// Unrecognized material definitions keep their raw text.
		*sc = mark
		return FinishOtherMaterial, &Material{Other: sc.rest()}, nil
	}

	m := &Material{}
	if err := expectNoCase(sc, "VALUE"); err != nil {
		return FinishNone, nil, err
	}
	var err error
	if m.Value, err = hexColor(sc); err != nil {
		return FinishNone, nil, err
	}
	if m.Alpha, m.HasAlpha, err = optionalByte(sc, "ALPHA"); err != nil {
		return FinishNone, nil, err
	}
	if m.Luminance, m.HasLuminance, err = optionalByte(sc, "LUMINANCE"); err != nil {
		return FinishNone, nil, err
	}
	if err := expectNoCase(sc, "FRACTION"); err != nil {
		return FinishNone, nil, err
	}
	if m.SurfaceFraction, err = sc.float(); err != nil {
		return FinishNone, nil, err
	}
	if finish == FinishGlitter {
		if err := expectNoCase(sc, "VFRACTION"); err != nil {
			return FinishNone, nil, err
		}
		if m.VolumeFraction, err = sc.float(); err != nil {
			return FinishNone, nil, err
		}
	}

	tok, ok = sc.next()
	if !ok {
		return FinishNone, nil, errors.New("expected grain size")
	}
	switch strings.ToUpper(tok) {
	case "SIZE":
		if m.Size, err = sc.float(); err != nil {
			return FinishNone, nil, err
		}
	case "MINSIZE":
		if m.MinSize, err = sc.float(); err != nil {
			return FinishNone, nil, err
		}
		if err := expectNoCase(sc, "MAXSIZE"); err != nil {
			return FinishNone, nil, err
		}
		if m.MaxSize, err = sc.float(); err != nil {
			return FinishNone, nil, err
		}
	default:
		return FinishNone, nil, fmt.Errorf("unexpected grain size token %q", tok)
	}
	return finish, m, nil
}

func parseBfc(sc *scanner) (Command, error) {
	tok, ok := sc.next()
	if !ok {
		return nil, errors.New("expected BFC directive")
	}
	switch tok {
	case "NOCERTIFY":
		return BfcCmd{Mode: BfcNoCertify}, nil
	case "CERTIFY":
		w, has := optionalWinding(sc)
		return BfcCmd{Mode: BfcCertify, Winding: w, HasWinding: has}, nil
	case "NOCLIP":
		return BfcCmd{Mode: BfcNoClip}, nil
	case "CLIP":
		w, has := optionalWinding(sc)
		return BfcCmd{Mode: BfcClip, Winding: w, HasWinding: has}, nil
	case "INVERTNEXT":
		return BfcCmd{Mode: BfcInvertNext}, nil
	}
	if w, ok := parseWinding(tok); ok {
		return BfcCmd{Mode: BfcWinding, Winding: w, HasWinding: true}, nil
	}
	return nil, fmt.Errorf("unknown BFC directive %q", tok)
}

func optionalWinding(sc *scanner) (Winding, bool) {
	mark := *sc
	tok, ok := sc.next()
	if !ok {
		return CCW, false
	}
	if w, ok := parseWinding(tok); ok {
		return w, true
	}
	*sc = mark
	return CCW, false
}

func parseWinding(tok string) (Winding, bool) {
	switch strings.ToUpper(tok) {
	case "CW":
		return CW, true
	case "CCW":
		return CCW, true
	}
	return CCW, false
}

func parseTexPath(sc *scanner) (Command, error) {
	var paths []int
	for {
		tok, ok := sc.next()
		if !ok {
			break
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid texture path index %q", tok)
		}
		paths = append(paths, n)
	}
	if len(paths) == 0 {
		return nil, errors.New("expected texture path indices")
	}
	return TexPathCmd{Paths: paths}, nil
}

func parseTexInfo(sc *scanner) (Command, error) {
	var toks []string
	for {
		tok, ok := sc.next()
		if !ok {
			break
		}
		toks = append(toks, tok)
	}

	var projection *TexProjection
	var image string
	switch len(toks) {
	case 1:
		image = toks[0]
	case 17:
		nums := newScanner(strings.Join(toks[:16], " "))
		transform, err := nums.transform()
		if err != nil {
			return nil, err
		}
		pointMin, err := nums.vec2()
		if err != nil {
			return nil, err
		}
		pointMax, err := nums.vec2()
		if err != nil {
			return nil, err
		}
		projection = &TexProjection{
			Transform: transform,
			PointMin:  pointMin,
			PointMax:  pointMax,
		}
		image = toks[16]
	default:
		return nil, fmt.Errorf("unexpected texture info token count %d", len(toks))
	}

	data, err := decodeBase64(image)
	if err != nil {
		return nil, fmt.Errorf("invalid texture data: %w", err)
	}
	return TexInfoCmd{Projection: projection, Data: data}, nil
}

func parseSubFileRef(sc *scanner) (Command, error) {
	color, err := sc.colorCode()
	if err != nil {
		return nil, err
	}
	transform, err := sc.transform()
	if err != nil {
		return nil, err
	}
	file := sc.rest()
	if file == "" {
		return nil, errors.New("expected subfile name")
	}
	return SubFileRefCmd{Color: color, Transform: transform, File: file}, nil
}

func parseLineSegment(sc *scanner) (Command, error) {
	cmd := LineCmd{}
	var err error
	if cmd.Color, err = sc.colorCode(); err != nil {
		return nil, err
	}
	for i := range cmd.Vertices {
		if cmd.Vertices[i], err = sc.vec3(); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

func parseTriangle(sc *scanner) (Command, error) {
	cmd := TriangleCmd{}
	var err error
	if cmd.Color, err = sc.colorCode(); err != nil {
		return nil, err
	}
	for i := range cmd.Vertices {
		if cmd.Vertices[i], err = sc.vec3(); err != nil {
			return nil, err
		}
	}

	mark := *sc
	var uvs [3]math.Vec2
	for i := range uvs {
		if uvs[i], err = sc.vec2(); err != nil {
			*sc = mark
			return cmd, nil
		}
	}
	cmd.UVs = uvs
	cmd.HasUVs = true
	return cmd, nil
}

func parseQuad(sc *scanner) (Command, error) {
	cmd := QuadCmd{}
	var err error
	if cmd.Color, err = sc.colorCode(); err != nil {
		return nil, err
	}
	for i := range cmd.Vertices {
		if cmd.Vertices[i], err = sc.vec3(); err != nil {
			return nil, err
		}
	}

	mark := *sc
	var uvs [4]math.Vec2
	for i := range uvs {
		if uvs[i], err = sc.vec2(); err != nil {
			*sc = mark
			return cmd, nil
		}
	}
	cmd.UVs = uvs
	cmd.HasUVs = true
	return cmd, nil
}

func parseOptLine(sc *scanner) (Command, error) {
	cmd := OptLineCmd{}
	var err error
	if cmd.Color, err = sc.colorCode(); err != nil {
		return nil, err
	}
	for i := range cmd.Vertices {
		if cmd.Vertices[i], err = sc.vec3(); err != nil {
			return nil, err
		}
	}

	// Control points are required by the standard but parsed as optional
	// to support Bricklink Studio files.
	mark := *sc
	var controls [2]math.Vec3
	for i := range controls {
		if controls[i], err = sc.vec3(); err != nil {
			*sc = mark
			return cmd, nil
		}
	}
	cmd.ControlPoints = controls
	return cmd, nil
}

func expect(sc *scanner, keyword string) error {
	tok, ok := sc.next()
	if !ok || tok != keyword {
		return fmt.Errorf("expected %s, got %q", keyword, tok)
	}
	return nil
}

func expectNoCase(sc *scanner, keyword string) error {
	tok, ok := sc.next()
	if !ok || !strings.EqualFold(tok, keyword) {
		return fmt.Errorf("expected %s, got %q", keyword, tok)
	}
	return nil
}

func hexColor(sc *scanner) (Color, error) {
	tok, ok := sc.next()
	if !ok {
		return Color{}, errors.New("expected hex color")
	}
	hex, found := strings.CutPrefix(tok, "#")
	if !found || len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q", tok)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q", tok)
	}
	return Color{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

func optionalByte(sc *scanner, keyword string) (uint8, bool, error) {
	mark := *sc
	tok, ok := sc.next()
	if !ok {
		return 0, false, nil
	}
	if tok != keyword {
		*sc = mark
		return 0, false, nil
	}
	num, ok := sc.next()
	if !ok {
		return 0, false, fmt.Errorf("expected value after %s", keyword)
	}
	v, err := strconv.ParseUint(num, 10, 8)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s value %q", keyword, num)
	}
	return uint8(v), true, nil
}

// decodeBase64 accepts both padded and unpadded standard encoding.
func decodeBase64(s string) ([]byte, error) {
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
