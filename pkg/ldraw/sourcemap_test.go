package ldraw

import (
	"errors"
	"testing"

	"github.com/Faultbox/brickmesh/pkg/math"
)

func TestSourceMapNormalization(t *testing.T) {
	m := NewSourceMap()

	m.Insert(NewPath("p\\part.dat"), &SourceFile{})
	if _, ok := m.Get("p/part.DAT"); !ok {
		t.Error("p/part.DAT not found")
	}

	m.Insert(NewPath("TEST.LDR"), &SourceFile{})
	if _, ok := m.Get("test.LDR"); !ok {
		t.Error("test.LDR not found")
	}

	m.Insert(NewPath("a//b\\\\c//d.dat"), &SourceFile{})
	if _, ok := m.Get("a/b/c/d.dat"); !ok {
		t.Error("a/b/c/d.dat not found")
	}
}

func subRef(file string) Command {
	return SubFileRefCmd{
		Color: CurrentColor,
		Transform: Transform{
			Row0: math.Vec3{X: 1},
			Row1: math.Vec3{Y: 1},
			Row2: math.Vec3{Z: 1},
		},
		File: file,
	}
}

func TestSplitMPDFile(t *testing.T) {
	cmds := []Command{
		FileCmd{File: "a"},
		subRef("1.dat"),
		NoFileCmd{},
		FileCmd{File: "b"},
		subRef("2.dat"),
		NoFileCmd{},
	}
	blocks := splitMPDFile(cmds)
	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2", len(blocks))
	}
	if blocks[0].name != "a" || len(blocks[0].file.Cmds) != 2 {
		t.Errorf("blocks[0] = %q with %d commands", blocks[0].name, len(blocks[0].file.Cmds))
	}
	if blocks[1].name != "b" || len(blocks[1].file.Cmds) != 2 {
		t.Errorf("blocks[1] = %q with %d commands", blocks[1].name, len(blocks[1].file.Cmds))
	}
}

func TestSplitMPDFileNoTerminators(t *testing.T) {
	cmds := []Command{
		FileCmd{File: "a"},
		subRef("1.dat"),
		FileCmd{File: "b"},
		subRef("2.dat"),
	}
	blocks := splitMPDFile(cmds)
	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2", len(blocks))
	}
	if len(blocks[0].file.Cmds) != 2 || len(blocks[1].file.Cmds) != 2 {
		t.Errorf("block sizes = %d, %d, want 2, 2",
			len(blocks[0].file.Cmds), len(blocks[1].file.Cmds))
	}
}

// mapResolver resolves file contents from an in-memory map.
type mapResolver map[string]string

func (r mapResolver) Resolve(filename string) ([]byte, error) {
	content, ok := r[filename]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(content), nil
}

func TestParseRecursive(t *testing.T) {
	resolver := mapResolver{
		"root.ldr": "1 16 0 0 0 1 0 0 0 1 0 0 0 1 child.dat\n",
		"child.dat": "3 16 0 0 0 1 0 0 0 1 0\n" +
			"1 16 0 0 0 1 0 0 0 1 0 0 0 1 leaf.dat\n",
		"leaf.dat": "3 16 0 0 0 1 0 0 0 1 0\n",
	}

	sm := NewSourceMap()
	main := Parse("root.ldr", resolver, sm)

	if main != "root.ldr" {
		t.Errorf("main model = %q, want root.ldr", main)
	}
	for _, name := range []string{"root.ldr", "child.dat", "leaf.dat"} {
		if _, ok := sm.Get(name); !ok {
			t.Errorf("%s not loaded", name)
		}
	}
}

func TestParseMPDMainModel(t *testing.T) {
	resolver := mapResolver{
		"model.mpd": "0 FILE main.ldr\n" +
			"1 16 0 0 0 1 0 0 0 1 0 0 0 1 sub.ldr\n" +
			"0 NOFILE\n" +
			"0 FILE sub.ldr\n" +
			"3 16 0 0 0 1 0 0 0 1 0\n" +
			"0 NOFILE\n",
	}

	sm := NewSourceMap()
	main := Parse("model.mpd", resolver, sm)

	if main != "main.ldr" {
		t.Errorf("main model = %q, want main.ldr", main)
	}
	if _, ok := sm.Get("sub.ldr"); !ok {
		t.Error("sub.ldr not registered")
	}
	// The whole file stays accessible under its own name too.
	if _, ok := sm.Get("model.mpd"); !ok {
		t.Error("model.mpd not registered")
	}
}

func TestParseUnresolvedFileIsEmpty(t *testing.T) {
	resolver := mapResolver{
		"root.ldr": "1 16 0 0 0 1 0 0 0 1 0 0 0 1 missing.dat\n",
	}

	sm := NewSourceMap()
	Parse("root.ldr", resolver, sm)

	missing, ok := sm.Get("missing.dat")
	if !ok {
		t.Fatal("missing.dat should be present with empty content")
	}
	if len(missing.Cmds) != 0 {
		t.Errorf("len(missing.Cmds) = %d, want 0", len(missing.Cmds))
	}
}
