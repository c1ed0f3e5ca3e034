package ldraw

import (
	"strings"

	"go.uber.org/zap"
)

// Resolver locates the raw content of a referenced file. Implementations
// decide where files come from, typically the LDraw parts library on disk.
type Resolver interface {
	Resolve(filename string) ([]byte, error)
}

// Path is a file or submodel name paired with its normalized form used for
// lookups. LDraw filenames are not case sensitive and may use backslashes.
type Path struct {
	Name       string
	Normalized string
}

// NewPath builds a Path with the normalization cached.
func NewPath(name string) Path {
	return Path{Name: name, Normalized: NormalizeName(name)}
}

// NormalizeName lowercases a file reference and normalizes its path
// separators to forward slashes.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "\\", "/")
	return strings.ReplaceAll(s, "//", "/")
}

// SourceFile is the parsed command list of a single file or MPD submodel.
type SourceFile struct {
	Cmds []Command
}

// SourceMap is a collection of parsed source files keyed by their
// normalized reference name.
type SourceMap struct {
	files map[string]*SourceFile
}

// NewSourceMap constructs an empty source map.
func NewSourceMap() *SourceMap {
	return &SourceMap{files: make(map[string]*SourceFile)}
}

// Get returns the source file for a reference name, if loaded.
func (m *SourceMap) Get(filename string) (*SourceFile, bool) {
	f, ok := m.files[NormalizeName(filename)]
	return f, ok
}

// Insert adds a source file and registers any submodels of a multi-part
// document under their own names. It returns the name of the main model,
// which is the first FILE block for multi-part documents and the file's own
// name otherwise.
func (m *SourceMap) Insert(path Path, file *SourceFile) string {
	blocks := splitMPDFile(file.Cmds)

	// Some files are referenced in their entirety even when they contain
	// multiple models.
	m.files[path.Normalized] = file

	if len(blocks) == 0 {
		return path.Name
	}
	for _, b := range blocks {
		m.files[NormalizeName(b.name)] = b.file
	}
	return blocks[0].name
}

func (m *SourceMap) queueSubfiles(file *SourceFile, stack *[]string) {
	for _, cmd := range file.Cmds {
		if ref, ok := cmd.(SubFileRefCmd); ok {
			if _, loaded := m.Get(ref.File); !loaded {
				*stack = append(*stack, ref.File)
			}
		}
	}
}

type mpdBlock struct {
	name string
	file *SourceFile
}

// splitMPDFile cuts a command list into its FILE blocks. A block starts at
// a FILE command and runs until the next FILE or NOFILE command.
func splitMPDFile(cmds []Command) []mpdBlock {
	var blocks []mpdBlock
	for i, cmd := range cmds {
		fileCmd, ok := cmd.(FileCmd)
		if !ok {
			continue
		}
		end := len(cmds)
		for j := i + 1; j < len(cmds); j++ {
			switch cmds[j].(type) {
			case FileCmd, NoFileCmd:
				end = j
			}
			if end == j {
				break
			}
		}
		blocks = append(blocks, mpdBlock{
			name: fileCmd.File,
			file: &SourceFile{Cmds: cmds[i:end]},
		})
	}
	return blocks
}

// Parse loads the file at path and all of its subfile references into the
// source map, returning the name of the main model. Files that fail to
// resolve are logged and replaced with empty content so that partial
// documents still import.
func Parse(path string, resolver Resolver, sourceMap *SourceMap) string {
	// A stack of pending references avoids recursion on deep documents.
	var stack []string

	mainModel := loadFile(NewPath(path), resolver, sourceMap, &stack)

	for len(stack) > 0 {
		filename := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := sourceMap.Get(filename); ok {
			continue
		}
		loadFile(NewPath(filename), resolver, sourceMap, &stack)
	}

	return mainModel
}

func loadFile(path Path, resolver Resolver, sourceMap *SourceMap, stack *[]string) string {
	content, err := resolver.Resolve(path.Normalized)
	if err != nil {
		zap.L().Error("unable to resolve file",
			zap.String("file", path.Name),
			zap.Error(err))
		content = nil
	}
	file := &SourceFile{Cmds: ParseCommands(content)}

	sourceMap.queueSubfiles(file, stack)
	return sourceMap.Insert(path, file)
}
