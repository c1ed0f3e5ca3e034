// Package scene builds node trees and instance tables from brick CAD
// documents, memoizing geometry construction per distinct part.
package scene

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/brickmesh/pkg/geometry"
	"github.com/Faultbox/brickmesh/pkg/ldraw"
)

// DiskResolver resolves file references against the folders of an LDraw
// parts library. Earlier base paths take priority.
type DiskResolver struct {
	BasePaths []string
}

// NewDiskResolver builds a resolver over the canonical library folders,
// the selected primitive resolution folder and any additional part
// folders configured by the user.
func NewDiskResolver(libraryPath string, additionalPaths []string, resolution geometry.Resolution) *DiskResolver {
	basePaths := []string{
		filepath.Join(libraryPath, "p"),
		filepath.Join(libraryPath, "parts"),
		filepath.Join(libraryPath, "parts", "s"),
		// Studio unofficial part folders.
		filepath.Join(libraryPath, "UnOfficial", "p"),
		filepath.Join(libraryPath, "UnOfficial", "parts"),
		filepath.Join(libraryPath, "UnOfficial", "parts", "s"),
	}
	switch resolution {
	case geometry.ResolutionLow:
		basePaths = append([]string{filepath.Join(libraryPath, "p", "8")}, basePaths...)
	case geometry.ResolutionHigh:
		basePaths = append([]string{filepath.Join(libraryPath, "p", "48")}, basePaths...)
	}
	basePaths = append(basePaths, additionalPaths...)

	return &DiskResolver{BasePaths: basePaths}
}

// Prepend inserts a path in front of the existing base paths.
func (r *DiskResolver) Prepend(path string) {
	r.BasePaths = append([]string{path}, r.BasePaths...)
}

// Resolve returns the content of the first matching file under the base
// paths.
func (r *DiskResolver) Resolve(filename string) ([]byte, error) {
	for _, prefix := range r.BasePaths {
		content, err := os.ReadFile(filepath.Join(prefix, filename))
		if err == nil {
			return content, nil
		}
	}
	return nil, fmt.Errorf("file %q not found under library paths", filename)
}

// StudioResolver serves the embedded model of a Bricklink Studio .io
// file, which is a zip archive with the model stored as model.ldr, and
// delegates every other reference to the parts library.
type StudioResolver struct {
	path     string
	modelLDR []byte
	disk     *DiskResolver
}

// NewStudioResolver reads the model from the archive at path.
func NewStudioResolver(path string, disk *DiskResolver) (*StudioResolver, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open studio file: %w", err)
	}
	defer archive.Close()

	model, err := archive.Open("model.ldr")
	if err != nil {
		return nil, fmt.Errorf("studio file has no model.ldr: %w", err)
	}
	defer model.Close()

	data, err := io.ReadAll(model)
	if err != nil {
		return nil, fmt.Errorf("read model.ldr: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	return &StudioResolver{
		path:     ldraw.NormalizeName(path),
		modelLDR: data,
		disk:     disk,
	}, nil
}

// Resolve serves the embedded model for the archive's own path and
// forwards everything else to the disk resolver.
func (r *StudioResolver) Resolve(filename string) ([]byte, error) {
	if filename == r.path {
		return r.modelLDR, nil
	}
	return r.disk.Resolve(filename)
}
