// Package config handles importer configuration loading and management.
package config

import (
	"github.com/Faultbox/brickmesh/pkg/geometry"
)

// Config holds all importer settings.
type Config struct {
	Library LibraryConfig `yaml:"library"`
	Import  ImportConfig  `yaml:"import"`
	Logging LoggingConfig `yaml:"logging"`
}

// LibraryConfig holds parts library locations.
type LibraryConfig struct {
	Path            string   `yaml:"path"`             // Root of the LDraw parts library
	AdditionalPaths []string `yaml:"additional_paths"` // Extra folders with custom parts
}

// ImportConfig holds geometry construction settings.
type ImportConfig struct {
	StudStyle           string  `yaml:"stud_style"`           // normal, disabled, logo4, high_contrast
	PrimitiveResolution string  `yaml:"primitive_resolution"` // low, normal, high
	WeldVertices        bool    `yaml:"weld_vertices"`
	Triangulate         bool    `yaml:"triangulate"`
	AddGapBetweenParts  bool    `yaml:"add_gap_between_parts"`
	SceneScale          float32 `yaml:"scene_scale"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Library: LibraryConfig{
			Path: "ldraw",
		},
		Import: ImportConfig{
			StudStyle:           "normal",
			PrimitiveResolution: "normal",
			WeldVertices:        true,
			Triangulate:         false,
			AddGapBetweenParts:  false,
			SceneScale:          1.0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// GeometrySettings maps the import section onto geometry settings.
// Unknown style and resolution names fall back to the defaults.
func (c *Config) GeometrySettings() geometry.Settings {
	settings := geometry.DefaultSettings()
	settings.Triangulate = c.Import.Triangulate
	settings.AddGapBetweenParts = c.Import.AddGapBetweenParts
	settings.WeldVertices = c.Import.WeldVertices
	if c.Import.SceneScale > 0 {
		settings.SceneScale = c.Import.SceneScale
	}

	switch c.Import.StudStyle {
	case "disabled":
		settings.StudStyle = geometry.StudDisabled
	case "logo4":
		settings.StudStyle = geometry.StudLogo4
	case "high_contrast":
		settings.StudStyle = geometry.StudHighContrast
	default:
		settings.StudStyle = geometry.StudNormal
	}

	switch c.Import.PrimitiveResolution {
	case "low":
		settings.PrimitiveResolution = geometry.ResolutionLow
	case "high":
		settings.PrimitiveResolution = geometry.ResolutionHigh
	default:
		settings.PrimitiveResolution = geometry.ResolutionNormal
	}

	return settings
}
