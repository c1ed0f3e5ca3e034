package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagLibrary    = flag.String("library", "", "Path to the LDraw parts library")
	flagStuds      = flag.String("studs", "", "Stud style: normal, disabled, logo4, high_contrast")
	flagResolution = flag.String("resolution", "", "Primitive resolution: low, normal, high")
	flagScale      = flag.Float64("scale", 0, "Scene scale factor")
	flagGap        = flag.Bool("gap", false, "Add a small gap between parts")
	flagNoWeld     = flag.Bool("no-weld", false, "Keep duplicate vertices instead of welding")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLibrary != "" {
		cfg.Library.Path = *flagLibrary
	}
	if *flagStuds != "" {
		cfg.Import.StudStyle = *flagStuds
	}
	if *flagResolution != "" {
		cfg.Import.PrimitiveResolution = *flagResolution
	}
	if *flagScale > 0 {
		cfg.Import.SceneScale = float32(*flagScale)
	}
	if *flagGap {
		cfg.Import.AddGapBetweenParts = true
	}
	if *flagNoWeld {
		cfg.Import.WeldVertices = false
	}
}
