// brickmesh is a CLI utility for converting LDraw documents to meshes.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/brickmesh/internal/config"
	"github.com/Faultbox/brickmesh/internal/logger"
	"github.com/Faultbox/brickmesh/pkg/ldraw"
	"github.com/Faultbox/brickmesh/pkg/scene"
)

func main() {
	// Parse global flags first, the command follows them.
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		cmdInfo(cfg, args)
	case "export":
		cmdExport(cfg, args)
	case "colors":
		cmdColors(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`brickmesh - LDraw document to mesh converter

Usage:
  brickmesh [flags] <command> [options]

Commands:
  info <model>                Show model statistics
  export <model> [-o out]    Convert a model to a Wavefront OBJ file
  colors [pattern]           Show the color definitions of the library

Flags apply before the command, for example:
  brickmesh -library ~/ldraw info car.ldr
  brickmesh -studs logo4 export car.mpd -o car.obj
  brickmesh colors "Trans"`)
}

func cmdInfo(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: brickmesh info <model>")
		os.Exit(1)
	}

	settings := cfg.GeometrySettings()
	loaded, err := scene.LoadSceneInstanced(args[0], cfg.Library.Path, cfg.Library.AdditionalPaths, &settings)
	if err != nil {
		logger.Error("failed to load model", zap.Error(err))
		os.Exit(1)
	}

	var instances int
	var vertices, faces int
	for key, transforms := range loaded.GeometryWorldTransforms {
		instances += len(transforms)
		if part := loaded.GeometryCache[key.Name]; part != nil {
			vertices += len(part.Vertices) * len(transforms)
			faces += len(part.FaceSizes) * len(transforms)
		}
	}

	fmt.Printf("Model:     %s\n", loaded.MainModelName)
	fmt.Printf("Parts:     %d distinct, %d placed\n", len(loaded.GeometryCache), instances)
	fmt.Printf("Vertices:  %d\n", vertices)
	fmt.Printf("Faces:     %d\n", faces)
	fmt.Println()
	fmt.Println("Parts by instance count:")

	type partStat struct {
		name  string
		count int
	}
	counts := make(map[string]int)
	for key, transforms := range loaded.GeometryWorldTransforms {
		counts[key.Name] += len(transforms)
	}
	var stats []partStat
	for name, count := range counts {
		stats = append(stats, partStat{name, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].name < stats[j].name
	})
	for _, s := range stats {
		fmt.Printf("  %-30s %d\n", s.name, s.count)
	}
}

func cmdExport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("o", "", "Output OBJ path (default: model name with .obj)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: brickmesh export <model> [-o out.obj]")
		os.Exit(1)
	}
	modelPath := fs.Arg(0)

	settings := cfg.GeometrySettings()
	// OBJ has no shared transform concept, so flatten to world space.
	loaded, err := scene.LoadSceneInstanced(modelPath, cfg.Library.Path, cfg.Library.AdditionalPaths, &settings)
	if err != nil {
		logger.Error("failed to load model", zap.Error(err))
		os.Exit(1)
	}

	outPath := *output
	if outPath == "" {
		outPath = objOutputPath(modelPath)
	}

	if err := writeOBJ(outPath, loaded); err != nil {
		logger.Error("failed to write OBJ", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("exported model", zap.String("model", modelPath), zap.String("output", outPath))
	fmt.Printf("Wrote %s\n", outPath)
}

func cmdColors(cfg *config.Config, args []string) {
	settings := cfg.GeometrySettings()
	resolver := scene.NewDiskResolver(cfg.Library.Path, cfg.Library.AdditionalPaths, settings.PrimitiveResolution)
	// The color config lives at the library root.
	resolver.Prepend(cfg.Library.Path)

	table, err := ldraw.LoadColorTable(resolver)
	if err != nil {
		logger.Error("failed to load color table", zap.Error(err))
		os.Exit(1)
	}

	var pattern string
	if len(args) > 0 {
		pattern = args[0]
	}

	codes := make([]ldraw.ColorCode, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	for _, code := range codes {
		info := table[code]
		if pattern != "" && !matchesPattern(info.Name, pattern) {
			continue
		}
		flags := ""
		if info.IsMetallic {
			flags += " metallic"
		}
		if info.IsTransmissive {
			flags += " transmissive"
		}
		fmt.Printf("%5d  %-40s %v%s\n", code, info.Name, info.Finish, flags)
	}
}

func objOutputPath(modelPath string) string {
	return strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + ".obj"
}

func matchesPattern(name, pattern string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}
