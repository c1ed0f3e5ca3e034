package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/brickmesh/pkg/geometry"
	"github.com/Faultbox/brickmesh/pkg/ldraw"
	"github.com/Faultbox/brickmesh/pkg/math"
)

// Node is a placement in the model hierarchy. Leaf nodes reference an
// entry in the geometry cache by name.
type Node struct {
	Name string
	// Transform relative to the parent node. Applications combine the
	// transforms while walking the tree.
	Transform math.Mat4
	// GeometryName keys into the scene's geometry cache, or "" for
	// grouping nodes without geometry of their own.
	GeometryName string
	CurrentColor ldraw.ColorCode
	Children     []*Node
}

// Scene is a model hierarchy with its realized geometry.
type Scene struct {
	Root          *Node
	GeometryCache map[string]*geometry.Geometry
}

// PartColor keys instance tables by part name and resolved color, so a
// part appearing in multiple colors gets one entry per color.
type PartColor struct {
	Name  string
	Color ldraw.ColorCode
}

// SceneInstanced flattens the hierarchy into world transforms grouped
// per part and color for instanced drawing.
type SceneInstanced struct {
	MainModelName           string
	GeometryWorldTransforms map[PartColor][]math.Mat4
	GeometryCache           map[string]*geometry.Geometry
}

// PointInstances stores instance transforms decomposed into parallel
// translation, axis-angle rotation and scale arrays.
type PointInstances struct {
	Translations   []math.Vec3
	RotationsAxis  []math.Vec3
	RotationsAngle []float32
	Scales         []math.Vec3
}

// SceneInstancedPoints is SceneInstanced with the world transforms
// decomposed per instance.
type SceneInstancedPoints struct {
	MainModelName          string
	GeometryPointInstances map[PartColor]PointInstances
	GeometryCache          map[string]*geometry.Geometry
}

// geometryDescriptor defers geometry creation so distinct parts can be
// realized once and in parallel.
type geometryDescriptor struct {
	sourceFile   *ldraw.SourceFile
	currentColor ldraw.ColorCode
	recursive    bool
}

// LoadScene parses the document at path and builds the node hierarchy
// with a geometry cache shared between identical parts.
func LoadScene(path, libraryPath string, additionalPaths []string, settings *geometry.Settings) (*Scene, error) {
	sourceMap, mainModel, err := parseFile(path, libraryPath, additionalPaths, settings)
	if err != nil {
		return nil, err
	}
	sourceFile, ok := sourceMap.Get(mainModel)
	if !ok {
		return nil, fmt.Errorf("main model %q missing after parse", mainModel)
	}

	descriptors := make(map[string]geometryDescriptor)
	root := loadNode(sourceFile, mainModel, math.Identity(), sourceMap, descriptors, ldraw.CurrentColor, settings)

	return &Scene{
		Root:          root,
		GeometryCache: createGeometryCache(descriptors, sourceMap, settings),
	}, nil
}

// LoadSceneInstanced parses the document at path and flattens it into
// accumulated world transforms per part and color.
func LoadSceneInstanced(path, libraryPath string, additionalPaths []string, settings *geometry.Settings) (*SceneInstanced, error) {
	sourceMap, mainModel, err := parseFile(path, libraryPath, additionalPaths, settings)
	if err != nil {
		return nil, err
	}
	sourceFile, ok := sourceMap.Get(mainModel)
	if !ok {
		return nil, fmt.Errorf("main model %q missing after parse", mainModel)
	}

	descriptors := make(map[string]geometryDescriptor)
	worldTransforms := make(map[PartColor][]math.Mat4)
	loadNodeInstanced(sourceFile, mainModel, math.Identity(), sourceMap, descriptors, worldTransforms, ldraw.CurrentColor, settings)

	return &SceneInstanced{
		MainModelName:           mainModel,
		GeometryWorldTransforms: worldTransforms,
		GeometryCache:           createGeometryCache(descriptors, sourceMap, settings),
	}, nil
}

// LoadSceneInstancedPoints parses the document at path and decomposes
// every instance transform into translation, rotation and scale.
func LoadSceneInstancedPoints(path, libraryPath string, additionalPaths []string, settings *geometry.Settings) (*SceneInstancedPoints, error) {
	scene, err := LoadSceneInstanced(path, libraryPath, additionalPaths, settings)
	if err != nil {
		return nil, err
	}

	return &SceneInstancedPoints{
		MainModelName:          scene.MainModelName,
		GeometryPointInstances: decomposeInstances(scene.GeometryWorldTransforms),
		GeometryCache:          scene.GeometryCache,
	}, nil
}

func parseFile(path, libraryPath string, additionalPaths []string, settings *geometry.Settings) (*ldraw.SourceMap, string, error) {
	disk := NewDiskResolver(libraryPath, additionalPaths, settings.PrimitiveResolution)
	// Resolve paths relative to the current file.
	if dir := filepath.Dir(path); dir != "" {
		disk.Prepend(dir)
	}

	var resolver ldraw.Resolver = disk
	if strings.EqualFold(filepath.Ext(path), ".io") {
		studio, err := NewStudioResolver(path, disk)
		if err != nil {
			return nil, "", err
		}
		resolver = studio
	}

	sourceMap := ldraw.NewSourceMap()
	ensureStuds(settings, resolver, sourceMap)
	mainModel := ldraw.Parse(path, resolver, sourceMap)
	return sourceMap, mainModel, nil
}

// ensureStuds parses the replacement stud models up front since the
// selected style likely isn't referenced by existing files.
func ensureStuds(settings *geometry.Settings, resolver ldraw.Resolver, sourceMap *ldraw.SourceMap) {
	if settings.StudStyle == geometry.StudLogo4 {
		ldraw.Parse("stud-logo4.dat", resolver, sourceMap)
		ldraw.Parse("stud2-logo4.dat", resolver, sourceMap)
	}
}

func loadNode(
	sourceFile *ldraw.SourceFile,
	filename string,
	transform math.Mat4,
	sourceMap *ldraw.SourceMap,
	descriptors map[string]geometryDescriptor,
	currentColor ldraw.ColorCode,
	settings *geometry.Settings,
) *Node {
	node := &Node{
		Name:         filename,
		Transform:    scaledTransform(transform, settings.SceneScale),
		CurrentColor: currentColor,
	}
	name := ldraw.NormalizeName(filename)

	part := isPart(filename)
	switch {
	case part:
		// Use the inherit color code so identical parts in different
		// colors share one cache entry.
		if _, ok := descriptors[name]; !ok {
			descriptors[name] = geometryDescriptor{
				sourceFile:   sourceFile,
				currentColor: ldraw.CurrentColor,
				recursive:    true,
			}
		}
		node.GeometryName = name
	case hasGeometry(sourceFile):
		// Bake the current color since this geometry might not be
		// referenced anywhere else.
		if _, ok := descriptors[name]; !ok {
			descriptors[name] = geometryDescriptor{
				sourceFile:   sourceFile,
				currentColor: currentColor,
				recursive:    false,
			}
		}
		node.GeometryName = name
	}

	// Recursion is already handled for parts.
	if !part {
		for _, cmd := range sourceFile.Cmds {
			ref, ok := cmd.(ldraw.SubFileRefCmd)
			if !ok {
				continue
			}
			subfile, ok := sourceMap.Get(ref.File)
			if !ok {
				continue
			}
			// Keep child transforms local to preserve the hierarchy.
			// Applications combine them while walking the tree.
			child := loadNode(subfile, ref.File, ref.Transform.Matrix(), sourceMap, descriptors,
				replaceColor(ref.Color, currentColor), settings)
			node.Children = append(node.Children, child)
		}
	}

	return node
}

func loadNodeInstanced(
	sourceFile *ldraw.SourceFile,
	filename string,
	worldTransform math.Mat4,
	sourceMap *ldraw.SourceMap,
	descriptors map[string]geometryDescriptor,
	worldTransforms map[PartColor][]math.Mat4,
	currentColor ldraw.ColorCode,
	settings *geometry.Settings,
) {
	name := ldraw.NormalizeName(filename)

	part := isPart(filename)
	switch {
	case part:
		if _, ok := descriptors[name]; !ok {
			descriptors[name] = geometryDescriptor{
				sourceFile:   sourceFile,
				currentColor: ldraw.CurrentColor,
				recursive:    true,
			}
		}
		key := PartColor{Name: name, Color: currentColor}
		worldTransforms[key] = append(worldTransforms[key], scaledTransform(worldTransform, settings.SceneScale))
	case hasGeometry(sourceFile):
		if _, ok := descriptors[name]; !ok {
			descriptors[name] = geometryDescriptor{
				sourceFile:   sourceFile,
				currentColor: currentColor,
				recursive:    false,
			}
		}
		key := PartColor{Name: name, Color: currentColor}
		worldTransforms[key] = append(worldTransforms[key], scaledTransform(worldTransform, settings.SceneScale))
	}

	if !part {
		for _, cmd := range sourceFile.Cmds {
			ref, ok := cmd.(ldraw.SubFileRefCmd)
			if !ok {
				continue
			}
			subfile, ok := sourceMap.Get(ref.File)
			if !ok {
				continue
			}
			childTransform := worldTransform.Mul(ref.Transform.Matrix())
			loadNodeInstanced(subfile, ref.File, childTransform, sourceMap, descriptors, worldTransforms,
				replaceColor(ref.Color, currentColor), settings)
		}
	}
}

func geometryPointInstances(transforms []math.Mat4) PointInstances {
	instances := PointInstances{
		Translations:   make([]math.Vec3, 0, len(transforms)),
		RotationsAxis:  make([]math.Vec3, 0, len(transforms)),
		RotationsAngle: make([]float32, 0, len(transforms)),
		Scales:         make([]math.Vec3, 0, len(transforms)),
	}

	for _, transform := range transforms {
		scale, rotation, translation := transform.Decompose()

		instances.Translations = append(instances.Translations, translation)

		// Euler decomposition isn't reliable for every rotation. An
		// axis and angle represents the quaternion directly.
		axis, angle := rotation.ToAxisAngle()
		instances.RotationsAxis = append(instances.RotationsAxis, axis)
		instances.RotationsAngle = append(instances.RotationsAngle, angle)

		instances.Scales = append(instances.Scales, scale)
	}

	return instances
}

// scaledTransform scales only the translation so that the scale doesn't
// accumulate through the hierarchy.
func scaledTransform(transform math.Mat4, scale float32) math.Mat4 {
	transform[12] *= scale
	transform[13] *= scale
	transform[14] *= scale
	return transform
}

func replaceColor(color, currentColor ldraw.ColorCode) ldraw.ColorCode {
	if color == ldraw.CurrentColor {
		return currentColor
	}
	return color
}

func isPart(filename string) bool {
	// TODO: Check the part type in the header rather than the extension.
	return strings.HasSuffix(strings.ToLower(filename), ".dat")
}

// hasGeometry reports whether the file defines faces inline. Some model
// files mix subfile references with their own geometry.
func hasGeometry(sourceFile *ldraw.SourceFile) bool {
	for _, cmd := range sourceFile.Cmds {
		switch cmd.(type) {
		case ldraw.TriangleCmd, ldraw.QuadCmd:
			return true
		}
	}
	return false
}
