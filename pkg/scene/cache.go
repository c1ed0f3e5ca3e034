package scene

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/brickmesh/pkg/geometry"
	"github.com/Faultbox/brickmesh/pkg/ldraw"
	"github.com/Faultbox/brickmesh/pkg/math"
)

// createGeometryCache realizes the deferred descriptors in parallel.
// The workload is uneven across parts, so the pool is sized to the
// available CPUs rather than one goroutine per part.
func createGeometryCache(descriptors map[string]geometryDescriptor, sourceMap *ldraw.SourceMap, settings *geometry.Settings) map[string]*geometry.Geometry {
	names := make([]string, 0, len(descriptors))
	for name := range descriptors {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]*geometry.Geometry, len(names))

	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		i, name := i, name
		group.Go(func() error {
			descriptor := descriptors[name]
			results[i] = geometry.CreateGeometry(
				descriptor.sourceFile,
				sourceMap,
				name,
				descriptor.currentColor,
				descriptor.recursive,
				settings,
			)
			return nil
		})
	}
	// Geometry creation reports problems through logging, not errors.
	_ = group.Wait()

	cache := make(map[string]*geometry.Geometry, len(names))
	for i, name := range names {
		cache[name] = results[i]
	}
	return cache
}

// decomposeInstances converts each part's world transforms into point
// instances, in parallel across parts.
func decomposeInstances(worldTransforms map[PartColor][]math.Mat4) map[PartColor]PointInstances {
	keys := make([]PartColor, 0, len(worldTransforms))
	for key := range worldTransforms {
		keys = append(keys, key)
	}

	results := make([]PointInstances, len(keys))

	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, key := range keys {
		i, key := i, key
		group.Go(func() error {
			results[i] = geometryPointInstances(worldTransforms[key])
			return nil
		})
	}
	_ = group.Wait()

	instances := make(map[PartColor]PointInstances, len(keys))
	for i, key := range keys {
		instances[key] = results[i]
	}
	return instances
}
