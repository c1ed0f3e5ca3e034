package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/Faultbox/brickmesh/pkg/scene"
)

// writeOBJ flattens an instanced scene into a Wavefront OBJ file with
// one group per part and color.
func writeOBJ(path string, loaded *scene.SceneInstanced) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# %s\n", loaded.MainModelName)

	keys := make([]scene.PartColor, 0, len(loaded.GeometryWorldTransforms))
	for key := range loaded.GeometryWorldTransforms {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Color < keys[j].Color
	})

	// OBJ face indices are global and start at 1.
	indexBase := 1
	for _, key := range keys {
		part := loaded.GeometryCache[key.Name]
		if part == nil {
			continue
		}

		for n, transform := range loaded.GeometryWorldTransforms[key] {
			fmt.Fprintf(w, "g %s_%d_%d\n", key.Name, key.Color, n)

			for _, vertex := range part.Vertices {
				v := transform.TransformVec3(vertex)
				fmt.Fprintf(w, "v %g %g %g\n", v.X, v.Y, v.Z)
			}

			for i, start := range part.FaceStartIndices {
				fmt.Fprint(w, "f")
				for _, index := range part.VertexIndices[start : start+part.FaceSizes[i]] {
					fmt.Fprintf(w, " %d", indexBase+int(index))
				}
				fmt.Fprintln(w)
			}
			indexBase += len(part.Vertices)
		}
	}

	return w.Flush()
}
