package geometry

import (
	stdmath "math"
	"sort"

	"github.com/Faultbox/brickmesh/pkg/math"
)

// sharpAngleThreshold is the angle in radians between adjacent face
// normals above which an edge is split, matching Blender's edge split.
const sharpAngleThreshold = float32(89 * stdmath.Pi / 180)

// undirectedEdge is a vertex index pair in sorted order so that both edge
// directions compare equal.
type undirectedEdge [2]uint32

func newUndirectedEdge(v0, v1 uint32) undirectedEdge {
	if v0 <= v1 {
		return undirectedEdge{v0, v1}
	}
	return undirectedEdge{v1, v0}
}

func (e undirectedEdge) less(other undirectedEdge) bool {
	if e[0] != other[0] {
		return e[0] < other[0]
	}
	return e[1] < other[1]
}

// edgeSet is an ordered set of undirected edges. Keeping the elements
// sorted makes iteration order deterministic.
type edgeSet struct {
	edges []undirectedEdge
}

func (s *edgeSet) search(e undirectedEdge) int {
	return sort.Search(len(s.edges), func(i int) bool {
		return !s.edges[i].less(e)
	})
}

func (s *edgeSet) insert(e undirectedEdge) {
	i := s.search(e)
	if i < len(s.edges) && s.edges[i] == e {
		return
	}
	s.edges = append(s.edges, undirectedEdge{})
	copy(s.edges[i+1:], s.edges[i:])
	s.edges[i] = e
}

func (s *edgeSet) contains(e undirectedEdge) bool {
	i := s.search(e)
	return i < len(s.edges) && s.edges[i] == e
}

// indexSet is an ordered set of uint32 values.
type indexSet struct {
	values []uint32
}

func (s *indexSet) search(v uint32) int {
	return sort.Search(len(s.values), func(i int) bool {
		return s.values[i] >= v
	})
}

func (s *indexSet) insert(v uint32) {
	i := s.search(v)
	if i < len(s.values) && s.values[i] == v {
		return
	}
	s.values = append(s.values, 0)
	copy(s.values[i+1:], s.values[i:])
	s.values[i] = v
}

func (s *indexSet) union(other *indexSet) {
	for _, v := range other.values {
		s.insert(v)
	}
}

// intersectFirstTwo returns the two smallest values present in both sets.
func intersectFirstTwo(a, b *indexSet) (uint32, uint32, bool) {
	var found []uint32
	i, j := 0, 0
	for i < len(a.values) && j < len(b.values) && len(found) < 2 {
		switch {
		case a.values[i] < b.values[j]:
			i++
		case a.values[i] > b.values[j]:
			j++
		default:
			found = append(found, a.values[i])
			i++
			j++
		}
	}
	if len(found) < 2 {
		return 0, 0, false
	}
	return found[0], found[1], true
}

// SplitEdges duplicates the vertices along the given edges and along any
// edge whose adjacent face normals differ by the sharp angle threshold,
// so that consuming applications compute split normals. The geometry must
// be fully welded. Works like Blender's "edge split".
func SplitEdges(
	vertices []math.Vec3,
	vertexIndices []uint32,
	faceStarts []uint32,
	faceSizes []uint32,
	edgesToSplit [][2]uint32,
) ([]math.Vec3, []uint32) {
	oldAdjacentFaces := adjacentFaces(len(vertices), vertexIndices, faceStarts, faceSizes)

	splitSet := &edgeSet{}
	for _, e := range edgesToSplit {
		splitSet.insert(newUndirectedEdge(e[0], e[1]))
	}

	normals := FaceNormals(vertices, vertexIndices, faceStarts, faceSizes)
	addSharpEdges(splitSet, vertexIndices, faceStarts, faceSizes, oldAdjacentFaces, normals)

	verticesToSplit := &indexSet{}
	for _, e := range splitSet.edges {
		verticesToSplit.insert(e[0])
		verticesToSplit.insert(e[1])
	}

	splitVertices, splitVertexIndices, duplicateEdges := splitFaceVerts(
		vertices, vertexIndices, faceStarts, faceSizes, oldAdjacentFaces, verticesToSplit)

	// Track the new vertex adjacency while merging edges.
	newAdjacentFaces := adjacentFaces(len(splitVertices), splitVertexIndices, faceStarts, faceSizes)

	mergeDuplicateEdges(
		splitVertexIndices, vertexIndices, faceStarts, faceSizes,
		duplicateEdges, splitSet, oldAdjacentFaces, newAdjacentFaces)

	return removeLooseVertices(splitVertices, splitVertexIndices)
}

func addSharpEdges(
	edgesToSplit *edgeSet,
	vertexIndices []uint32,
	faceStarts []uint32,
	faceSizes []uint32,
	adjacentFaces []*indexSet,
	normals []math.Vec3,
) {
	for i := range faceStarts {
		face := faceIndices(i, vertexIndices, faceStarts, faceSizes)
		for j := 0; j+1 < len(face); j++ {
			v0 := face[j]
			v1 := face[(j+1)%len(face)]
			// Assume vertices are fully welded.
			f0, f1, ok := intersectFirstTwo(adjacentFaces[v0], adjacentFaces[v1])
			if !ok {
				continue
			}
			if normals[f0].AngleBetween(normals[f1]) >= sharpAngleThreshold {
				edgesToSplit.insert(newUndirectedEdge(v0, v1))
			}
		}
	}
}

func removeLooseVertices(vertices []math.Vec3, vertexIndices []uint32) ([]math.Vec3, []uint32) {
	// Collect the used indices in sorted order.
	used := &indexSet{}
	for _, i := range vertexIndices {
		used.insert(i)
	}

	oldToNew := make([]uint32, len(vertices))
	for newIndex, oldIndex := range used.values {
		oldToNew[oldIndex] = uint32(newIndex)
	}

	newVertices := make([]math.Vec3, 0, len(used.values))
	for _, i := range used.values {
		newVertices = append(newVertices, vertices[i])
	}
	newIndices := make([]uint32, 0, len(vertexIndices))
	for _, i := range vertexIndices {
		newIndices = append(newIndices, oldToNew[i])
	}
	return newVertices, newIndices
}

func adjacentFaces(numVertices int, vertexIndices, faceStarts, faceSizes []uint32) []*indexSet {
	// Assume the position indices are fully welded. This simplifies
	// finding the adjacent face indices for each vertex.
	adjacent := make([]*indexSet, numVertices)
	for i := range adjacent {
		adjacent[i] = &indexSet{}
	}
	for i := range faceStarts {
		for _, vi := range faceIndices(i, vertexIndices, faceStarts, faceSizes) {
			adjacent[vi].insert(uint32(i))
		}
	}
	return adjacent
}

func mergeDuplicateEdges(
	splitVertexIndices []uint32,
	vertexIndices []uint32,
	faceStarts []uint32,
	faceSizes []uint32,
	duplicateEdges *edgeSet,
	edgesToSplit *edgeSet,
	oldAdjacentFaces []*indexSet,
	newAdjacentFaces []*indexSet,
) {
	// The splitting step can create lots of duplicate vertices. Merge any
	// duplicated edge that is not an edge to split.
	for _, edge := range duplicateEdges.edges {
		if edgesToSplit.contains(edge) {
			continue
		}
		v0, v1 := edge[0], edge[1]

		// Find the faces incident to this edge before splitting.
		f0, f1, ok := intersectFirstTwo(oldAdjacentFaces[v0], oldAdjacentFaces[v1])
		if !ok {
			continue
		}
		mergeVertsInFaces(v0, v1, int(f0), int(f1),
			vertexIndices, faceStarts, faceSizes, splitVertexIndices, newAdjacentFaces)
	}
}

func mergeVertsInFaces(
	v0, v1 uint32,
	f0, f1 int,
	vertexIndices []uint32,
	faceStarts []uint32,
	faceSizes []uint32,
	splitVertexIndices []uint32,
	newAdjacentFaces []*indexSet,
) {
	// Merge an edge by merging both pairs of vertices. The matching
	// vertices are found through the old indexing. Merging each vertex
	// pair also merges the adjacent faces.
	v0f0 := findOldVertexInFace(v0, f0, vertexIndices, splitVertexIndices, faceStarts, faceSizes)
	v0f1 := findOldVertexInFace(v0, f1, vertexIndices, splitVertexIndices, faceStarts, faceSizes)
	newAdjacentFaces[v0f0].union(newAdjacentFaces[v0f1])

	v1f0 := findOldVertexInFace(v1, f0, vertexIndices, splitVertexIndices, faceStarts, faceSizes)
	v1f1 := findOldVertexInFace(v1, f1, vertexIndices, splitVertexIndices, faceStarts, faceSizes)
	newAdjacentFaces[v1f0].union(newAdjacentFaces[v1f1])

	// Update the verts in each of the adjacent faces to use the f0 verts.
	// The new adjacency tracks what has already been merged.
	touched := append([]uint32{}, newAdjacentFaces[v0f0].values...)
	touched = append(touched, newAdjacentFaces[v1f0].values...)
	for _, adjacentFace := range touched {
		start := faceStarts[adjacentFace]
		size := faceSizes[adjacentFace]
		for i := start; i < start+size; i++ {
			if vertexIndices[i] == v0 {
				splitVertexIndices[i] = v0f0
			}
			if vertexIndices[i] == v1 {
				splitVertexIndices[i] = v1f0
			}
		}
	}
}

func faceIndices(faceIndex int, vertexIndices, faceStarts, faceSizes []uint32) []uint32 {
	start := faceStarts[faceIndex]
	return vertexIndices[start : start+faceSizes[faceIndex]]
}

func findOldVertexInFace(
	oldVertexIndex uint32,
	faceIndex int,
	oldIndices []uint32,
	newIndices []uint32,
	faceStarts []uint32,
	faceSizes []uint32,
) uint32 {
	oldFace := faceIndices(faceIndex, oldIndices, faceStarts, faceSizes)
	newFace := faceIndices(faceIndex, newIndices, faceStarts, faceSizes)
	for i, old := range oldFace {
		if old == oldVertexIndex {
			return newFace[i]
		}
	}
	return oldVertexIndex
}

func splitFaceVerts(
	vertices []math.Vec3,
	vertexIndices []uint32,
	faceStarts []uint32,
	faceSizes []uint32,
	adjacentFaces []*indexSet,
	verticesToSplit *indexSet,
) ([]math.Vec3, []uint32, *edgeSet) {
	// Split edges by duplicating the vertices. This creates some
	// duplicate edges to be cleaned up later.
	splitVertices := append([]math.Vec3{}, vertices...)
	splitVertexIndices := append([]uint32{}, vertexIndices...)

	duplicateEdges := &edgeSet{}

	for _, vertexIndex := range verticesToSplit.values {
		for i, f := range adjacentFaces[vertexIndex].values {
			face := faceIndices(int(f), splitVertexIndices, faceStarts, faceSizes)

			// Duplicate the vertex in all faces except the first.
			// The first face can keep the original index.
			if i > 0 {
				for k := range face {
					if face[k] == vertexIndex {
						face[k] = uint32(len(splitVertices))
						splitVertices = append(splitVertices, splitVertices[vertexIndex])
					}
				}
			}

			// Record any edges that may need to be merged later.
			originalFace := faceIndices(int(f), vertexIndices, faceStarts, faceSizes)
			e0, e1 := findIncidentEdges(originalFace, vertexIndex)
			duplicateEdges.insert(e0)
			duplicateEdges.insert(e1)
		}
	}

	return splitVertices, splitVertexIndices, duplicateEdges
}

func findIncidentEdges(face []uint32, vertexIndex uint32) (undirectedEdge, undirectedEdge) {
	// Assume edges are [0,1], ..., [N-1,0] for N vertices.
	i := 0
	for k, v := range face {
		if v == vertexIndex {
			i = k
			break
		}
	}
	prev := len(face) - 1
	if i > 0 {
		prev = i - 1
	}
	next := (i + 1) % len(face)
	return newUndirectedEdge(face[i], face[prev]), newUndirectedEdge(face[i], face[next])
}
