// Package geometry assembles brick CAD documents into flat indexed meshes.
package geometry

import (
	stdmath "math"

	"github.com/Faultbox/brickmesh/pkg/math"
)

// weldEpsilon is the welding tolerance in LDraw units. Dimensions in LDUs
// tend to be large, so the threshold can be generous.
const weldEpsilon = 0.01

type cellKey struct {
	x, y, z int32
}

type vertexEntry struct {
	pos   math.Vec3
	index uint32
}

// VertexMap finds previously inserted vertices within the welding
// tolerance. Entries are bucketed into a uniform grid with cells the size
// of the tolerance, so a lookup only needs to scan the surrounding cells.
type VertexMap struct {
	cells map[cellKey][]vertexEntry
}

// NewVertexMap constructs an empty vertex map.
func NewVertexMap() *VertexMap {
	return &VertexMap{cells: make(map[cellKey][]vertexEntry)}
}

func cellOf(v math.Vec3) cellKey {
	return cellKey{
		x: int32(stdmath.Floor(float64(v.X) / weldEpsilon)),
		y: int32(stdmath.Floor(float64(v.Y) / weldEpsilon)),
		z: int32(stdmath.Floor(float64(v.Z) / weldEpsilon)),
	}
}

// Insert returns the index of an existing vertex within the welding
// tolerance of v, or records v under the given index and returns it.
func (m *VertexMap) Insert(index uint32, v math.Vec3) (uint32, bool) {
	if existing, ok := m.lookup(v); ok {
		return existing, true
	}
	key := cellOf(v)
	m.cells[key] = append(m.cells[key], vertexEntry{pos: v, index: index})
	return index, false
}

func (m *VertexMap) lookup(v math.Vec3) (uint32, bool) {
	center := cellOf(v)
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				key := cellKey{center.x + dx, center.y + dy, center.z + dz}
				for _, e := range m.cells[key] {
					if e.pos.Sub(v).LengthSquared() <= weldEpsilon*weldEpsilon {
						return e.index, true
					}
				}
			}
		}
	}
	return 0, false
}

// Nearest returns the index of the closest recorded vertex near v. Edge
// endpoints are drawn separately from faces, so they only line up with the
// face vertices to within the welding tolerance.
func (m *VertexMap) Nearest(v math.Vec3) (uint32, bool) {
	center := cellOf(v)
	best := uint32(0)
	bestDist := float32(stdmath.Inf(1))
	found := false
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				key := cellKey{center.x + dx, center.y + dy, center.z + dz}
				for _, e := range m.cells[key] {
					d := e.pos.Sub(v).LengthSquared()
					if d < bestDist {
						best = e.index
						bestDist = d
						found = true
					}
				}
			}
		}
	}
	return best, found
}
