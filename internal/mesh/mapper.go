package mesh

import (
	"github.com/paulmach/orb"

	"github.com/arpentry/relief/internal/geo"
)

// DefaultNeighborRadius is the default Chebyshev radius for no-data
// neighbor invalidation.
const DefaultNeighborRadius = 2

// HeightField is the resampled grid the mapper reads: (tileSize+1)² samples
// with a no-data mask, row 0 at the north edge.
type HeightField interface {
	Side() int
	At(gx, gy int) float32
	IsNoData(gx, gy int) bool
}

// Mapper projects triangulated grid vertices into tile-centered world
// space. Bounds is the planar rectangle the height field actually covers;
// Center is the dataset's planar center, shared by every tile so that
// geometry from different tiles lands in one world frame.
type Mapper struct {
	Bounds         geo.PlanarBounds
	Center         orb.Point
	NeighborRadius int
}

// Map converts raw triangulation vertices (grid coordinate pairs) into
// positions and UVs, dropping every vertex whose neighborhood touches a
// no-data sample.
//
// A triangulator running over a grid with voids still emits plausible
// triangles whose corners sit right at a void's edge. Dropping only the
// exact no-data vertices leaves slivers and unstable normals along the
// boundary, so each no-data vertex invalidates all raw vertices within
// Chebyshev distance NeighborRadius of its grid cell.
func (m *Mapper) Map(field HeightField, vertices []uint16) (*Geometry, *IndexMap) {
	side := field.Side()
	tileSize := float64(side - 1)
	rawCount := len(vertices) / 2

	// Grid coordinate to raw index, packed to avoid per-vertex
	// allocation in the neighbor scan.
	lookup := make(map[uint32]int32, rawCount)
	for i := 0; i+1 < len(vertices); i += 2 {
		lookup[packCoord(vertices[i], vertices[i+1])] = int32(i / 2)
	}

	invalid := make([]bool, rawCount)
	for i := 0; i+1 < len(vertices); i += 2 {
		gx, gy := int(vertices[i]), int(vertices[i+1])
		if !field.IsNoData(gx, gy) {
			continue
		}
		m.invalidateAround(gx, gy, side, lookup, invalid)
	}

	width := m.Bounds.Max[0] - m.Bounds.Min[0]
	depth := m.Bounds.Max[1] - m.Bounds.Min[1]

	geom := &Geometry{
		Positions: make([]float32, 0, rawCount*3),
		UVs:       make([]float32, 0, rawCount*2),
	}
	im := newIndexMap(rawCount)

	seen := false
	for i := 0; i+1 < len(vertices); i += 2 {
		if invalid[i/2] {
			im.appendInvalid()
			continue
		}

		gx, gy := int(vertices[i]), int(vertices[i+1])
		h := float64(field.At(gx, gy))

		fx := float64(gx) / tileSize
		fy := float64(gy) / tileSize
		planarX := m.Bounds.Min[0] + fx*width
		planarY := m.Bounds.Max[1] - fy*depth

		// Negating the northing offset turns north-up planar
		// coordinates into the right-handed Y-up frame: north of the
		// center maps to negative Z.
		geom.Positions = append(geom.Positions,
			float32(planarX-m.Center[0]),
			float32(h),
			float32(-(planarY-m.Center[1])))
		geom.UVs = append(geom.UVs, float32(fx), float32(fy))

		if !seen {
			geom.MinElevation, geom.MaxElevation = h, h
			seen = true
		} else {
			if h < geom.MinElevation {
				geom.MinElevation = h
			}
			if h > geom.MaxElevation {
				geom.MaxElevation = h
			}
		}
		im.appendValid()
	}

	return geom, im
}

// invalidateAround marks every raw vertex within the neighbor radius of
// (gx, gy) as invalid. The scan window is clamped to the grid.
func (m *Mapper) invalidateAround(gx, gy, side int, lookup map[uint32]int32, invalid []bool) {
	r := m.NeighborRadius
	if r < 0 {
		r = 0
	}
	for dy := -r; dy <= r; dy++ {
		ny := gy + dy
		if ny < 0 || ny >= side {
			continue
		}
		for dx := -r; dx <= r; dx++ {
			nx := gx + dx
			if nx < 0 || nx >= side {
				continue
			}
			if raw, ok := lookup[packCoord(uint16(nx), uint16(ny))]; ok {
				invalid[raw] = true
			}
		}
	}
}

func packCoord(gx, gy uint16) uint32 {
	return uint32(gx)<<16 | uint32(gy)
}
