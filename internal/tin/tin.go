// Package tin triangulates square height grids into adaptively simplified
// meshes using a right-triangulated irregular network: an implicit binary
// hierarchy of right triangles refined wherever the surface deviates from
// its linear interpolation by more than an error budget.
package tin

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// Triangulation errors.
var (
	ErrBadGridSize  = errors.New("grid side must be a power of two plus one")
	ErrGridMismatch = errors.New("grid side does not match triangulator")
)

// HeightSource is the square sample grid the triangulator reads. Samples
// must be finite; no-data cells carry their numeric sentinel, whose large
// jumps force full refinement along void boundaries.
type HeightSource interface {
	Side() int
	At(x, y int) float32
}

// Mesh is a triangulated grid: vertex grid coordinates as (x, y) pairs in
// [0, side-1], and triangle vertex-index triples into that list. All
// triangles share one winding order.
type Mesh struct {
	Vertices  []uint16
	Triangles []uint32
}

// VertexCount returns the number of mesh vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) / 2 }

// TriangleCount returns the number of mesh triangles.
func (m *Mesh) TriangleCount() int { return len(m.Triangles) / 3 }

// Triangulator holds the precomputed triangle hierarchy for one grid size.
// The precomputation is reused across tiles; Triangulate itself allocates
// per call and is safe for concurrent use.
type Triangulator struct {
	side         int
	numTriangles int
	numParents   int
	coords       []uint16
}

// New builds a triangulator for grids of the given side, which must be a
// power of two plus one.
func New(side int) (*Triangulator, error) {
	tileSize := side - 1
	if tileSize < 1 || tileSize&(tileSize-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadGridSize, side)
	}

	t := &Triangulator{
		side:         side,
		numTriangles: tileSize*tileSize*2 - 2,
		numParents:   tileSize*tileSize - 2,
	}
	t.coords = make([]uint16, t.numTriangles*4)

	// Walk each triangle id down the implicit binary tree to find its
	// two long-edge endpoints.
	for i := 0; i < t.numTriangles; i++ {
		id := i + 2
		ax, ay, bx, by, cx, cy := 0, 0, 0, 0, 0, 0
		if id&1 != 0 {
			bx, by, cx = tileSize, tileSize, tileSize
		} else {
			ax, ay, cy = tileSize, tileSize, tileSize
		}
		for id >>= 1; id > 1; id >>= 1 {
			mx := (ax + bx) >> 1
			my := (ay + by) >> 1
			if id&1 != 0 {
				bx, by = ax, ay
				ax, ay = cx, cy
			} else {
				ax, ay = bx, by
				bx, by = cx, cy
			}
			cx, cy = mx, my
		}
		k := i * 4
		t.coords[k+0] = uint16(ax)
		t.coords[k+1] = uint16(ay)
		t.coords[k+2] = uint16(bx)
		t.coords[k+3] = uint16(by)
	}

	return t, nil
}

// Side returns the grid side the triangulator was built for.
func (t *Triangulator) Side() int { return t.side }

// Triangulate extracts the coarsest mesh whose midpoint errors stay
// within maxError meters. A flat or perfectly linear surface collapses to
// the two root triangles at any budget; maxError 0 fully refines wherever
// the surface deviates from linear at all.
func (t *Triangulator) Triangulate(field HeightSource, maxError float64) (*Mesh, error) {
	if field.Side() != t.side {
		return nil, fmt.Errorf("%w: built for %d, got %d", ErrGridMismatch, t.side, field.Side())
	}

	size := t.side
	heights := make([]float32, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			heights[y*size+x] = field.At(x, y)
		}
	}

	errs := t.computeErrors(heights)
	max := size - 1

	// First pass assigns vertex slots and counts triangles, second pass
	// fills the buffers. Both descend the hierarchy the same way.
	indices := make([]uint32, size*size)
	numVertices := 0
	numTriangles := 0

	var count func(ax, ay, bx, by, cx, cy int)
	count = func(ax, ay, bx, by, cx, cy int) {
		mx := (ax + bx) >> 1
		my := (ay + by) >> 1

		if absInt(ax-cx)+absInt(ay-cy) > 1 && float64(errs[my*size+mx]) > maxError {
			count(cx, cy, ax, ay, mx, my)
			count(bx, by, cx, cy, mx, my)
			return
		}

		for _, p := range [3]int{ay*size + ax, by*size + bx, cy*size + cx} {
			if indices[p] == 0 {
				numVertices++
				indices[p] = uint32(numVertices)
			}
		}
		numTriangles++
	}
	count(0, 0, max, max, max, 0)
	count(max, max, 0, 0, 0, max)

	mesh := &Mesh{
		Vertices:  make([]uint16, numVertices*2),
		Triangles: make([]uint32, 0, numTriangles*3),
	}

	var emit func(ax, ay, bx, by, cx, cy int)
	emit = func(ax, ay, bx, by, cx, cy int) {
		mx := (ax + bx) >> 1
		my := (ay + by) >> 1

		if absInt(ax-cx)+absInt(ay-cy) > 1 && float64(errs[my*size+mx]) > maxError {
			emit(cx, cy, ax, ay, mx, my)
			emit(bx, by, cx, cy, mx, my)
			return
		}

		a := indices[ay*size+ax] - 1
		b := indices[by*size+bx] - 1
		c := indices[cy*size+cx] - 1

		mesh.Vertices[2*a] = uint16(ax)
		mesh.Vertices[2*a+1] = uint16(ay)
		mesh.Vertices[2*b] = uint16(bx)
		mesh.Vertices[2*b+1] = uint16(by)
		mesh.Vertices[2*c] = uint16(cx)
		mesh.Vertices[2*c+1] = uint16(cy)

		mesh.Triangles = append(mesh.Triangles, a, b, c)
	}
	emit(0, 0, max, max, max, 0)
	emit(max, max, 0, 0, 0, max)

	return mesh, nil
}

// computeErrors fills the per-midpoint error map bottom-up: each long-edge
// midpoint records how far the surface deviates from the edge's linear
// interpolation, and parents absorb their children's errors so refinement
// never stops above a child that still needs it.
func (t *Triangulator) computeErrors(heights []float32) []float32 {
	size := t.side
	errs := make([]float32, len(heights))

	for i := t.numTriangles - 1; i >= 0; i-- {
		k := i * 4
		ax := int(t.coords[k+0])
		ay := int(t.coords[k+1])
		bx := int(t.coords[k+2])
		by := int(t.coords[k+3])

		mx := (ax + bx) >> 1
		my := (ay + by) >> 1
		cx := mx + my - ay
		cy := my + ax - mx

		interpolated := (heights[ay*size+ax] + heights[by*size+bx]) / 2
		middle := my*size + mx

		middleError := math32.Abs(interpolated - heights[middle])
		if middleError > errs[middle] {
			errs[middle] = middleError
		}

		if i < t.numParents {
			left := ((ay+cy)>>1)*size + ((ax+cx)>>1)
			right := ((by+cy)>>1)*size + ((bx+cx)>>1)
			if errs[left] > errs[middle] {
				errs[middle] = errs[left]
			}
			if errs[right] > errs[middle] {
				errs[middle] = errs[right]
			}
		}
	}

	return errs
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
