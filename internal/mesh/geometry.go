// Package mesh turns triangulated height grids into world-space geometry:
// tile-centered positions, texture coordinates, filtered triangle indices
// and smooth per-vertex normals.
package mesh

// Geometry holds the vertex buffers for one tile. Positions are
// tile-centered meters in a right-handed Y-up frame: X east of the dataset
// center, Y height, Z south. UVs have their origin at the northwest corner
// with V growing southward, matching image row order.
type Geometry struct {
	Positions []float32 // 3 per vertex
	UVs       []float32 // 2 per vertex
	Normals   []float32 // 3 per vertex, filled by ComputeNormals

	MinElevation float64
	MaxElevation float64
}

// VertexCount returns the number of final vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}
