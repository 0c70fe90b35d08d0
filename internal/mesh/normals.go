package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// ComputeNormals returns one unit normal per vertex, averaging the face
// normals of every triangle sharing the vertex. Face normals are left
// unnormalized during accumulation, so larger triangles weigh more.
//
// A vertex referenced by no triangle, or whose face normals cancel
// exactly, gets the zero vector: the zero-length accumulator is divided
// by 1 instead of its norm, which keeps the output finite.
func ComputeNormals(positions []float32, indices []uint32) []float32 {
	acc := make([]r3.Vec, len(positions)/3)

	for i := 0; i+3 <= len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]

		va := vecAt(positions, a)
		vb := vecAt(positions, b)
		vc := vecAt(positions, c)

		face := r3.Cross(r3.Sub(vb, va), r3.Sub(vc, va))
		acc[a] = r3.Add(acc[a], face)
		acc[b] = r3.Add(acc[b], face)
		acc[c] = r3.Add(acc[c], face)
	}

	normals := make([]float32, len(positions))
	for i, v := range acc {
		norm := r3.Norm(v)
		if norm == 0 {
			norm = 1
		}
		normals[i*3+0] = float32(v.X / norm)
		normals[i*3+1] = float32(v.Y / norm)
		normals[i*3+2] = float32(v.Z / norm)
	}
	return normals
}

func vecAt(positions []float32, i uint32) r3.Vec {
	return r3.Vec{
		X: float64(positions[i*3+0]),
		Y: float64(positions[i*3+1]),
		Z: float64(positions[i*3+2]),
	}
}
