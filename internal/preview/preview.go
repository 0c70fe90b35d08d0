// Package preview renders tile geometry to shaded images with a software
// rasterizer, for quick visual checks without a 3D Tiles client.
package preview

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"

	"github.com/arpentry/relief/internal/mesh"
)

// ErrEmptyMesh is returned when there is nothing to render.
var ErrEmptyMesh = errors.New("mesh has no triangles")

// Rendering defaults.
const (
	DefaultSize        = 512
	DefaultSupersample = 4

	defaultBackground = "#202830"
	defaultSurface    = "#8C8A6F"
)

// Options controls preview rendering. Zero values fall back to defaults.
type Options struct {
	Size        int    // output image side in pixels
	Supersample int    // linear oversampling factor for antialiasing
	Background  string // hex background color
	Surface     string // hex surface color
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.Supersample < 1 {
		o.Supersample = DefaultSupersample
	}
	if o.Background == "" {
		o.Background = defaultBackground
	}
	if o.Surface == "" {
		o.Surface = defaultSurface
	}
	return o
}

// Render draws tile geometry from a fixed southeast viewpoint. The mesh
// is normalized to a bi-unit cube first, so any tile frames the same way
// regardless of its extent.
func Render(geom *mesh.Geometry, indices []uint32, opts Options) (image.Image, error) {
	if len(indices) < 3 {
		return nil, ErrEmptyMesh
	}
	opts = opts.withDefaults()

	triangles := make([]*fauxgl.Triangle, 0, len(indices)/3)
	for i := 0; i+3 <= len(indices); i += 3 {
		triangles = append(triangles, fauxgl.NewTriangleForPoints(
			pointAt(geom.Positions, indices[i]),
			pointAt(geom.Positions, indices[i+1]),
			pointAt(geom.Positions, indices[i+2]),
		))
	}
	m := fauxgl.NewTriangleMesh(triangles)
	m.BiUnitCube()

	side := opts.Size * opts.Supersample
	ctx := fauxgl.NewContext(side, side)
	ctx.ClearColorBufferWith(fauxgl.HexColor(opts.Background))

	eye := fauxgl.V(2.4, 2.0, 2.4)
	center := fauxgl.V(0, 0, 0)
	up := fauxgl.V(0, 1, 0)
	light := fauxgl.V(-0.6, 1, 0.4).Normalize()

	matrix := fauxgl.LookAt(eye, center, up).Perspective(40, 1, 1, 10)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(opts.Surface)
	ctx.Shader = shader
	ctx.DrawMesh(m)

	img := image.Image(ctx.Image())
	if opts.Supersample > 1 {
		img = resize.Resize(uint(opts.Size), uint(opts.Size), img, resize.Bilinear)
	}
	return img, nil
}

func pointAt(positions []float32, idx uint32) fauxgl.Vector {
	return fauxgl.V(
		float64(positions[3*idx]),
		float64(positions[3*idx+1]),
		float64(positions[3*idx+2]),
	)
}
