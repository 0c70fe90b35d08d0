package scene

import (
	"fmt"
	"image"
	"math"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/arpentry/relief/internal/geo"
)

// TextureSource produces drape imagery for tile bounds. Implementations
// return ErrNoTexture when the bounds fall outside their coverage.
type TextureSource interface {
	Fetch(bounds geo.PlanarBounds, size int) (image.Image, error)
}

// None is the texture source for datasets served without imagery.
type None struct{}

// Fetch always reports no texture.
func (None) Fetch(geo.PlanarBounds, int) (image.Image, error) {
	return nil, ErrNoTexture
}

// ImageFile drapes tiles from one georeferenced image held in memory.
type ImageFile struct {
	img    image.Image
	bounds geo.PlanarBounds
}

// OpenImage loads a georeferenced image. The bounds give the image's
// planar extent in the dataset projection, row 0 at the north edge.
func OpenImage(path string, bounds geo.PlanarBounds) (*ImageFile, error) {
	if bounds.Max[0] <= bounds.Min[0] || bounds.Max[1] <= bounds.Min[1] {
		return nil, fmt.Errorf("empty texture bounds: %v", bounds)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", path, err)
	}
	return &ImageFile{img: img, bounds: bounds}, nil
}

// Fetch crops the covered part of the requested bounds out of the image
// and scales it onto a size by size canvas. Areas outside the image stay
// blank; bounds that miss the image entirely return ErrNoTexture.
func (t *ImageFile) Fetch(bounds geo.PlanarBounds, size int) (image.Image, error) {
	ix0 := math.Max(bounds.Min[0], t.bounds.Min[0])
	iy0 := math.Max(bounds.Min[1], t.bounds.Min[1])
	ix1 := math.Min(bounds.Max[0], t.bounds.Max[0])
	iy1 := math.Min(bounds.Max[1], t.bounds.Max[1])
	if ix0 >= ix1 || iy0 >= iy1 {
		return nil, fmt.Errorf("%w: %v", ErrNoTexture, bounds)
	}

	pix := t.img.Bounds()
	sw := t.bounds.Max[0] - t.bounds.Min[0]
	sh := t.bounds.Max[1] - t.bounds.Min[1]

	sr := image.Rect(
		pix.Min.X+int(math.Floor((ix0-t.bounds.Min[0])/sw*float64(pix.Dx()))),
		pix.Min.Y+int(math.Floor((t.bounds.Max[1]-iy1)/sh*float64(pix.Dy()))),
		pix.Min.X+int(math.Ceil((ix1-t.bounds.Min[0])/sw*float64(pix.Dx()))),
		pix.Min.Y+int(math.Ceil((t.bounds.Max[1]-iy0)/sh*float64(pix.Dy()))),
	).Intersect(pix)

	bw := bounds.Max[0] - bounds.Min[0]
	bh := bounds.Max[1] - bounds.Min[1]
	dr := image.Rect(
		int(math.Floor((ix0-bounds.Min[0])/bw*float64(size))),
		int(math.Floor((bounds.Max[1]-iy1)/bh*float64(size))),
		int(math.Ceil((ix1-bounds.Min[0])/bw*float64(size))),
		int(math.Ceil((bounds.Max[1]-iy0)/bh*float64(size))),
	).Intersect(image.Rect(0, 0, size, size))

	if sr.Empty() || dr.Empty() {
		return nil, fmt.Errorf("%w: %v", ErrNoTexture, bounds)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(canvas, dr, t.img, sr, draw.Src, nil)
	return canvas, nil
}
