// Package raster provides parsers for elevation raster formats.
package raster

import (
	"errors"

	"github.com/chewxy/math32"
)

// Shared raster errors.
var (
	ErrEmptyRaster     = errors.New("empty raster data")
	ErrInvalidDDMSize  = errors.New("invalid DDM size")
	ErrInvalidPNGDepth = errors.New("unsupported height PNG pixel format")
	ErrUnsupportedTIFF = errors.New("unsupported TIFF color model")
)

// Grid is a rectangular grid of elevation samples decoded from a raster
// file. Values are stored row-major with row 0 at the north edge, matching
// image order. NoData marks cells without measurements; NaN values are
// always treated as no-data regardless of the sentinel.
type Grid struct {
	Width  int
	Height int
	Values []float32
	NoData float32
}

// At returns the sample at the given cell.
// Returns the no-data sentinel if the cell is out of bounds.
func (g *Grid) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return g.NoData
	}
	return g.Values[y*g.Width+x]
}

// IsNoData reports whether the cell holds no measurement.
// Out-of-bounds cells count as no-data.
func (g *Grid) IsNoData(x, y int) bool {
	v := g.At(x, y)
	return v == g.NoData || math32.IsNaN(v)
}

// ElevationRange returns the minimum and maximum elevation across all
// measured cells. Returns (0, 0) when the grid holds no measurements.
func (g *Grid) ElevationRange() (min, max float32) {
	found := false
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.IsNoData(x, y) {
				continue
			}
			v := g.Values[y*g.Width+x]
			if !found {
				min, max = v, v
				found = true
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	if !found {
		return 0, 0
	}
	return min, max
}
