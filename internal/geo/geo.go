// Package geo provides the projections, bounds and region types shared by
// the tile pipeline. Planar and geographic rectangles are both orb.Bound
// values; the aliases document which space a signature expects.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// PlanarBounds is an axis-aligned rectangle in projected meters.
// Min is the southwest corner, Max the northeast corner.
type PlanarBounds = orb.Bound

// GeographicBounds is an axis-aligned rectangle in degrees,
// longitude on the X axis and latitude on the Y axis.
type GeographicBounds = orb.Bound

// Region is a geographic rectangle in radians with a height range in
// meters, ordered west, south, east, north as 3D Tiles regions are.
type Region struct {
	West      float64
	South     float64
	East      float64
	North     float64
	MinHeight float64
	MaxHeight float64
}

// NewRegion converts a degree rectangle and height range to a Region.
func NewRegion(b GeographicBounds, minHeight, maxHeight float64) Region {
	return Region{
		West:      Radians(b.Min[0]),
		South:     Radians(b.Min[1]),
		East:      Radians(b.Max[0]),
		North:     Radians(b.Max[1]),
		MinHeight: minHeight,
		MaxHeight: maxHeight,
	}
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Square expands b east or south into a square, keeping the northwest
// corner anchored. Datasets are tiled over square bounds so that quadtree
// cells stay square at every level.
func Square(b PlanarBounds) PlanarBounds {
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	side := w
	if h > side {
		side = h
	}
	return PlanarBounds{
		Min: orb.Point{b.Min[0], b.Max[1] - side},
		Max: orb.Point{b.Min[0] + side, b.Max[1]},
	}
}
