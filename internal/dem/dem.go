// Package dem handles elevation data loading and resampling.
//
// A Source exposes one elevation dataset: its planar metadata plus a read
// operation that resamples any requested bounds into a square height grid
// of tileSize+1 samples per side, row 0 at the north edge.
package dem

import (
	"errors"

	"github.com/arpentry/relief/internal/geo"
)

// Elevation source errors.
var (
	ErrNoData        = errors.New("no elevation data in requested bounds")
	ErrBadTileSize   = errors.New("tile size must be positive")
	ErrUnknownFormat = errors.New("unknown elevation format")
	ErrEmptyBounds   = errors.New("dataset bounds are empty")
)

// Metadata describes an elevation dataset in its planar projection.
type Metadata struct {
	Bounds       geo.PlanarBounds // stored raster extent
	SquareBounds geo.PlanarBounds // square tiling extent, anchored northwest
	Width        int              // raster cells west to east
	Height       int              // raster cells north to south
	MinElevation float64          // meters, over valid cells
	MaxElevation float64          // meters, over valid cells
	NoData       float32          // sentinel carried by returned grids
	Projection   string           // planar projection code
}

// Resolution returns the ground width of one raster cell in planar units.
func (m Metadata) Resolution() float64 {
	if m.Width == 0 {
		return 0
	}
	return (m.Bounds.Max[0] - m.Bounds.Min[0]) / float64(m.Width)
}

// Source is an elevation dataset that can be resampled into tile grids.
// Read returns the grid together with the planar bounds it covers, and
// ErrNoData when the requested bounds hold no valid elevation at all.
type Source interface {
	Metadata() Metadata
	Read(bounds geo.PlanarBounds, tileSize int) (*HeightGrid, geo.PlanarBounds, error)
}
