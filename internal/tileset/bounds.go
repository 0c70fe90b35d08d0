package tileset

import (
	"github.com/paulmach/orb"

	"github.com/arpentry/relief/internal/geo"
)

// PlanarBoundsAt returns the planar rectangle covered by addr within the
// dataset's global square bounds. Edges are interpolated from the global
// edges with the same expression at every level, so the four children of a
// tile cover exactly its rectangle and adjacent tiles share edges
// bit-for-bit.
func PlanarBoundsAt(global geo.PlanarBounds, addr Address) geo.PlanarBounds {
	n := float64(uint64(1) << addr.Level)
	w := global.Max[0] - global.Min[0]
	h := global.Max[1] - global.Min[1]

	minX := global.Min[0] + w*float64(addr.Column)/n
	maxX := global.Min[0] + w*float64(addr.Column+1)/n
	maxY := global.Max[1] - h*float64(addr.Row)/n
	minY := global.Max[1] - h*float64(addr.Row+1)/n

	return geo.PlanarBounds{
		Min: orb.Point{minX, minY},
		Max: orb.Point{maxX, maxY},
	}
}

// GeographicBoundsAt returns the degree rectangle covered by addr, using
// the dataset projection's inverse.
func GeographicBoundsAt(global geo.PlanarBounds, addr Address, pr geo.Projection) geo.GeographicBounds {
	return pr.GeographicBound(PlanarBoundsAt(global, addr))
}

// RegionAt returns the tile's geographic extent in radians together with a
// height range, the form region bounding volumes take.
func RegionAt(global geo.PlanarBounds, addr Address, pr geo.Projection, minHeight, maxHeight float64) geo.Region {
	return geo.NewRegion(GeographicBoundsAt(global, addr, pr), minHeight, maxHeight)
}
