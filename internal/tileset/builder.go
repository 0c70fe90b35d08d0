package tileset

import (
	"github.com/arpentry/relief/internal/geo"
)

// RefineReplace is the only refinement mode the builder emits: a tile's
// children replace it entirely when they load.
const RefineReplace = "REPLACE"

// Builder renders descriptor trees from dataset metadata alone. It never
// touches mesh data: bounding volumes derive from planar bounds and the
// dataset's elevation range.
type Builder struct {
	Global    geo.PlanarBounds
	MinHeight float64
	MaxHeight float64
	MaxLevel  uint32
	Policy    ErrorPolicy
	Ext       string
}

// Build renders the full descriptor tree down to MaxLevel.
func (b *Builder) Build() *Tileset {
	return &Tileset{
		Asset:          Asset{Version: "1.0", GltfUpAxis: "Y"},
		GeometricError: b.Policy.ErrorAt(0),
		Root:           b.node(Address{}),
	}
}

func (b *Builder) node(addr Address) *Tile {
	tile := &Tile{
		BoundingVolume: b.boundingVolume(PlanarBoundsAt(b.Global, addr)),
		Refine:         RefineReplace,
		GeometricError: b.Policy.ErrorAt(addr.Level),
		Content:        &Content{URI: ContentURI(addr, b.Ext)},
	}

	if addr.Level < b.MaxLevel {
		children := addr.Children()
		tile.Children = make([]*Tile, 0, len(children))
		for _, c := range children {
			tile.Children = append(tile.Children, b.node(c))
		}
	}

	return tile
}

// boundingVolume builds the oriented box for a tile. The box lives in the
// same Y-up world frame as tile geometry: X east of the dataset center,
// Y the height midpoint, Z the negated northing offset.
func (b *Builder) boundingVolume(bounds geo.PlanarBounds) BoundingVolume {
	center := bounds.Center()
	dataCenter := b.Global.Center()

	cx := center[0] - dataCenter[0]
	cy := (b.MinHeight + b.MaxHeight) / 2
	cz := -(center[1] - dataCenter[1])

	hx := (bounds.Max[0] - bounds.Min[0]) / 2
	hy := (b.MaxHeight - b.MinHeight) / 2
	hz := (bounds.Max[1] - bounds.Min[1]) / 2

	return BoundingVolume{Box: [12]float64{
		cx, cy, cz,
		hx, 0, 0,
		0, hy, 0,
		0, 0, hz,
	}}
}
