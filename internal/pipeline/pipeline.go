// Package pipeline assembles tiles end to end: resolve a tile address to
// planar bounds, resample elevation, triangulate within the level's error
// budget, map the grid mesh into the world frame, drape imagery, and
// encode the scene payload.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/paulmach/orb"

	"github.com/arpentry/relief/internal/dem"
	"github.com/arpentry/relief/internal/geo"
	"github.com/arpentry/relief/internal/mesh"
	"github.com/arpentry/relief/internal/preview"
	"github.com/arpentry/relief/internal/scene"
	"github.com/arpentry/relief/internal/tileset"
	"github.com/arpentry/relief/internal/tin"
)

// Build errors.
var (
	ErrInvalidTile      = errors.New("tile address out of range")
	ErrNoValidGeometry  = errors.New("tile has no valid geometry")
	ErrUnknownTileKind  = errors.New("unknown tile format")
	ErrUnknownImageKind = errors.New("unknown texture format")
)

// Tile payload formats.
const (
	FormatGLB  = "glb"
	FormatB3DM = "b3dm"
)

// Texture encodings.
const (
	TextureJPEG = "jpeg"
	TexturePNG  = "png"
)

// Options configures a pipeline. Source is required; everything else has
// a usable default.
type Options struct {
	Source         dem.Source
	Texture        scene.TextureSource // nil serves untextured tiles
	Policy         tileset.ErrorPolicy // nil derives a resolution policy
	MaxLevel       uint32
	TileSize       int // mesh cells per tile edge, power of two
	NeighborRadius int // no-data spread radius, negative for default
	Format         string
	TextureSize    int
	TextureFormat  string
	JPEGQuality    int
}

// TileResult is one encoded tile payload.
type TileResult struct {
	Address     tileset.Address
	Data        []byte
	ContentType string
	Vertices    int
	Triangles   int

	Bounds       geo.PlanarBounds // planar bounds the elevation read covered
	MinElevation float64          // meters, over surviving vertices
	MaxElevation float64
	Elapsed      time.Duration
}

// Pipeline builds tiles for one dataset. It is immutable after New and
// safe for concurrent use.
type Pipeline struct {
	source        dem.Source
	texture       scene.TextureSource
	policy        tileset.ErrorPolicy
	tri           *tin.Triangulator
	meta          dem.Metadata
	square        geo.PlanarBounds
	center        orb.Point
	maxLevel      uint32
	tileSize      int
	radius        int
	format        string
	textureSize   int
	textureFormat string
	jpegQuality   int
}

const defaultTileSize = 256

// New validates options and prepares a pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Source == nil {
		return nil, errors.New("pipeline needs an elevation source")
	}
	if opts.TileSize == 0 {
		opts.TileSize = defaultTileSize
	}
	if opts.NeighborRadius < 0 {
		opts.NeighborRadius = mesh.DefaultNeighborRadius
	}
	if opts.Format == "" {
		opts.Format = FormatGLB
	}
	if opts.Format != FormatGLB && opts.Format != FormatB3DM {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTileKind, opts.Format)
	}
	if opts.TextureFormat == "" {
		opts.TextureFormat = TextureJPEG
	}
	if opts.TextureFormat != TextureJPEG && opts.TextureFormat != TexturePNG {
		return nil, fmt.Errorf("%w: %q", ErrUnknownImageKind, opts.TextureFormat)
	}
	if opts.TextureSize <= 0 {
		opts.TextureSize = 256
	}

	tri, err := tin.New(opts.TileSize + 1)
	if err != nil {
		return nil, fmt.Errorf("preparing triangulator: %w", err)
	}

	meta := opts.Source.Metadata()
	square := meta.SquareBounds

	policy := opts.Policy
	if policy == nil {
		policy = tileset.ResolutionError{
			Base: (square.Max[0] - square.Min[0]) / float64(opts.TileSize),
		}
	}

	return &Pipeline{
		source:        opts.Source,
		texture:       opts.Texture,
		policy:        policy,
		tri:           tri,
		meta:          meta,
		square:        square,
		center:        square.Center(),
		maxLevel:      opts.MaxLevel,
		tileSize:      opts.TileSize,
		radius:        opts.NeighborRadius,
		format:        opts.Format,
		textureSize:   opts.TextureSize,
		textureFormat: opts.TextureFormat,
		jpegQuality:   opts.JPEGQuality,
	}, nil
}

// Metadata returns the dataset description the pipeline serves.
func (p *Pipeline) Metadata() dem.Metadata { return p.meta }

// Format returns the tile payload format.
func (p *Pipeline) Format() string { return p.format }

// MaxLevel returns the deepest tile level served.
func (p *Pipeline) MaxLevel() uint32 { return p.maxLevel }

// ContentType returns the MIME type of tile payloads.
func (p *Pipeline) ContentType() string {
	if p.format == FormatGLB {
		return "model/gltf-binary"
	}
	return "application/octet-stream"
}

// Tileset renders the descriptor tree for the dataset.
func (p *Pipeline) Tileset() *tileset.Tileset {
	b := &tileset.Builder{
		Global:    p.square,
		MinHeight: p.meta.MinElevation,
		MaxHeight: p.meta.MaxElevation,
		MaxLevel:  p.maxLevel,
		Policy:    p.policy,
		Ext:       p.format,
	}
	return b.Build()
}

// BuildTile builds the encoded payload for one tile address. It returns
// ErrInvalidTile for addresses outside the tree, dem.ErrNoData when the
// tile has no elevation at all, and ErrNoValidGeometry when every
// triangle touches an invalid vertex. The geometry check runs before any
// texture work so empty tiles never fetch imagery.
func (p *Pipeline) BuildTile(addr tileset.Address) (*TileResult, error) {
	start := time.Now()

	geom, indices, covered, err := p.buildGeometry(addr)
	if err != nil {
		return nil, err
	}

	var tex *scene.Texture
	if p.texture != nil {
		img, err := p.texture.Fetch(covered, p.textureSize)
		switch {
		case errors.Is(err, scene.ErrNoTexture):
		case err != nil:
			return nil, fmt.Errorf("fetching texture for %s: %w", addr, err)
		default:
			tex, err = p.encodeTexture(img)
			if err != nil {
				return nil, fmt.Errorf("encoding texture for %s: %w", addr, err)
			}
		}
	}

	var data []byte
	if p.format == FormatB3DM {
		data, err = scene.B3DM(geom, indices, tex)
	} else {
		data, err = scene.GLB(geom, indices, tex)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", addr, err)
	}

	return &TileResult{
		Address:      addr,
		Data:         data,
		ContentType:  p.ContentType(),
		Vertices:     geom.VertexCount(),
		Triangles:    len(indices) / 3,
		Bounds:       covered,
		MinElevation: geom.MinElevation,
		MaxElevation: geom.MaxElevation,
		Elapsed:      time.Since(start),
	}, nil
}

// BuildPreview renders a shaded image of one tile's geometry.
func (p *Pipeline) BuildPreview(addr tileset.Address, opts preview.Options) (image.Image, error) {
	geom, indices, _, err := p.buildGeometry(addr)
	if err != nil {
		return nil, err
	}
	return preview.Render(geom, indices, opts)
}

// buildGeometry runs the geometry stages shared by tile and preview
// builds: read, triangulate, map, filter, shade.
func (p *Pipeline) buildGeometry(addr tileset.Address) (*mesh.Geometry, []uint32, geo.PlanarBounds, error) {
	if !addr.Valid(p.maxLevel) {
		return nil, nil, geo.PlanarBounds{}, fmt.Errorf("%w: %s", ErrInvalidTile, addr)
	}

	bounds := tileset.PlanarBoundsAt(p.square, addr)
	grid, covered, err := p.source.Read(bounds, p.tileSize)
	if err != nil {
		return nil, nil, geo.PlanarBounds{}, err
	}

	tinMesh, err := p.tri.Triangulate(grid, p.policy.ErrorAt(addr.Level))
	if err != nil {
		return nil, nil, geo.PlanarBounds{}, fmt.Errorf("triangulating %s: %w", addr, err)
	}

	mapper := mesh.Mapper{Bounds: covered, Center: p.center, NeighborRadius: p.radius}
	geom, im := mapper.Map(grid, tinMesh.Vertices)

	indices := mesh.BuildTriangles(tinMesh.Triangles, im)
	if len(indices) == 0 {
		return nil, nil, geo.PlanarBounds{}, fmt.Errorf("%w: %s", ErrNoValidGeometry, addr)
	}

	geom.Normals = mesh.ComputeNormals(geom.Positions, indices)
	return geom, indices, covered, nil
}

func (p *Pipeline) encodeTexture(img image.Image) (*scene.Texture, error) {
	if p.textureFormat == TexturePNG {
		return scene.EncodePNG(img)
	}
	return scene.EncodeJPEG(img, p.jpegQuality)
}
