package pipeline

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/arpentry/relief/internal/config"
	"github.com/arpentry/relief/internal/dem"
	"github.com/arpentry/relief/internal/geo"
	"github.com/arpentry/relief/internal/scene"
	"github.com/arpentry/relief/internal/tileset"
)

// FromConfig assembles a pipeline from a loaded configuration: it opens
// the elevation raster, wraps it in a grid cache when one is budgeted,
// opens the optional texture image, and derives the error policy from
// the dataset. Close the returned pipeline when done with it.
func FromConfig(cfg *config.Config) (*Pipeline, error) {
	ds := cfg.Dataset
	if ds.Path == "" {
		return nil, errors.New("dataset path not configured")
	}
	if ds.Extent.IsZero() {
		return nil, errors.New("dataset extent not configured")
	}

	file, err := dem.OpenFile(dem.FileOptions{
		Path:       ds.Path,
		Bounds:     planarBounds(ds.Extent),
		Projection: ds.Projection,
		Encoding:   ds.Encoding,
		NoData:     float32(ds.NoData),
		Scale:      ds.Scale,
		Offset:     ds.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}

	var source dem.Source = file
	if ds.CacheMB > 0 {
		catalog, err := dem.NewCatalog(file, ds.CacheMB<<20)
		if err != nil {
			return nil, fmt.Errorf("creating grid cache: %w", err)
		}
		source = catalog
	}

	var texture scene.TextureSource
	if cfg.Texture.Path != "" {
		extent := cfg.Texture.Extent
		if extent.IsZero() {
			extent = ds.Extent
		}
		texture, err = scene.OpenImage(cfg.Texture.Path, planarBounds(extent))
		if err != nil {
			return nil, fmt.Errorf("opening texture: %w", err)
		}
	}

	return New(Options{
		Source:         source,
		Texture:        texture,
		Policy:         policyFromConfig(cfg.Mesh, file.Metadata()),
		MaxLevel:       uint32(cfg.Mesh.MaxLevel),
		TileSize:       cfg.Mesh.TileSize,
		NeighborRadius: cfg.Mesh.NeighborRadius,
		Format:         cfg.Mesh.Format,
		TextureSize:    cfg.Texture.Size,
		TextureFormat:  cfg.Texture.Format,
		JPEGQuality:    cfg.Texture.Quality,
	})
}

// Close releases resources held by the elevation source.
func (p *Pipeline) Close() {
	if c, ok := p.source.(interface{ Close() }); ok {
		c.Close()
	}
}

func policyFromConfig(mc config.MeshConfig, meta dem.Metadata) tileset.ErrorPolicy {
	base := mc.ErrorBase
	if base == 0 {
		size := mc.TileSize
		if size <= 0 {
			size = defaultTileSize
		}
		square := meta.SquareBounds
		base = (square.Max[0] - square.Min[0]) / float64(size)
	}
	resolution := tileset.ResolutionError{Base: base, Min: mc.ErrorMin}
	elevation := tileset.ElevationError{
		Range:    meta.MaxElevation - meta.MinElevation,
		Fraction: mc.ErrorFraction,
		Min:      mc.ErrorMin,
	}
	return tileset.SelectPolicy(mc.Policy, resolution, elevation)
}

func planarBounds(e config.ExtentConfig) geo.PlanarBounds {
	return orb.Bound{
		Min: orb.Point{e.West, e.South},
		Max: orb.Point{e.East, e.North},
	}
}
