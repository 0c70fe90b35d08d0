package dem

import (
	"fmt"
	"math"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/arpentry/relief/internal/geo"
)

// Catalog wraps a Source with an in-memory grid cache so repeated tile
// requests do not resample the dataset each time. Only successful reads
// are cached; cost accounting is by grid byte size.
type Catalog struct {
	source Source
	cache  *ristretto.Cache[string, cachedGrid]
}

type cachedGrid struct {
	grid    *HeightGrid
	covered geo.PlanarBounds
}

// NewCatalog builds a catalog holding at most maxBytes of grid samples.
func NewCatalog(source Source, maxBytes int64) (*Catalog, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, cachedGrid]{
		NumCounters: 1e6,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating grid cache: %w", err)
	}
	return &Catalog{source: source, cache: cache}, nil
}

// Metadata returns the wrapped dataset's description.
func (c *Catalog) Metadata() Metadata { return c.source.Metadata() }

// Read serves a grid from cache, falling back to the wrapped source.
func (c *Catalog) Read(bounds geo.PlanarBounds, tileSize int) (*HeightGrid, geo.PlanarBounds, error) {
	key := gridKey(bounds, tileSize)
	if hit, ok := c.cache.Get(key); ok {
		return hit.grid, hit.covered, nil
	}

	grid, covered, err := c.source.Read(bounds, tileSize)
	if err != nil {
		return nil, geo.PlanarBounds{}, err
	}

	c.cache.Set(key, cachedGrid{grid: grid, covered: covered}, grid.ByteSize())
	return grid, covered, nil
}

// Wait blocks until pending cache writes are applied. Reads right after a
// Set may otherwise miss.
func (c *Catalog) Wait() { c.cache.Wait() }

// Close releases the cache.
func (c *Catalog) Close() { c.cache.Close() }

// gridKey identifies a read by the exact bit patterns of its bounds, so
// no two distinct requests can collide.
func gridKey(b geo.PlanarBounds, tileSize int) string {
	return fmt.Sprintf("%x:%x:%x:%x:%d",
		math.Float64bits(b.Min[0]), math.Float64bits(b.Min[1]),
		math.Float64bits(b.Max[0]), math.Float64bits(b.Max[1]), tileSize)
}
