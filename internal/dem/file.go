package dem

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"

	"github.com/arpentry/relief/internal/geo"
	"github.com/arpentry/relief/pkg/raster"
)

const defaultNoData = -32768

// Raster encodings accepted by FileOptions. Empty picks by extension.
const (
	EncodingHeight    = "height"    // raw sample values (DDM, gray PNG, gray TIFF)
	EncodingTerrarium = "terrarium" // Terrarium RGB-packed meters
)

// FileOptions configures a file-backed elevation source.
type FileOptions struct {
	Path       string
	Bounds     geo.PlanarBounds // planar extent of the raster
	Projection string           // planar projection code
	Encoding   string           // sample encoding, empty for by-extension
	NoData     float32          // raw sample value marking missing cells
	Scale      float64          // meters per raw unit, 0 means 1
	Offset     float64          // meters added after scaling
}

// FileSource serves tiles resampled from one raster file held in memory.
type FileSource struct {
	meta   Metadata
	values []float32
	noData float32
	resX   float64
	resY   float64
}

// OpenFile loads a raster file and prepares it for tile reads. Samples
// are converted to meters with scale and offset, and both the raw no-data
// value and NaN samples are normalized to one finite sentinel.
func OpenFile(opts FileOptions) (*FileSource, error) {
	grid, err := parseRaster(opts)
	if err != nil {
		return nil, err
	}

	width := opts.Bounds.Max[0] - opts.Bounds.Min[0]
	depth := opts.Bounds.Max[1] - opts.Bounds.Min[1]
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrEmptyBounds, opts.Bounds)
	}

	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	sentinel := opts.NoData
	if math32.IsNaN(sentinel) {
		sentinel = defaultNoData
	}

	s := &FileSource{
		values: make([]float32, len(grid.Values)),
		noData: sentinel,
		resX:   width / float64(grid.Width),
		resY:   depth / float64(grid.Height),
	}

	minElev, maxElev := 0.0, 0.0
	found := false
	for i, v := range grid.Values {
		if v == grid.NoData || math32.IsNaN(v) {
			s.values[i] = sentinel
			continue
		}
		meters := float32(float64(v)*scale + opts.Offset)
		s.values[i] = meters
		m := float64(meters)
		if !found {
			minElev, maxElev = m, m
			found = true
		} else if m < minElev {
			minElev = m
		} else if m > maxElev {
			maxElev = m
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNoData, opts.Path)
	}

	s.meta = Metadata{
		Bounds:       opts.Bounds,
		SquareBounds: geo.Square(opts.Bounds),
		Width:        grid.Width,
		Height:       grid.Height,
		MinElevation: minElev,
		MaxElevation: maxElev,
		NoData:       sentinel,
		Projection:   opts.Projection,
	}
	return s, nil
}

func parseRaster(opts FileOptions) (*raster.Grid, error) {
	ext := strings.ToLower(filepath.Ext(opts.Path))

	switch opts.Encoding {
	case EncodingTerrarium:
		if ext != ".png" {
			return nil, fmt.Errorf("%w: terrarium requires png, got %q", ErrUnknownFormat, ext)
		}
		return raster.ParseTerrariumPNGFile(opts.Path)
	case "", EncodingHeight:
	default:
		return nil, fmt.Errorf("%w: encoding %q", ErrUnknownFormat, opts.Encoding)
	}

	switch ext {
	case ".ddm":
		return raster.ParseDDMFile(opts.Path, opts.NoData)
	case ".png":
		return raster.ParseHeightPNGFile(opts.Path, opts.NoData)
	case ".tif", ".tiff":
		return raster.ParseTIFFFile(opts.Path, opts.NoData)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
}

// Metadata returns the dataset description.
func (s *FileSource) Metadata() Metadata { return s.meta }

// Read resamples the raster into a grid of tileSize+1 samples per side
// covering exactly the requested bounds. Samples outside the stored
// extent carry the no-data sentinel; a request with no valid sample at
// all returns ErrNoData.
func (s *FileSource) Read(bounds geo.PlanarBounds, tileSize int) (*HeightGrid, geo.PlanarBounds, error) {
	if tileSize < 1 {
		return nil, geo.PlanarBounds{}, fmt.Errorf("%w: %d", ErrBadTileSize, tileSize)
	}
	if !s.meta.Bounds.Intersects(bounds) {
		return nil, geo.PlanarBounds{}, fmt.Errorf("%w: %v", ErrNoData, bounds)
	}

	side := tileSize + 1
	grid := NewHeightGrid(side, s.noData)
	width := bounds.Max[0] - bounds.Min[0]
	depth := bounds.Max[1] - bounds.Min[1]

	valid := false
	for gy := 0; gy < side; gy++ {
		sy := bounds.Max[1] - float64(gy)/float64(tileSize)*depth
		for gx := 0; gx < side; gx++ {
			sx := bounds.Min[0] + float64(gx)/float64(tileSize)*width
			v := s.sample(sx, sy)
			grid.Set(gx, gy, v)
			if v != s.noData {
				valid = true
			}
		}
	}
	if !valid {
		return nil, geo.PlanarBounds{}, fmt.Errorf("%w: %v", ErrNoData, bounds)
	}
	return grid, bounds, nil
}

// sample interpolates the elevation at a planar position. Cells flagged
// no-data degrade the interpolation to the nearest cell value; positions
// outside the stored extent return the sentinel.
func (s *FileSource) sample(x, y float64) float32 {
	b := s.meta.Bounds
	if x < b.Min[0] || x > b.Max[0] || y < b.Min[1] || y > b.Max[1] {
		return s.noData
	}

	// Positions are measured against cell centers, row 0 at the north.
	fx := (x-b.Min[0])/s.resX - 0.5
	fy := (b.Max[1]-y)/s.resY - 0.5

	x0 := clampCell(int(math.Floor(fx)), s.meta.Width)
	y0 := clampCell(int(math.Floor(fy)), s.meta.Height)
	x1 := min(x0+1, s.meta.Width-1)
	y1 := min(y0+1, s.meta.Height-1)

	fracX := clampf(float32(fx-float64(x0)), 0, 1)
	fracY := clampf(float32(fy-float64(y0)), 0, 1)

	v00 := s.cell(x0, y0)
	v10 := s.cell(x1, y0)
	v01 := s.cell(x0, y1)
	v11 := s.cell(x1, y1)

	if v00 == s.noData || v10 == s.noData || v01 == s.noData || v11 == s.noData {
		nx, ny := x0, y0
		if fracX > 0.5 {
			nx = x1
		}
		if fracY > 0.5 {
			ny = y1
		}
		return s.cell(nx, ny)
	}

	north := v00*(1-fracX) + v10*fracX
	south := v01*(1-fracX) + v11*fracX
	return north*(1-fracY) + south*fracY
}

func (s *FileSource) cell(x, y int) float32 {
	return s.values[y*s.meta.Width+x]
}

func clampCell(c, n int) int {
	if c < 0 {
		return 0
	}
	if c > n-1 {
		return n - 1
	}
	return c
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
