package dem

// HeightGrid is a square grid of elevation samples for one tile, with
// row 0 at the north edge. Cells without valid elevation carry the
// dataset's no-data sentinel; sample values are always finite.
type HeightGrid struct {
	side   int
	values []float32
	noData float32
}

// NewHeightGrid allocates a grid of side*side samples, all set to the
// no-data sentinel.
func NewHeightGrid(side int, noData float32) *HeightGrid {
	g := &HeightGrid{
		side:   side,
		values: make([]float32, side*side),
		noData: noData,
	}
	for i := range g.values {
		g.values[i] = noData
	}
	return g
}

// Side returns the number of samples per grid side.
func (g *HeightGrid) Side() int { return g.side }

// NoData returns the grid's no-data sentinel.
func (g *HeightGrid) NoData() float32 { return g.noData }

// At returns the sample at (x, y), or the no-data sentinel out of bounds.
func (g *HeightGrid) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= g.side || y >= g.side {
		return g.noData
	}
	return g.values[y*g.side+x]
}

// Set stores a sample at (x, y). Out-of-bounds coordinates are ignored.
func (g *HeightGrid) Set(x, y int, v float32) {
	if x < 0 || y < 0 || x >= g.side || y >= g.side {
		return
	}
	g.values[y*g.side+x] = v
}

// IsNoData reports whether the sample at (x, y) is missing. Coordinates
// outside the grid count as missing.
func (g *HeightGrid) IsNoData(x, y int) bool {
	return g.At(x, y) == g.noData
}

// MinMax returns the elevation range over valid samples, or (0, 0) when
// the grid holds no valid sample.
func (g *HeightGrid) MinMax() (min, max float32) {
	found := false
	for _, v := range g.values {
		if v == g.noData {
			continue
		}
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
	if !found {
		return 0, 0
	}
	return min, max
}

// HasValid reports whether any sample holds valid elevation.
func (g *HeightGrid) HasValid() bool {
	for _, v := range g.values {
		if v != g.noData {
			return true
		}
	}
	return false
}

// ByteSize returns the in-memory size of the sample buffer, used as the
// cache cost of a grid.
func (g *HeightGrid) ByteSize() int64 {
	return int64(len(g.values)) * 4
}
