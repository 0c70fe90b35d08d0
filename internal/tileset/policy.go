package tileset

// ErrorPolicy maps a quadtree level to the geometric error reported for
// tiles at that level, in meters. Implementations must be non-increasing
// in level and bounded below by a positive minimum.
type ErrorPolicy interface {
	ErrorAt(level uint32) float64
}

// Policy names accepted by SelectPolicy.
const (
	PolicyResolution = "resolution"
	PolicyElevation  = "elevation"
)

// SelectPolicy picks one of the two prepared policies by name.
// Unrecognized or empty names fall back to the resolution policy.
func SelectPolicy(name string, resolution ResolutionError, elevation ElevationError) ErrorPolicy {
	if name == PolicyElevation {
		return elevation
	}
	return resolution
}

// ResolutionError halves a base resolution error at every level, clamped
// below by Min. Base is the error of rendering the whole dataset as a
// single tile, derived from the source resolution.
type ResolutionError struct {
	Base float64
	Min  float64
}

// ErrorAt implements ErrorPolicy.
func (p ResolutionError) ErrorAt(level uint32) float64 {
	return clampError(p.Base, level, p.Min)
}

// ElevationError scales the dataset's elevation range by a fraction and
// halves the result at every level, clamped below by Min. It ties mesh
// density to relief instead of resolution, which suits datasets whose
// horizontal resolution far exceeds their vertical variation.
type ElevationError struct {
	Range    float64
	Fraction float64
	Min      float64
}

// ErrorAt implements ErrorPolicy.
func (p ElevationError) ErrorAt(level uint32) float64 {
	return clampError(p.Range*p.Fraction, level, p.Min)
}

func clampError(base float64, level uint32, min float64) float64 {
	if level > 62 {
		return min
	}
	e := base / float64(uint64(1)<<level)
	if e < min {
		return min
	}
	return e
}
