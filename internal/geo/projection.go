package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Projection errors.
var (
	ErrUnknownProjection = errors.New("unknown projection code")
)

// WGS84 ellipsoid constants.
const (
	semiMajorAxis        = 6378137.0
	eccentricity         = 0.081819190842622
	maxMercatorLatitude  = 85.051128
	maxEllipsoidLatitude = 89.9
)

// Projection converts between geographic degrees and projected planar
// meters. Forward and Inverse are orb projections, so they compose with
// the orb/project helpers.
type Projection struct {
	Code    string
	Forward orb.Projection
	Inverse orb.Projection
}

var (
	// WebMercator is the spherical Mercator projection used by web maps
	// (EPSG:3857). Latitudes are clamped to the web-mercator pole.
	WebMercator = Projection{
		Code: "EPSG:3857",
		Forward: func(p orb.Point) orb.Point {
			return project.WGS84.ToMercator(clampLatitude(p, maxMercatorLatitude))
		},
		Inverse: project.Mercator.ToWGS84,
	}

	// WorldMercator is the ellipsoidal WGS84 Mercator projection
	// (EPSG:3395). Latitudes are clamped short of the poles.
	WorldMercator = Projection{
		Code:    "EPSG:3395",
		Forward: worldMercatorForward,
		Inverse: worldMercatorInverse,
	}
)

// ByCode returns the projection for an EPSG code string.
func ByCode(code string) (Projection, error) {
	switch code {
	case WebMercator.Code:
		return WebMercator, nil
	case WorldMercator.Code:
		return WorldMercator, nil
	default:
		return Projection{}, fmt.Errorf("%w: %q", ErrUnknownProjection, code)
	}
}

// ToPlanar projects a degree point to planar meters.
func (pr Projection) ToPlanar(p orb.Point) orb.Point {
	return pr.Forward(p)
}

// ToGeographic unprojects a planar point to degrees.
func (pr Projection) ToGeographic(p orb.Point) orb.Point {
	return pr.Inverse(p)
}

// PlanarBound projects a degree rectangle to planar meters.
func (pr Projection) PlanarBound(b GeographicBounds) PlanarBounds {
	return project.Bound(b, pr.Forward)
}

// GeographicBound unprojects a planar rectangle to degrees.
func (pr Projection) GeographicBound(b PlanarBounds) GeographicBounds {
	return project.Bound(b, pr.Inverse)
}

func worldMercatorForward(p orb.Point) orb.Point {
	p = clampLatitude(p, maxEllipsoidLatitude)
	lat := Radians(p[1])
	sin := math.Sin(lat)

	con := math.Pow((1-eccentricity*sin)/(1+eccentricity*sin), eccentricity/2)
	y := semiMajorAxis * math.Log(math.Tan(math.Pi/4+lat/2)*con)

	return orb.Point{semiMajorAxis * Radians(p[0]), y}
}

func worldMercatorInverse(p orb.Point) orb.Point {
	t := math.Exp(-p[1] / semiMajorAxis)
	lat := math.Pi/2 - 2*math.Atan(t)

	// Standard iterative latitude recovery for the ellipsoidal Mercator.
	for i := 0; i < 15; i++ {
		sin := math.Sin(lat)
		con := math.Pow((1-eccentricity*sin)/(1+eccentricity*sin), eccentricity/2)
		next := math.Pi/2 - 2*math.Atan(t*con)
		if math.Abs(next-lat) < 1e-12 {
			lat = next
			break
		}
		lat = next
	}

	return orb.Point{Degrees(p[0] / semiMajorAxis), Degrees(lat)}
}

func clampLatitude(p orb.Point, limit float64) orb.Point {
	if p[1] > limit {
		p[1] = limit
	}
	if p[1] < -limit {
		p[1] = -limit
	}
	return p
}
