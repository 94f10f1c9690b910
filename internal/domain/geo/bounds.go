package geo

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

var validLat = r1.Interval{Lo: -math.Pi / 2, Hi: math.Pi / 2}

// Bounds is a latitude/longitude rectangle backed by s2.Rect.
type Bounds struct {
	rect s2.Rect
}

// BoundsOf returns the smallest rectangle containing all points.
func BoundsOf(points []Point) Bounds {
	rect := s2.EmptyRect()
	for _, p := range points {
		rect = rect.AddPoint(p.LatLng())
	}
	return Bounds{rect: rect}
}

// NewBounds builds bounds from explicit south/west/north/east degrees. The
// longitude span runs eastward from west to east, so west > east crosses the
// antimeridian.
func NewBounds(south, west, north, east float64) Bounds {
	lat := r1.Interval{Lo: south * math.Pi / 180, Hi: north * math.Pi / 180}
	lng := s1.IntervalFromEndpoints(west*math.Pi/180, east*math.Pi/180)
	return Bounds{rect: s2.Rect{Lat: lat, Lng: lng}}
}

// IsEmpty reports whether the bounds contain no points.
func (b Bounds) IsEmpty() bool {
	return b.rect.IsEmpty()
}

// Expand grows the rectangle by roughly `meters` on every side.
func (b Bounds) Expand(meters float64) Bounds {
	if b.rect.IsEmpty() || meters <= 0 {
		return b
	}
	dLat := meters / EarthRadiusMeters
	maxLat := math.Max(math.Abs(b.rect.Lo().Lat.Radians()), math.Abs(b.rect.Hi().Lat.Radians())) + dLat
	cosLat := math.Cos(maxLat)
	dLng := math.Pi
	if cosLat > 1e-9 {
		dLng = math.Min(math.Pi, dLat/cosLat)
	}
	lat := b.rect.Lat.Expanded(dLat).Intersection(validLat)
	return Bounds{rect: s2.Rect{Lat: lat, Lng: b.rect.Lng.Expanded(dLng)}.PolarClosure()}
}

// Contains reports whether p lies inside the bounds.
func (b Bounds) Contains(p Point) bool {
	return b.rect.ContainsLatLng(p.LatLng())
}

// South returns the minimum latitude in degrees.
func (b Bounds) South() float64 { return b.rect.Lo().Lat.Degrees() }

// West returns the minimum longitude in degrees.
func (b Bounds) West() float64 { return b.rect.Lo().Lng.Degrees() }

// North returns the maximum latitude in degrees.
func (b Bounds) North() float64 { return b.rect.Hi().Lat.Degrees() }

// East returns the maximum longitude in degrees.
func (b Bounds) East() float64 { return b.rect.Hi().Lng.Degrees() }
