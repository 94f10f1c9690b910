package route

import "github.com/yanqian/accessroute/internal/domain/geo"

const (
	fallbackSteps         = 12
	fallbackDetourPenalty = 1.25
)

// FallbackPath synthesizes an L-shaped path: north/south to the midpoint latitude, then
// east/west to the destination longitude, then the destination itself. The reported distance
// is the straight-line distance with a 25% detour penalty.
func FallbackPath(start, end geo.Point) Path {
	midLat := (start.Lat + end.Lat) / 2
	corner := geo.Point{Lat: midLat, Lng: start.Lng}
	across := geo.Point{Lat: midLat, Lng: end.Lng}
	coords := make([]geo.Point, 0, 2*fallbackSteps+2)
	coords = append(coords, start)
	for i := 1; i <= fallbackSteps; i++ {
		coords = append(coords, geo.Lerp(start, corner, float64(i)/fallbackSteps))
	}
	for i := 1; i <= fallbackSteps; i++ {
		coords = append(coords, geo.Lerp(corner, across, float64(i)/fallbackSteps))
	}
	coords = append(coords, end)
	return Path{
		Coordinates: coords,
		Distance:    geo.Distance(start, end) * fallbackDetourPenalty,
	}
}
