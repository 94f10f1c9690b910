package route

import (
	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/hazard"
)

// DefaultProximityMeters is how close a chunk must come to a hazard point to be affected.
const DefaultProximityMeters = 30.0

// Classify tags a chunk by hazard proximity. Hazards are visited by severity
// (hazard, caution, info) and in catalog order within a severity; the first point
// strictly closer than threshold decides the tag. Info points mark the chunk safe.
func Classify(chunk []geo.Point, hazards []hazard.Point, threshold float64) Accessibility {
	for _, severity := range hazard.Severities {
		for _, h := range hazards {
			if h.Severity != severity {
				continue
			}
			if withinRange(chunk, h.Point, threshold) {
				return tagFor(severity)
			}
		}
	}
	return Safe
}

func withinRange(chunk []geo.Point, target geo.Point, threshold float64) bool {
	for _, p := range chunk {
		if geo.Distance(p, target) < threshold {
			return true
		}
	}
	return false
}

func tagFor(severity hazard.Severity) Accessibility {
	switch severity {
	case hazard.SeverityHazard:
		return Hazard
	case hazard.SeverityInfo:
		return Safe
	default:
		return Caution
	}
}

// NearbyHazards keeps the hazards that can affect path, preserving order.
func NearbyHazards(path []geo.Point, hazards []hazard.Point, threshold float64) []hazard.Point {
	if len(path) == 0 || len(hazards) == 0 {
		return nil
	}
	bounds := geo.BoundsOf(path).Expand(2 * threshold)
	out := make([]hazard.Point, 0, len(hazards))
	for _, h := range hazards {
		if bounds.Contains(h.Point) {
			out = append(out, h)
		}
	}
	return out
}
