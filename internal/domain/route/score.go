package route

import (
	"fmt"
	"math"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/hazard"
)

const (
	safeSpeedFactor    = 1.0
	cautionSpeedFactor = 0.65
	hazardSpeedFactor  = 0.35
	minSpeedFactor     = 0.2

	groundCheckAdvisory = "Verify accessibility features on ground"
	fallbackAdvisory    = "Approximate route: routing service unavailable"
)

var segmentDescriptions = map[Accessibility]string{
	Safe:    "Clear accessible path",
	Caution: "Proceed carefully",
	Hazard:  "Accessibility barrier",
}

// Score classifies every chunk of path and summarizes the route.
func Score(path Path, hazards []hazard.Point, threshold float64) Result {
	chunks := SplitPath(path.Coordinates)
	segments := make([]Segment, 0, len(chunks))
	for _, chunk := range chunks {
		tag := Classify(chunk, hazards, threshold)
		surface := surfaceUnknown
		if tag == Safe {
			surface = surfacePaved
		}
		segments = append(segments, Segment{
			Coordinates:   chunk,
			Accessibility: tag,
			Surface:       surface,
			Description:   segmentDescriptions[tag],
		})
	}

	distance := path.Distance
	if distance <= 0 {
		distance = geo.PathLength(path.Coordinates)
	}

	return Result{
		Segments:  segments,
		Distance:  distance,
		Duration:  EstimateTime(distance, segments),
		Warnings:  Warnings(segments),
		Breakdown: BreakdownOf(segments),
		Source:    SourceProvider,
	}
}

type tagCounts struct {
	safe, caution, hazard, total int
}

func countTags(segments []Segment) tagCounts {
	var c tagCounts
	for _, seg := range segments {
		switch seg.Accessibility {
		case Hazard:
			c.hazard++
		case Caution:
			c.caution++
		default:
			c.safe++
		}
	}
	c.total = len(segments)
	return c
}

// SpeedFactor is the weighted walking speed relative to 1 m/s, floored at 0.2.
// A route without segments walks at nominal speed.
func SpeedFactor(segments []Segment) float64 {
	c := countTags(segments)
	if c.total == 0 {
		return safeSpeedFactor
	}
	n := float64(c.total)
	factor := float64(c.safe)/n*safeSpeedFactor +
		float64(c.caution)/n*cautionSpeedFactor +
		float64(c.hazard)/n*hazardSpeedFactor
	return math.Max(factor, minSpeedFactor)
}

// EstimateTime returns the traversal time in seconds.
func EstimateTime(distance float64, segments []Segment) float64 {
	return distance / SpeedFactor(segments)
}

// Warnings lists the barrier count, the caution count and the ground check advisory, in that order.
func Warnings(segments []Segment) []string {
	c := countTags(segments)
	warnings := make([]string, 0, 3)
	if c.hazard > 0 {
		warnings = append(warnings, fmt.Sprintf("%d accessibility barrier(s) on this route", c.hazard))
	}
	if c.caution > 0 {
		warnings = append(warnings, fmt.Sprintf("%d caution area(s) — proceed with care", c.caution))
	}
	return append(warnings, groundCheckAdvisory)
}

// BreakdownOf returns the percentage of segments per tag.
func BreakdownOf(segments []Segment) Breakdown {
	c := countTags(segments)
	if c.total == 0 {
		return Breakdown{}
	}
	n := float64(c.total)
	return Breakdown{
		Safe:    float64(c.safe) * 100 / n,
		Caution: float64(c.caution) * 100 / n,
		Hazard:  float64(c.hazard) * 100 / n,
	}
}
