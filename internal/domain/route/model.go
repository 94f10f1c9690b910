package route

import (
	"github.com/yanqian/accessroute/internal/domain/geo"
)

// Accessibility is the risk tag of a segment. Severity order is hazard > caution > safe.
type Accessibility string

const (
	Safe    Accessibility = "safe"
	Caution Accessibility = "caution"
	Hazard  Accessibility = "hazard"
)

// Source tells whether a path came from the routing provider or was synthesized locally.
type Source string

const (
	SourceProvider Source = "provider"
	SourceFallback Source = "fallback"
)

const (
	surfacePaved   = "Paved"
	surfaceUnknown = "Unknown"
)

// Path is a raw routed polyline. Distance is the provider reported length in meters, 0 when unknown.
type Path struct {
	Coordinates []geo.Point
	Distance    float64
}

// Segment is a contiguous, classified portion of a route.
type Segment struct {
	Coordinates   []geo.Point   `json:"coordinates"`
	Accessibility Accessibility `json:"accessibility"`
	Surface       string        `json:"surface,omitempty"`
	Description   string        `json:"description,omitempty"`
}

// ElevationSample is one point of the elevation profile.
type ElevationSample struct {
	Distance  float64 `json:"distance"`
	Elevation float64 `json:"elevation"`
}

// Breakdown is the share of segments per tag, in percent, by segment count.
type Breakdown struct {
	Safe    float64 `json:"safe"`
	Caution float64 `json:"caution"`
	Hazard  float64 `json:"hazard"`
}

// Result is a scored route ready for rendering or export.
type Result struct {
	Segments  []Segment         `json:"segments"`
	Distance  float64           `json:"distance"`
	Duration  float64           `json:"duration"`
	Warnings  []string          `json:"warnings"`
	Elevation []ElevationSample `json:"elevation,omitempty"`
	Breakdown Breakdown         `json:"breakdown"`
	Source    Source            `json:"source"`
}

// PlanRequest asks for a route between two points. ClientID scopes request ordering;
// an empty ClientID disables supersession.
type PlanRequest struct {
	ClientID         string
	Start            geo.Point
	End              geo.Point
	IncludeElevation bool
}
