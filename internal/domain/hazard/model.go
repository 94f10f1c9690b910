package hazard

import (
	"fmt"
	"strings"

	"github.com/yanqian/accessroute/internal/domain/geo"
)

// Severity grades a hazard point. Info points mark positive accessibility facts.
type Severity string

const (
	SeverityHazard  Severity = "hazard"
	SeverityCaution Severity = "caution"
	SeverityInfo    Severity = "info"
)

// Severities lists every severity from most to least severe.
var Severities = []Severity{SeverityHazard, SeverityCaution, SeverityInfo}

// Rank orders severities; lower is more severe. Unknown severities sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityHazard:
		return 0
	case SeverityCaution:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s.Rank() < 3
}

// ParseSeverity normalizes a textual severity.
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown severity %q", raw)
	}
	return s, nil
}

// Source records where a hazard point came from.
type Source string

const (
	SourceStatic Source = "static"
	SourceReport Source = "report"
	SourceOSM    Source = "osm"
)

// Point is a located accessibility fact.
type Point struct {
	geo.Point
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Source      Source   `json:"source"`
}
