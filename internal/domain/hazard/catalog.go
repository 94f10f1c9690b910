package hazard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yanqian/accessroute/internal/domain/report"
)

// ReportSource yields the reports still in effect at a given instant.
type ReportSource interface {
	Active(ctx context.Context, now time.Time) ([]report.IssueReport, error)
}

// Catalog merges the static seed with active user reports.
type Catalog struct {
	mu      sync.RWMutex
	static  []Point
	reports ReportSource
	logger  *slog.Logger
}

// NewCatalog builds a catalog. reports may be nil.
func NewCatalog(static []Point, reports ReportSource, logger *slog.Logger) *Catalog {
	seed := make([]Point, len(static))
	copy(seed, static)
	return &Catalog{
		static:  seed,
		reports: reports,
		logger:  logger.With("component", "hazard.catalog"),
	}
}

// Extend appends points to the static set, typically once at startup.
func (c *Catalog) Extend(points []Point) {
	if len(points) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.static = append(c.static, points...)
}

// Static returns a copy of the static set.
func (c *Catalog) Static() []Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Point, len(c.static))
	copy(out, c.static)
	return out
}

// ActiveHazards returns static points followed by every report active at now.
// Report lookup failures are logged and the static set is returned alone.
func (c *Catalog) ActiveHazards(ctx context.Context, now time.Time) []Point {
	out := c.Static()
	if c.reports == nil {
		return out
	}
	reports, err := c.reports.Active(ctx, now)
	if err != nil {
		c.logger.Warn("active reports unavailable, using static hazards only", "error", err)
		return out
	}
	for _, r := range reports {
		if !r.ActiveAt(now) {
			continue
		}
		out = append(out, FromReport(r))
	}
	return out
}

// FromReport converts a user report into a hazard-severity point.
func FromReport(r report.IssueReport) Point {
	description := r.Description
	if description == "" {
		description = "Reported " + string(r.Type)
	}
	return Point{
		Point:       r.Location,
		Severity:    SeverityHazard,
		Category:    string(r.Type),
		Description: description,
		Source:      SourceReport,
	}
}
