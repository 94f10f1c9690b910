package hazard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/report"
)

func TestCatalogActiveHazardsMergesReports(t *testing.T) {
	t0 := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	expires := t0.Add(48 * time.Hour)
	src := &stubReports{reports: []report.IssueReport{
		{ID: uuid.New(), Location: geo.Point{Lat: 1, Lng: 1}, Type: report.IssuePothole, CreatedAt: t0, ExpiresAt: &expires},
		{ID: uuid.New(), Location: geo.Point{Lat: 2, Lng: 2}, Type: report.IssueWetFloor, Description: "slippery", CreatedAt: t0},
	}}
	static := []Point{{Point: geo.Point{Lat: 0, Lng: 0}, Severity: SeverityInfo, Category: "ramp", Source: SourceStatic}}
	catalog := NewCatalog(static, src, discardLogger())

	active := catalog.ActiveHazards(context.Background(), t0.Add(47*time.Hour))
	require.Len(t, active, 3)
	require.Equal(t, SourceStatic, active[0].Source)
	require.Equal(t, SeverityHazard, active[1].Severity)
	require.Equal(t, "pothole", active[1].Category)
	require.Equal(t, "Reported pothole", active[1].Description)
	require.Equal(t, "slippery", active[2].Description)

	active = catalog.ActiveHazards(context.Background(), t0.Add(49*time.Hour))
	require.Len(t, active, 2)
	require.Equal(t, "wet_floor", active[1].Category)
}

func TestCatalogKeepsDuplicateCoordinates(t *testing.T) {
	p := Point{Point: geo.Point{Lat: 5, Lng: 5}, Severity: SeverityHazard}
	catalog := NewCatalog([]Point{p, p}, nil, discardLogger())
	require.Len(t, catalog.ActiveHazards(context.Background(), time.Now()), 2)
}

func TestCatalogReportFailureFallsBackToStatic(t *testing.T) {
	static := []Point{{Point: geo.Point{Lat: 0, Lng: 0}, Severity: SeverityCaution}}
	catalog := NewCatalog(static, &stubReports{err: errors.New("db down")}, discardLogger())

	active := catalog.ActiveHazards(context.Background(), time.Now())
	require.Equal(t, static, active)
}

func TestCatalogExtend(t *testing.T) {
	catalog := NewCatalog(nil, nil, discardLogger())
	catalog.Extend([]Point{{Severity: SeverityInfo, Source: SourceOSM}})
	require.Len(t, catalog.Static(), 1)
}

func TestClassifyTags(t *testing.T) {
	cases := []struct {
		tags     osm.Tags
		severity Severity
		desc     string
		ok       bool
	}{
		{osm.Tags{{Key: "highway", Value: "steps"}}, SeverityHazard, "Stairs", true},
		{osm.Tags{{Key: "surface", Value: "gravel"}}, SeverityHazard, "Unpaved surface", true},
		{osm.Tags{{Key: "smoothness", Value: "very_bad"}}, SeverityHazard, "Rough surface", true},
		{osm.Tags{{Key: "highway", Value: "living_street"}}, SeverityCaution, "Shared street", true},
		{osm.Tags{{Key: "kerb", Value: "lowered"}}, SeverityInfo, "Lowered kerb", true},
		{osm.Tags{{Key: "highway", Value: "service"}, {Key: "surface", Value: "dirt"}}, SeverityHazard, "Unpaved surface", true},
		{osm.Tags{{Key: "highway", Value: "residential"}}, "", "", false},
		{osm.Tags{{Key: "amenity", Value: "bench"}}, "", "", false},
	}
	for _, tc := range cases {
		got, ok := ClassifyTags(tc.tags)
		require.Equal(t, tc.ok, ok, tc.tags)
		require.Equal(t, tc.severity, got.Severity, tc.tags)
		require.Equal(t, tc.desc, got.Description, tc.tags)
	}
}

func TestDecodeSeed(t *testing.T) {
	doc := `
hazards:
  - lat: 27.6198
    lng: 85.5390
    severity: Hazard
    category: stairs
    description: Library steps
  - lat: 27.6190
    lng: 85.5380
    severity: info
    category: ramp
    description: Ramp to main hall
`
	points, err := DecodeSeed(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, SeverityHazard, points[0].Severity)
	require.Equal(t, SourceStatic, points[1].Source)
	require.Equal(t, 85.5380, points[1].Lng)

	_, err = DecodeSeed(strings.NewReader("hazards:\n  - {lat: 1, lng: 1, severity: lava}\n"))
	require.Error(t, err)

	_, err = DecodeSeed(strings.NewReader("hazards:\n  - {lat: 100, lng: 1, severity: info}\n"))
	require.Error(t, err)

	points, err = DecodeSeed(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, points)
}

func TestEncodeSeedIsReadable(t *testing.T) {
	imported := []Point{
		{Point: geo.Point{Lat: 27.61953, Lng: 85.53871}, Severity: SeverityHazard, Category: "Stairs", Description: "Stairs (Library)", Source: SourceOSM},
		{Point: geo.Point{Lat: 27.6201, Lng: 85.5402}, Severity: SeverityInfo, Category: "Lowered kerb", Source: SourceOSM},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeSeed(&buf, imported))
	require.Contains(t, buf.String(), "hazards:")

	points, err := DecodeSeed(&buf)
	require.NoError(t, err)
	require.Len(t, points, 2)
	for i := range points {
		require.Equal(t, imported[i].Point, points[i].Point)
		require.Equal(t, imported[i].Severity, points[i].Severity)
		require.Equal(t, imported[i].Category, points[i].Category)
		require.Equal(t, SourceStatic, points[i].Source)
	}
}

func TestSeverityRank(t *testing.T) {
	require.Less(t, SeverityHazard.Rank(), SeverityCaution.Rank())
	require.Less(t, SeverityCaution.Rank(), SeverityInfo.Rank())
	require.False(t, Severity("extreme").Valid())
}

type stubReports struct {
	reports []report.IssueReport
	err     error
}

func (s *stubReports) Active(_ context.Context, now time.Time) ([]report.IssueReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]report.IssueReport, 0, len(s.reports))
	for _, r := range s.reports {
		if r.ActiveAt(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
