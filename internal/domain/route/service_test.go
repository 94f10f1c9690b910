package route

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/hazard"
	apperrors "github.com/yanqian/accessroute/pkg/errors"
)

var (
	campusStart = geo.Point{Lat: 27.6196, Lng: 85.5385}
	campusEnd   = geo.Point{Lat: 27.6200, Lng: 85.5395}
)

func TestPlanUsesProviderPath(t *testing.T) {
	path := straightPath(20)
	provider := &stubProvider{path: Path{Coordinates: path, Distance: 812}}
	hazards := &stubHazards{points: []hazard.Point{{Point: path[10], Severity: hazard.SeverityCaution}}}
	svc := newTestService(provider, hazards)

	result, err := svc.Plan(context.Background(), PlanRequest{Start: path[0], End: path[19], IncludeElevation: true})
	require.NoError(t, err)
	require.Equal(t, SourceProvider, result.Source)
	require.Equal(t, 812.0, result.Distance)
	require.Len(t, result.Segments, 4)
	require.Equal(t, path, JoinSegments(result.Segments))
	require.Len(t, result.Elevation, len(path))
	require.Equal(t, []string{
		"2 caution area(s) — proceed with care",
		"Verify accessibility features on ground",
	}, result.Warnings)
	require.Equal(t, 1, hazards.calls)
}

func TestPlanFallsBackWhenProviderFails(t *testing.T) {
	svc := newTestService(&stubProvider{err: errors.New("503 from upstream")}, &stubHazards{})

	result, err := svc.Plan(context.Background(), PlanRequest{Start: campusStart, End: campusEnd})
	require.NoError(t, err)
	require.Equal(t, SourceFallback, result.Source)
	require.Equal(t, geo.Distance(campusStart, campusEnd)*1.25, result.Distance)

	coords := JoinSegments(result.Segments)
	require.Len(t, coords, 26)
	require.Equal(t, campusStart, coords[0])
	require.Equal(t, campusEnd, coords[25])
	require.Equal(t, fallbackAdvisory, result.Warnings[len(result.Warnings)-1])
	require.Nil(t, result.Elevation)
}

func TestPlanFallsBackOnDegeneratePath(t *testing.T) {
	svc := newTestService(&stubProvider{path: Path{Coordinates: []geo.Point{campusStart}}}, nil)

	result, err := svc.Plan(context.Background(), PlanRequest{Start: campusStart, End: campusEnd})
	require.NoError(t, err)
	require.Equal(t, SourceFallback, result.Source)
}

func TestPlanWithoutProviderSynthesizes(t *testing.T) {
	svc := newTestService(nil, nil)

	result, err := svc.Plan(context.Background(), PlanRequest{Start: campusStart, End: campusEnd})
	require.NoError(t, err)
	require.Equal(t, SourceFallback, result.Source)
}

func TestPlanRejectsInvalidCoordinates(t *testing.T) {
	svc := newTestService(&stubProvider{}, nil)

	_, err := svc.Plan(context.Background(), PlanRequest{Start: geo.Point{Lat: 95, Lng: 0}, End: campusEnd})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestPlanReportHazardMarksSegment(t *testing.T) {
	hazards := &stubHazards{points: []hazard.Point{{Point: campusStart, Severity: hazard.SeverityHazard, Source: hazard.SourceReport}}}
	svc := newTestService(nil, hazards)

	result, err := svc.Plan(context.Background(), PlanRequest{Start: campusStart, End: campusEnd})
	require.NoError(t, err)
	require.Equal(t, Hazard, result.Segments[0].Accessibility)
	require.True(t, strings.HasSuffix(result.Warnings[0], "accessibility barrier(s) on this route"))
	require.Equal(t, Safe, result.Segments[len(result.Segments)-1].Accessibility)
}

func TestPlanSupersededByNewerRequest(t *testing.T) {
	slowStart := geo.Point{Lat: 1, Lng: 1}
	provider := &stubProvider{
		path:    Path{Coordinates: straightPath(10)},
		blockOn: slowStart,
		started: make(chan struct{}),
	}
	svc := newTestService(provider, nil)

	type outcome struct {
		result Result
		err    error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := svc.Plan(context.Background(), PlanRequest{ClientID: "map-1", Start: slowStart, End: campusEnd})
		first <- outcome{res, err}
	}()

	select {
	case <-provider.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never reached the provider")
	}

	second, err := svc.Plan(context.Background(), PlanRequest{ClientID: "map-1", Start: campusStart, End: campusEnd})
	require.NoError(t, err)
	require.Equal(t, SourceProvider, second.Source)

	select {
	case out := <-first:
		require.True(t, apperrors.IsCode(out.err, apperrors.CodeSuperseded), "got %v", out.err)
	case <-time.After(2 * time.Second):
		t.Fatal("first request was not cancelled")
	}
	require.Zero(t, svc.(*service).seq.InFlight())
}

func TestPlanDifferentClientsDoNotInterfere(t *testing.T) {
	svc := newTestService(&stubProvider{path: Path{Coordinates: straightPath(10)}}, nil)

	for _, client := range []string{"a", "b", "a"} {
		_, err := svc.Plan(context.Background(), PlanRequest{ClientID: client, Start: campusStart, End: campusEnd})
		require.NoError(t, err)
	}
}

func TestPlanReportsCallerDeadline(t *testing.T) {
	slowStart := geo.Point{Lat: 1, Lng: 1}
	provider := &stubProvider{blockOn: slowStart, started: make(chan struct{})}
	svc := newTestService(provider, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.Plan(ctx, PlanRequest{ClientID: "map-1", Start: slowStart, End: campusEnd})
	require.True(t, apperrors.IsCode(err, apperrors.CodeCanceled), "got %v", err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Zero(t, svc.(*service).seq.InFlight())
}

func TestSequencerGenerations(t *testing.T) {
	seq := NewSequencer()
	ctx1, gen1, release1 := seq.Begin(context.Background(), "k")
	_, gen2, release2 := seq.Begin(context.Background(), "k")

	require.Greater(t, gen2, gen1)
	require.ErrorIs(t, ctx1.Err(), context.Canceled)
	require.False(t, seq.IsLatest("k", gen1))
	require.True(t, seq.IsLatest("k", gen2))

	release1()
	require.True(t, seq.IsLatest("k", gen2))
	release2()
	require.False(t, seq.IsLatest("k", gen2))
	require.Zero(t, seq.InFlight())
}

func newTestService(provider Provider, hazards HazardSource) Service {
	return NewService(Config{
		Elevation: ElevationConfig{Base: 1400, Amplitude: 15, Frequency: 0.3},
	}, provider, hazards, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type stubProvider struct {
	path    Path
	err     error
	blockOn geo.Point
	started chan struct{}
	calls   atomic.Int32
}

func (s *stubProvider) Route(ctx context.Context, start, _ geo.Point) (Path, error) {
	s.calls.Add(1)
	if s.started != nil && start == s.blockOn {
		close(s.started)
		<-ctx.Done()
		return Path{}, ctx.Err()
	}
	if s.err != nil {
		return Path{}, s.err
	}
	return s.path, nil
}

type stubHazards struct {
	points []hazard.Point
	calls  int
}

func (s *stubHazards) ActiveHazards(context.Context, time.Time) []hazard.Point {
	s.calls++
	return s.points
}
