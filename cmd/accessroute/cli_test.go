package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/hazard"
)

func TestParseLatLng(t *testing.T) {
	p, err := parseLatLng(" 27.6196, 85.5385 ")
	require.NoError(t, err)
	require.Equal(t, geo.Point{Lat: 27.6196, Lng: 85.5385}, p)

	for _, raw := range []string{"", "27.6", "a,b", "91,10", "10,181", "1,2,3"} {
		_, err := parseLatLng(raw)
		require.Error(t, err, raw)
	}
}

func TestParseBBox(t *testing.T) {
	b, err := parseBBox("27.615,85.533,27.625,85.545")
	require.NoError(t, err)
	require.InDelta(t, 27.615, b.South(), 1e-9)
	require.InDelta(t, 85.545, b.East(), 1e-9)

	_, err = parseBBox("27.625,85.533,27.615,85.545")
	require.Error(t, err)
	_, err = parseBBox("1,2,3")
	require.Error(t, err)
}

func TestRunPlanOfflineWritesGPX(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "hazards.yaml")
	require.NoError(t, os.WriteFile(seed, []byte("hazards:\n  - {lat: 27.6197, lng: 85.5386, severity: hazard, category: Stairs}\n"), 0o644))
	gpx := filepath.Join(dir, "route.gpx")

	var out bytes.Buffer
	err := runPlan(context.Background(), &out, &planOptions{
		from:      "27.6196,85.5385",
		to:        "27.6230,85.5410",
		gpxPath:   gpx,
		name:      "Campus",
		seedFile:  seed,
		elevation: true,
		offline:   true,
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Approximate route")
	require.Contains(t, out.String(), "hazard")
	require.Contains(t, out.String(), "GPX written to")

	payload, err := os.ReadFile(gpx)
	require.NoError(t, err)
	require.Contains(t, string(payload), "<name>Campus</name>")
	require.Equal(t, 26, strings.Count(string(payload), "<trkpt "))
}

func TestRunImportWritesSeed(t *testing.T) {
	fetcher := stubFetcher{points: []hazard.Point{
		{Point: geo.Point{Lat: 27.62, Lng: 85.54}, Severity: hazard.SeverityHazard, Category: "Stairs", Source: hazard.SourceOSM},
	}}

	var out bytes.Buffer
	require.NoError(t, runImport(context.Background(), &out, fetcher, geo.NewBounds(27.6, 85.5, 27.7, 85.6), ""))

	points, err := hazard.DecodeSeed(&out)
	require.NoError(t, err)
	require.Len(t, points, 1)
	require.Equal(t, "Stairs", points[0].Category)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	out.Reset()
	require.NoError(t, runImport(context.Background(), &out, fetcher, geo.NewBounds(27.6, 85.5, 27.7, 85.6), path))
	require.Contains(t, out.String(), "wrote 1 hazards")

	_, err = os.Stat(path)
	require.NoError(t, err)

	err = runImport(context.Background(), &out, stubFetcher{err: errors.New("overpass busy")}, geo.NewBounds(0, 0, 1, 1), "")
	require.EqualError(t, err, "overpass busy")
}

type stubFetcher struct {
	points []hazard.Point
	err    error
}

func (s stubFetcher) Fetch(context.Context, geo.Bounds) ([]hazard.Point, error) {
	return s.points, s.err
}
