package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/hazard"
	"github.com/yanqian/accessroute/internal/domain/route"
	"github.com/yanqian/accessroute/internal/infra/config"
	"github.com/yanqian/accessroute/internal/infra/routing/osrm"
	"github.com/yanqian/accessroute/pkg/logger"
)

type planOptions struct {
	from      string
	to        string
	gpxPath   string
	name      string
	seedFile  string
	elevation bool
	offline   bool
	asJSON    bool
}

func newPlanCmd() *cobra.Command {
	opts := &planOptions{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan and score a route between two coordinates",
		Example: `  accessroute plan --from 27.6196,85.5385 --to 27.6230,85.5410
  accessroute plan --from 27.6196,85.5385 --to 27.6230,85.5410 --elevation --gpx campus.gpx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.from, "from", "", "start coordinate as lat,lng")
	cmd.Flags().StringVar(&opts.to, "to", "", "destination coordinate as lat,lng")
	cmd.Flags().StringVar(&opts.gpxPath, "gpx", "", "write the route as GPX to this file")
	cmd.Flags().StringVar(&opts.name, "name", "Accessible route", "track name used in the GPX export")
	cmd.Flags().StringVar(&opts.seedFile, "seed", "", "hazard seed file (defaults to hazards.seedFile from config)")
	cmd.Flags().BoolVar(&opts.elevation, "elevation", false, "include the elevation profile")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "skip the routing service and synthesize the path")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the full result as JSON")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runPlan(ctx context.Context, out io.Writer, opts *planOptions) error {
	start, err := parseLatLng(opts.from)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	end, err := parseLatLng(opts.to)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New()

	seedPath := cfg.Hazards.SeedFile
	if opts.seedFile != "" {
		seedPath = opts.seedFile
	}
	static, err := loadSeed(seedPath, log)
	if err != nil {
		return err
	}

	var provider route.Provider
	if !opts.offline && cfg.Routing.BaseURL != "" {
		provider = osrm.NewClient(cfg.Routing.BaseURL, cfg.Routing.Profile, cfg.Routing.Timeout)
	}
	svc := route.NewService(route.Config{
		ProximityMeters: cfg.Hazards.ProximityMeters,
		Elevation: route.ElevationConfig{
			Base:      cfg.Elevation.Base,
			Amplitude: cfg.Elevation.Amplitude,
			Frequency: cfg.Elevation.Frequency,
		},
	}, provider, hazard.NewCatalog(static, nil, log), nil, log)

	result, err := svc.Plan(ctx, route.PlanRequest{Start: start, End: end, IncludeElevation: opts.elevation})
	if err != nil {
		return err
	}

	if opts.gpxPath != "" {
		payload, err := route.EncodeGPX(result, opts.name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.gpxPath, payload, 0o644); err != nil {
			return fmt.Errorf("write gpx: %w", err)
		}
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printSummary(out, result)
	if opts.gpxPath != "" {
		fmt.Fprintf(out, "GPX written to %s\n", opts.gpxPath)
	}
	return nil
}

func loadSeed(path string, log *slog.Logger) ([]hazard.Point, error) {
	if path == "" {
		return nil, nil
	}
	points, err := hazard.LoadSeedFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("hazard seed file not found, planning without static hazards", "path", path)
		return nil, nil
	}
	return points, err
}

func printSummary(out io.Writer, result route.Result) {
	fmt.Fprintf(out, "Distance: %.0f m\n", result.Distance)
	fmt.Fprintf(out, "Estimated time: %.0f s (%.1f min)\n", result.Duration, result.Duration/60)
	fmt.Fprintf(out, "Segments: %d (safe %.0f%%, caution %.0f%%, hazard %.0f%%)\n",
		len(result.Segments), result.Breakdown.Safe, result.Breakdown.Caution, result.Breakdown.Hazard)
	for i, seg := range result.Segments {
		line := fmt.Sprintf("  %2d. %-7s %s", i+1, seg.Accessibility, seg.Surface)
		if seg.Description != "" {
			line += " - " + seg.Description
		}
		fmt.Fprintln(out, line)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "! %s\n", w)
	}
}

// parseLatLng accepts "lat,lng" in decimal degrees.
func parseLatLng(raw string) (geo.Point, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return geo.Point{}, fmt.Errorf("expected lat,lng but got %q", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("longitude: %w", err)
	}
	p := geo.Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return geo.Point{}, fmt.Errorf("coordinate %s out of range", p)
	}
	return p, nil
}
