package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/hazard"
	"github.com/yanqian/accessroute/internal/infra/overpass"
)

func newHazardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hazards",
		Short: "Inspect and build hazard seed files",
	}
	cmd.AddCommand(newHazardsImportCmd(), newHazardsCheckCmd())
	return cmd
}

func newHazardsImportCmd() *cobra.Command {
	var (
		bbox     string
		endpoint string
		output   string
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:     "import",
		Short:   "Import accessibility features from OpenStreetMap into a seed file",
		Example: `  accessroute hazards import --bbox 27.615,85.533,27.625,85.545 --out configs/hazards.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bounds, err := parseBBox(bbox)
			if err != nil {
				return fmt.Errorf("--bbox: %w", err)
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), overpass.NewClient(endpoint, timeout), bounds, output)
		},
	}
	cmd.Flags().StringVar(&bbox, "bbox", "", "south,west,north,east in decimal degrees")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Overpass interpreter URL (defaults to the public instance)")
	cmd.Flags().StringVarP(&output, "out", "o", "", "write the seed file here instead of stdout")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "query timeout")
	_ = cmd.MarkFlagRequired("bbox")
	return cmd
}

type hazardFetcher interface {
	Fetch(ctx context.Context, bounds geo.Bounds) ([]hazard.Point, error)
}

func runImport(ctx context.Context, out io.Writer, fetcher hazardFetcher, bounds geo.Bounds, output string) error {
	points, err := fetcher.Fetch(ctx, bounds)
	if err != nil {
		return err
	}
	if output == "" {
		return hazard.EncodeSeed(out, points)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create seed file: %w", err)
	}
	if err := hazard.EncodeSeed(f, points); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %d hazards to %s\n", len(points), output)
	return nil
}

func newHazardsCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [seed file]",
		Short: "Validate a hazard seed file and print a severity summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := hazard.LoadSeedFile(args[0])
			if err != nil {
				return err
			}
			counts := map[hazard.Severity]int{}
			for _, p := range points {
				counts[p.Severity]++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d hazards:", len(points))
			for _, sev := range hazard.Severities {
				fmt.Fprintf(cmd.OutOrStdout(), " %s=%d", sev, counts[sev])
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func parseBBox(raw string) (geo.Bounds, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return geo.Bounds{}, fmt.Errorf("expected south,west,north,east but got %q", raw)
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geo.Bounds{}, err
		}
		v[i] = f
	}
	if v[0] > v[2] {
		return geo.Bounds{}, fmt.Errorf("south %.6f is north of north %.6f", v[0], v[2])
	}
	return geo.NewBounds(v[0], v[1], v[2], v[3]), nil
}
