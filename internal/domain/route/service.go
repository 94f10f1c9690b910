package route

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/hazard"
	apperrors "github.com/yanqian/accessroute/pkg/errors"
	"github.com/yanqian/accessroute/pkg/metrics"
)

// Provider fetches a walking path from an external routing engine.
type Provider interface {
	Route(ctx context.Context, start, end geo.Point) (Path, error)
}

// HazardSource yields the hazards active at a given instant.
type HazardSource interface {
	ActiveHazards(ctx context.Context, now time.Time) []hazard.Point
}

// Config tunes route planning.
type Config struct {
	ProximityMeters float64
	Elevation       ElevationConfig
}

// Service plans and scores accessible routes.
type Service interface {
	Plan(ctx context.Context, req PlanRequest) (Result, error)
}

type service struct {
	cfg      Config
	provider Provider
	hazards  HazardSource
	seq      *Sequencer
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the route planner. provider may be nil, in which case every route is synthesized.
func NewService(cfg Config, provider Provider, hazards HazardSource, m *metrics.Metrics, logger *slog.Logger) Service {
	if cfg.ProximityMeters <= 0 {
		cfg.ProximityMeters = DefaultProximityMeters
	}
	return &service{
		cfg:      cfg,
		provider: provider,
		hazards:  hazards,
		seq:      NewSequencer(),
		metrics:  m,
		logger:   logger.With("component", "route.service"),
		now:      time.Now,
	}
}

func (s *service) Plan(ctx context.Context, req PlanRequest) (Result, error) {
	if !req.Start.Valid() || !req.End.Valid() {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "start and end must have latitude within [-90,90] and longitude within [-180,180]", nil)
	}
	started := s.now()

	var generation uint64
	if req.ClientID != "" {
		var release func()
		ctx, generation, release = s.seq.Begin(ctx, req.ClientID)
		defer release()
	}

	var (
		path    Path
		source  Source
		hazards []hazard.Point
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		path, source, err = s.fetchPath(gctx, req.Start, req.End)
		return err
	})
	g.Go(func() error {
		if s.hazards != nil {
			hazards = s.hazards.ActiveHazards(gctx, s.now())
		}
		return nil
	})
	err := g.Wait()

	if req.ClientID != "" && !s.seq.IsLatest(req.ClientID, generation) {
		s.logger.Debug("route request superseded", "client", req.ClientID, "generation", generation)
		return Result{}, apperrors.Wrap(apperrors.CodeSuperseded, "a newer route request replaced this one", nil)
	}
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeCanceled, "route request ended before planning finished", err)
	}

	nearby := NearbyHazards(path.Coordinates, hazards, s.cfg.ProximityMeters)
	result := Score(path, nearby, s.cfg.ProximityMeters)
	result.Source = source
	if source == SourceFallback {
		result.Warnings = append(result.Warnings, fallbackAdvisory)
	}
	if req.IncludeElevation {
		result.Elevation = s.cfg.Elevation.Profile(path.Coordinates)
	}

	counts := countTags(result.Segments)
	s.metrics.SegmentsClassified(string(Safe), counts.safe)
	s.metrics.SegmentsClassified(string(Caution), counts.caution)
	s.metrics.SegmentsClassified(string(Hazard), counts.hazard)
	s.metrics.RouteServed(string(source), s.now().Sub(started).Seconds())
	s.logger.Info("route planned",
		"source", source,
		"segments", len(result.Segments),
		"hazards_considered", len(nearby),
		"distance_m", result.Distance,
	)
	return result, nil
}

// fetchPath asks the provider for a path and falls back to a synthesized one on any failure.
// It only errors when ctx itself is done.
func (s *service) fetchPath(ctx context.Context, start, end geo.Point) (Path, Source, error) {
	if s.provider == nil {
		return FallbackPath(start, end), SourceFallback, nil
	}
	path, err := s.provider.Route(ctx, start, end)
	if err == nil && len(path.Coordinates) >= 2 {
		return path, SourceProvider, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Path{}, "", ctxErr
	}
	if err == nil {
		err = errors.New("route has fewer than two coordinates")
	}
	s.metrics.UpstreamFailure("routing")
	s.logger.Warn("routing provider failed, using fallback path", "error", err)
	return FallbackPath(start, end), SourceFallback, nil
}
