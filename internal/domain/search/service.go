package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/accessroute/internal/domain/geo"
	apperrors "github.com/yanqian/accessroute/pkg/errors"
	"github.com/yanqian/accessroute/pkg/metrics"
	"github.com/yanqian/accessroute/pkg/ratelimit"
)

// Place is a geocoding match.
type Place struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"displayName"`
	Type        string  `json:"type,omitempty"`
}

// Geocoder resolves free text and coordinates against an external provider.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]Place, error)
	Reverse(ctx context.Context, point geo.Point) (Place, error)
}

// Cache stores reverse lookups.
type Cache interface {
	Get(ctx context.Context, key string) (Place, bool, error)
	Set(ctx context.Context, key string, place Place, ttl time.Duration) error
}

// Config tunes search behaviour.
type Config struct {
	Debounce        time.Duration
	ReverseInterval time.Duration
	CacheTTL        time.Duration
	MaxQueryLen     int
}

// Service looks up places for the map UI. Provider failures degrade to empty results.
type Service interface {
	Search(ctx context.Context, clientID, query string) ([]Place, error)
	Reverse(ctx context.Context, point geo.Point) (Place, error)
}

type service struct {
	cfg       Config
	geocoder  Geocoder
	cache     Cache
	debouncer *Debouncer
	limiter   *ratelimit.KeyedLimiter
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewService wires the search domain. The limiter is owned by the returned service.
func NewService(cfg Config, geocoder Geocoder, cache Cache, limiter *ratelimit.KeyedLimiter, m *metrics.Metrics, logger *slog.Logger) Service {
	if cfg.MaxQueryLen <= 0 {
		cfg.MaxQueryLen = 200
	}
	if limiter == nil {
		interval := cfg.ReverseInterval
		if interval <= 0 {
			interval = time.Second
		}
		limiter = ratelimit.New(ratelimit.Every(interval), 1, 10*time.Minute, nil)
	}
	return &service{
		cfg:       cfg,
		geocoder:  geocoder,
		cache:     cache,
		debouncer: NewDebouncer(cfg.Debounce),
		limiter:   limiter,
		metrics:   m,
		logger:    logger.With("component", "search.service"),
	}
}

func (s *service) Search(ctx context.Context, clientID, query string) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Place{}, nil
	}
	if len([]rune(query)) > s.cfg.MaxQueryLen {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "query is too long", nil)
	}
	if clientID != "" {
		latest, err := s.debouncer.Wait(ctx, clientID)
		if err != nil || !latest {
			return []Place{}, nil
		}
	}
	places, err := s.geocoder.Search(ctx, query)
	if err != nil {
		s.metrics.UpstreamFailure("geocoding")
		s.logger.Warn("place search failed, returning no results", "query", query, "error", err)
		return []Place{}, nil
	}
	if places == nil {
		places = []Place{}
	}
	return places, nil
}

func (s *service) Reverse(ctx context.Context, point geo.Point) (Place, error) {
	if !point.Valid() {
		return Place{}, apperrors.Wrap(apperrors.CodeInvalidInput, "latitude must be within [-90,90] and longitude within [-180,180]", nil)
	}
	key := reverseKey(point)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("reverse cache read failed", "key", key, "error", err)
		} else if ok {
			return cached, nil
		}
	}
	if !s.limiter.Allow(key) {
		s.metrics.RateLimited("reverse_geocode")
		s.logger.Debug("reverse lookup rate limited", "key", key)
		return Place{}, nil
	}
	place, err := s.geocoder.Reverse(ctx, point)
	if err != nil {
		s.metrics.UpstreamFailure("geocoding")
		s.logger.Warn("reverse lookup failed", "key", key, "error", err)
		return Place{}, nil
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, place, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("reverse cache write failed", "key", key, "error", err)
		}
	}
	return place, nil
}

// reverseKey rounds to ~11 m so nearby lookups share a cache entry and a rate bucket.
func reverseKey(p geo.Point) string {
	return fmt.Sprintf("%.4f,%.4f", p.Lat, p.Lng)
}
