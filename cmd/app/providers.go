package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/hazard"
	"github.com/yanqian/accessroute/internal/domain/report"
	"github.com/yanqian/accessroute/internal/domain/route"
	"github.com/yanqian/accessroute/internal/domain/search"
	"github.com/yanqian/accessroute/internal/infra/config"
	"github.com/yanqian/accessroute/internal/infra/geocache"
	"github.com/yanqian/accessroute/internal/infra/geocode/nominatim"
	"github.com/yanqian/accessroute/internal/infra/overpass"
	"github.com/yanqian/accessroute/internal/infra/photostore"
	"github.com/yanqian/accessroute/internal/infra/reportrepo"
	"github.com/yanqian/accessroute/internal/infra/routing/osrm"
	"github.com/yanqian/accessroute/pkg/ratelimit"
)

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideReportConfig(cfg *config.Config) report.Config {
	return report.Config{
		TTL:               cfg.Reports.TTL,
		MaxDescriptionLen: cfg.Reports.MaxDescriptionLen,
	}
}

// provideReportRepository prefers Postgres, then SQLite, then memory. A backend that
// fails to come up is logged and the next one is tried.
func provideReportRepository(cfg *config.Config, logger *slog.Logger) (report.Repository, func(), error) {
	noop := func() {}
	if dsn := strings.TrimSpace(cfg.Reports.Postgres.DSN); dsn != "" {
		repo, cleanup, err := openPostgresReports(cfg.Reports.Postgres, logger)
		if err == nil {
			logger.Info("report postgres repository enabled")
			return repo, cleanup, nil
		}
		logger.Error("postgres unavailable, trying next report store", "error", err)
	}
	if path := strings.TrimSpace(cfg.Reports.SQLitePath); path != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		repo, err := reportrepo.OpenSQLite(ctx, path)
		if err == nil {
			logger.Info("report sqlite repository enabled", "path", path)
			return repo, func() { _ = repo.Close() }, nil
		}
		logger.Error("sqlite unavailable, using memory repository", "path", path, "error", err)
	}
	logger.Info("report store not configured, using memory repository")
	return reportrepo.NewMemoryRepository(), noop, nil
}

func openPostgresReports(cfg config.PostgresConfig, logger *slog.Logger) (report.Repository, func(), error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := reportrepo.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return reportrepo.NewPostgresRepository(pool), func() {
		logger.Info("closing postgres pool")
		pool.Close()
	}, nil
}

func provideDeletePolicy(cfg *config.Config) (report.DeletePolicy, error) {
	if cfg.Reports.DeletePolicy == config.DeletePolicyOwner {
		return report.NewTokenPolicy(cfg.Reports.CapabilitySecret, nil)
	}
	return report.OpenPolicy{}, nil
}

// providePhotoSigner returns nil when no bucket is configured, which disables uploads.
func providePhotoSigner(cfg *config.Config, logger *slog.Logger) report.PhotoSigner {
	if strings.TrimSpace(cfg.Photos.Bucket) == "" {
		logger.Info("photo bucket not set, photo uploads disabled")
		return nil
	}
	signer, err := photostore.NewR2Presigner(photostore.Config{
		Endpoint:      cfg.Photos.Endpoint,
		AccessKey:     cfg.Photos.AccessKey,
		SecretKey:     cfg.Photos.SecretKey,
		Bucket:        cfg.Photos.Bucket,
		Region:        cfg.Photos.Region,
		PublicBaseURL: cfg.Photos.PublicBaseURL,
		PresignTTL:    cfg.Photos.PresignTTL,
	}, logger)
	if err != nil {
		logger.Error("photo storage misconfigured, photo uploads disabled", "error", err)
		return nil
	}
	return signer
}

// provideHazardCatalog loads the static seed and, when enabled, extends it with
// OpenStreetMap features. Overpass failures leave the seed in place.
func provideHazardCatalog(cfg *config.Config, reports report.Service, logger *slog.Logger) (*hazard.Catalog, error) {
	var static []hazard.Point
	if path := strings.TrimSpace(cfg.Hazards.SeedFile); path != "" {
		points, err := hazard.LoadSeedFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn("hazard seed file not found, starting without static hazards", "path", path)
		case err != nil:
			return nil, err
		default:
			static = points
			logger.Info("hazard seed loaded", "path", path, "count", len(points))
		}
	}
	catalog := hazard.NewCatalog(static, reports, logger)

	if cfg.Overpass.Enabled {
		bbox := cfg.Overpass.BBox
		client := overpass.NewClient(cfg.Overpass.BaseURL, cfg.Overpass.Timeout)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Overpass.Timeout+5*time.Second)
		defer cancel()
		points, err := client.Fetch(ctx, geo.NewBounds(bbox[0], bbox[1], bbox[2], bbox[3]))
		if err != nil {
			logger.Warn("overpass import failed, continuing with seed hazards", "error", err)
		} else {
			catalog.Extend(points)
			logger.Info("overpass hazards imported", "count", len(points))
		}
	}
	return catalog, nil
}

func provideRouteConfig(cfg *config.Config) route.Config {
	return route.Config{
		ProximityMeters: cfg.Hazards.ProximityMeters,
		Elevation: route.ElevationConfig{
			Base:      cfg.Elevation.Base,
			Amplitude: cfg.Elevation.Amplitude,
			Frequency: cfg.Elevation.Frequency,
		},
	}
}

// provideRoutingProvider returns nil when no routing service is configured; every
// route is then synthesized.
func provideRoutingProvider(cfg *config.Config, logger *slog.Logger) route.Provider {
	if strings.TrimSpace(cfg.Routing.BaseURL) == "" {
		logger.Warn("routing base url not set, all routes will be approximate")
		return nil
	}
	return osrm.NewClient(cfg.Routing.BaseURL, cfg.Routing.Profile, cfg.Routing.Timeout)
}

func provideSearchConfig(cfg *config.Config) search.Config {
	return search.Config{
		Debounce:        cfg.Geocoding.Debounce,
		ReverseInterval: cfg.Geocoding.ReverseInterval,
		CacheTTL:        cfg.Geocoding.CacheTTL,
	}
}

func provideGeocoder(cfg *config.Config) search.Geocoder {
	return nominatim.NewClient(cfg.Geocoding.BaseURL, nominatim.Options{
		UserAgent:    cfg.Geocoding.UserAgent,
		CountryCodes: cfg.Geocoding.CountryCodes,
		ViewBox:      cfg.Geocoding.ViewBox,
		Timeout:      cfg.Geocoding.Timeout,
	})
}

func provideGeocodeCache(cfg *config.Config, logger *slog.Logger) search.Cache {
	if cfg.Cache.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg.Cache.Valkey.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return geocache.NewMemoryCache(nil)
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return geocache.NewMemoryCache(nil)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("reverse geocode valkey cache enabled", "addr", cfg.Cache.Valkey.Addr)
			return geocache.NewValkeyCache(client, "")
		}
	}
	return geocache.NewMemoryCache(nil)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideReverseLimiter(cfg *config.Config) *ratelimit.KeyedLimiter {
	interval := cfg.Geocoding.ReverseInterval
	if interval <= 0 {
		interval = time.Second
	}
	return ratelimit.New(ratelimit.Every(interval), 1, 10*time.Minute, nil)
}
