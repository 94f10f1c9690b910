package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Routing   RoutingConfig   `yaml:"routing"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Overpass  OverpassConfig  `yaml:"overpass"`
	Hazards   HazardsConfig   `yaml:"hazards"`
	Reports   ReportsConfig   `yaml:"reports"`
	Cache     CacheConfig     `yaml:"cache"`
	Photos    PhotosConfig    `yaml:"photos"`
	Elevation ElevationConfig `yaml:"elevation"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address         string          `yaml:"address"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
	CORSOrigins     []string        `yaml:"corsOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RoutingConfig points at the OSRM compatible routing provider. An empty baseUrl
// disables the provider and every route is synthesized.
type RoutingConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Profile string        `yaml:"profile"`
	Timeout time.Duration `yaml:"timeout"`
}

// GeocodingConfig controls place search and reverse lookups.
type GeocodingConfig struct {
	BaseURL         string        `yaml:"baseUrl"`
	UserAgent       string        `yaml:"userAgent"`
	CountryCodes    string        `yaml:"countryCodes"`
	ViewBox         string        `yaml:"viewbox"`
	Timeout         time.Duration `yaml:"timeout"`
	Debounce        time.Duration `yaml:"debounce"`
	ReverseInterval time.Duration `yaml:"reverseInterval"`
	CacheTTL        time.Duration `yaml:"cacheTtl"`
}

// OverpassConfig controls hazard ingestion from OpenStreetMap at startup.
type OverpassConfig struct {
	Enabled bool          `yaml:"enabled"`
	BaseURL string        `yaml:"baseUrl"`
	BBox    []float64     `yaml:"bbox"` // south, west, north, east
	Timeout time.Duration `yaml:"timeout"`
}

// HazardsConfig locates the static hazard seed.
type HazardsConfig struct {
	SeedFile        string  `yaml:"seedFile"`
	ProximityMeters float64 `yaml:"proximityMeters"`
}

// ReportsConfig controls the issue report store.
type ReportsConfig struct {
	TTL               time.Duration  `yaml:"ttl"`
	MaxDescriptionLen int            `yaml:"maxDescriptionLen"`
	DeletePolicy      string         `yaml:"deletePolicy"`
	CapabilitySecret  string         `yaml:"capabilitySecret"`
	SQLitePath        string         `yaml:"sqlitePath"`
	Postgres          PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// CacheConfig contains connection information for the reverse geocode cache.
type CacheConfig struct {
	Valkey ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig enables the shared cache.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PhotosConfig locates the bucket for report photos. Uploads are disabled without a bucket.
type PhotosConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	AccessKey     string        `yaml:"accessKey"`
	SecretKey     string        `yaml:"secretKey"`
	Bucket        string        `yaml:"bucket"`
	Region        string        `yaml:"region"`
	PublicBaseURL string        `yaml:"publicBaseUrl"`
	PresignTTL    time.Duration `yaml:"presignTtl"`
}

// ElevationConfig parameterizes the synthetic elevation profile.
type ElevationConfig struct {
	Base      float64 `yaml:"base"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
}

const (
	DeletePolicyOpen  = "open"
	DeletePolicyOwner = "owner"
)

// Load reads configuration from .env, a YAML file and environment variables, in that order.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	envString("HTTP_ADDRESS", &cfg.HTTP.Address)
	envDuration("HTTP_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout)
	envBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	envInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	envInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}

	envString("ROUTING_BASE_URL", &cfg.Routing.BaseURL)
	envString("ROUTING_PROFILE", &cfg.Routing.Profile)
	envDuration("ROUTING_TIMEOUT", &cfg.Routing.Timeout)

	envString("GEOCODING_BASE_URL", &cfg.Geocoding.BaseURL)
	envString("GEOCODING_USER_AGENT", &cfg.Geocoding.UserAgent)
	envString("GEOCODING_COUNTRY_CODES", &cfg.Geocoding.CountryCodes)
	envString("GEOCODING_VIEWBOX", &cfg.Geocoding.ViewBox)
	envDuration("GEOCODING_DEBOUNCE", &cfg.Geocoding.Debounce)
	envDuration("GEOCODING_REVERSE_INTERVAL", &cfg.Geocoding.ReverseInterval)
	envDuration("GEOCODING_CACHE_TTL", &cfg.Geocoding.CacheTTL)

	envBool("OVERPASS_ENABLED", &cfg.Overpass.Enabled)
	envString("OVERPASS_BASE_URL", &cfg.Overpass.BaseURL)

	envString("HAZARDS_SEED_FILE", &cfg.Hazards.SeedFile)

	envDuration("REPORTS_TTL", &cfg.Reports.TTL)
	envString("REPORTS_DELETE_POLICY", &cfg.Reports.DeletePolicy)
	envString("REPORTS_CAPABILITY_SECRET", &cfg.Reports.CapabilitySecret)
	envString("REPORTS_SQLITE_PATH", &cfg.Reports.SQLitePath)
	envString("REPORTS_POSTGRES_DSN", &cfg.Reports.Postgres.DSN)
	if v := os.Getenv("REPORTS_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Reports.Postgres.MaxConns = int32(parsed)
		}
	}

	envBool("VALKEY_ENABLED", &cfg.Cache.Valkey.Enabled)
	envString("VALKEY_ADDR", &cfg.Cache.Valkey.Addr)

	envString("PHOTOS_ENDPOINT", &cfg.Photos.Endpoint)
	envString("PHOTOS_ACCESS_KEY", &cfg.Photos.AccessKey)
	envString("PHOTOS_SECRET_KEY", &cfg.Photos.SecretKey)
	envString("PHOTOS_BUCKET", &cfg.Photos.Bucket)
	envString("PHOTOS_REGION", &cfg.Photos.Region)
	envString("PHOTOS_PUBLIC_BASE_URL", &cfg.Photos.PublicBaseURL)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			CORSOrigins: []string{"http://localhost:5173"},
		},
		Routing: RoutingConfig{
			BaseURL: "https://router.project-osrm.org",
			Profile: "foot",
			Timeout: 10 * time.Second,
		},
		Geocoding: GeocodingConfig{
			BaseURL:         "https://nominatim.openstreetmap.org",
			UserAgent:       "accessroute/1.0",
			Timeout:         10 * time.Second,
			Debounce:        400 * time.Millisecond,
			ReverseInterval: time.Second,
			CacheTTL:        24 * time.Hour,
		},
		Overpass: OverpassConfig{
			Enabled: false,
			BaseURL: "https://overpass-api.de/api/interpreter",
			Timeout: 30 * time.Second,
		},
		Hazards: HazardsConfig{
			SeedFile:        "configs/hazards.yaml",
			ProximityMeters: 30,
		},
		Reports: ReportsConfig{
			TTL:               48 * time.Hour,
			MaxDescriptionLen: 500,
			DeletePolicy:      DeletePolicyOpen,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Photos: PhotosConfig{
			Region:     "auto",
			PresignTTL: 15 * time.Minute,
		},
		Elevation: ElevationConfig{
			Base:      1400,
			Amplitude: 15,
			Frequency: 0.3,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.Geocoding.Debounce < 0 {
		return errors.New("geocoding.debounce cannot be negative")
	}
	if c.Geocoding.ReverseInterval <= 0 {
		return errors.New("geocoding.reverseInterval must be positive")
	}
	if c.Overpass.Enabled && len(c.Overpass.BBox) != 4 {
		return errors.New("overpass.bbox must list south, west, north, east when overpass is enabled")
	}
	if c.Hazards.ProximityMeters <= 0 {
		return errors.New("hazards.proximityMeters must be positive")
	}
	if c.Reports.TTL < 0 {
		return errors.New("reports.ttl cannot be negative")
	}
	switch c.Reports.DeletePolicy {
	case DeletePolicyOpen:
	case DeletePolicyOwner:
		if strings.TrimSpace(c.Reports.CapabilitySecret) == "" {
			return errors.New("reports.capabilitySecret is required when deletePolicy is owner")
		}
	default:
		return fmt.Errorf("reports.deletePolicy must be %q or %q", DeletePolicyOpen, DeletePolicyOwner)
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when valkey is enabled")
	}
	return nil
}
