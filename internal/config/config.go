package config

import (
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Dataset source kinds.
const (
	SourceExcel    = "xlsx"
	SourceCSV      = "csv"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

type AppConfig struct {
	Port     string `env:"PORT" env-default:"8080"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	// Timezone in which dataset dates and "now" are interpreted.
	Timezone string `env:"TIMEZONE" env-default:"Asia/Colombo"`

	// Region is the district the live snapshot is narrowed to.
	Region string `env:"CROWD_REGION" env-default:"colombo"`

	// RegistryFile optionally replaces the built-in place registry (YAML).
	RegistryFile string `env:"REGISTRY_FILE"`

	Dataset DatasetConfig

	// Redis is optional; without it responses are not cached and snapshots
	// are not published.
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" env-default:"5m"`

	// Snapshot capture.
	SnapshotInterval time.Duration `env:"SNAPSHOT_INTERVAL" env-default:"15m"`
	SnapshotRegions  []string      `env:"SNAPSHOT_REGIONS" env-separator:","`
	StoreMaxHistory  int           `env:"STORE_MAX_HISTORY" env-default:"96"` // roughly 24h at 15-minute intervals
	StoreMaxAge      time.Duration `env:"STORE_MAX_AGE" env-default:"24h"`

	GeocoderAPIKey     string `env:"GEOCODER_API_KEY"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`

	location *time.Location
}

type DatasetConfig struct {
	Source      string        `env:"DATASET_SOURCE" env-default:"xlsx"`
	Path        string        `env:"DATASET_PATH" env-default:"data/crowd_predictions_next7days_with_levels.xlsx"`
	URL         string        `env:"DATASET_URL"`
	DatabaseURL string        `env:"DATABASE_URL"`
	Table       string        `env:"DATASET_TABLE" env-default:"crowd_predictions"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" env-default:"10s"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location returns the parsed Timezone.
func (c *AppConfig) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

func (c *AppConfig) normalize() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	c.location = loc

	c.Region = strings.TrimSpace(c.Region)
	c.Dataset.Source = strings.ToLower(strings.TrimSpace(c.Dataset.Source))

	switch c.Dataset.Source {
	case SourceExcel, SourceCSV:
		if c.Dataset.Path == "" {
			return fmt.Errorf("DATASET_PATH is required for source %q", c.Dataset.Source)
		}
	case SourceHTTP:
		if c.Dataset.URL == "" {
			return fmt.Errorf("DATASET_URL is required for source %q", c.Dataset.Source)
		}
	case SourcePostgres:
		if c.Dataset.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for source %q", c.Dataset.Source)
		}
	default:
		return fmt.Errorf("invalid DATASET_SOURCE %q", c.Dataset.Source)
	}

	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("invalid SNAPSHOT_INTERVAL: %s", c.SnapshotInterval)
	}

	var regions []string
	for _, r := range c.SnapshotRegions {
		if r = strings.TrimSpace(r); r != "" {
			regions = append(regions, r)
		}
	}
	if len(regions) == 0 {
		regions = []string{c.Region}
	}
	c.SnapshotRegions = regions

	return nil
}
