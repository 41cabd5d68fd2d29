// Package config loads bookingcore settings from BOOKING_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage drivers accepted by BOOKING_STORAGE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
	DriverBlob     = "blob"
)

var storageDrivers = []string{DriverMemory, DriverSQLite, DriverPostgres, DriverRedis, DriverMongo, DriverBlob}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Storage StorageConfig `envPrefix:"BOOKING_STORAGE_"`

	AdminEmails []string `env:"BOOKING_ADMIN_EMAILS" envSeparator:"," envDefault:"admin@example.com,admin@booking.com"`
	Timezone    string   `env:"BOOKING_TIMEZONE" envDefault:"UTC"` // zone for datetimes without an offset

	LogLevel  string `env:"BOOKING_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"BOOKING_LOG_FORMAT" envDefault:"text"`

	MetricsAddr string `env:"BOOKING_METRICS_ADDR"` // optional; serves /metrics, /debug/vars, /healthz
	TraceFile   string `env:"BOOKING_TRACE_FILE"`   // optional JSON-lines span output
}

// StorageConfig selects and configures the storage medium.
type StorageConfig struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`

	SQLitePath  string `env:"SQLITE_PATH" envDefault:"./data/bookingcore.db"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	RedisURL    string `env:"REDIS_URL"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"booking:"`

	MongoURI        string `env:"MONGO_URI"`
	MongoDatabase   string `env:"MONGO_DATABASE" envDefault:"bookingcore"`
	MongoCollection string `env:"MONGO_COLLECTION" envDefault:"state"`

	Blob BlobConfig `envPrefix:"BLOB_"`

	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

// BlobConfig configures the object-store medium.
type BlobConfig struct {
	Driver string `env:"DRIVER" envDefault:"fs"`
	FSRoot string `env:"FS_ROOT" envDefault:"./data/blobs"`
	Prefix string `env:"PREFIX" envDefault:"bookingcore/"`

	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3PathStyle       bool   `env:"S3_PATH_STYLE" envDefault:"false"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
}

// Load parses the process environment and validates the result.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks driver names, required per-driver settings, the log
// settings and the timezone.
func (c *Config) Validate() error {
	s := c.Storage
	if !slices.Contains(storageDrivers, s.Driver) {
		return fmt.Errorf("BOOKING_STORAGE_DRIVER must be one of %s, got %q", strings.Join(storageDrivers, ", "), s.Driver)
	}
	switch s.Driver {
	case DriverRedis:
		if s.RedisURL == "" {
			return fmt.Errorf("BOOKING_STORAGE_REDIS_URL is required for the redis driver")
		}
	case DriverMongo:
		if s.MongoURI == "" {
			return fmt.Errorf("BOOKING_STORAGE_MONGO_URI is required for the mongo driver")
		}
	case DriverBlob:
		switch s.Blob.Driver {
		case "fs", "memory":
		case "s3":
			if s.Blob.S3Bucket == "" {
				return fmt.Errorf("BOOKING_STORAGE_BLOB_S3_BUCKET is required for the s3 blob driver")
			}
		default:
			return fmt.Errorf("BOOKING_STORAGE_BLOB_DRIVER must be fs, s3 or memory, got %q", s.Blob.Driver)
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("BOOKING_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("BOOKING_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the configured zone, UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MetricsEnabled reports whether the metrics listener is configured.
func (c *Config) MetricsEnabled() bool {
	return c.MetricsAddr != ""
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("BOOKING_LOG_LEVEL must be debug, info, warn or error, got %q", level)
	}
}
