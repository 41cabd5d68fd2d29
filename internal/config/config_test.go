package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, DriverSQLite)
	}
	if cfg.Storage.SQLitePath != "./data/bookingcore.db" {
		t.Errorf("SQLitePath = %q", cfg.Storage.SQLitePath)
	}
	if cfg.Storage.Blob.Driver != "fs" || cfg.Storage.Blob.Prefix != "bookingcore/" {
		t.Errorf("unexpected blob defaults %+v", cfg.Storage.Blob)
	}
	if cfg.Storage.ConnectTimeout != 10*time.Second {
		t.Errorf("ConnectTimeout = %s", cfg.Storage.ConnectTimeout)
	}
	if len(cfg.AdminEmails) != 2 || cfg.AdminEmails[0] != "admin@example.com" || cfg.AdminEmails[1] != "admin@booking.com" {
		t.Errorf("AdminEmails = %v", cfg.AdminEmails)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("unexpected log defaults %q %q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", cfg.Location())
	}
	if cfg.MetricsEnabled() {
		t.Errorf("metrics should be disabled by default")
	}
}

func TestLoadCustomValues(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"BOOKING_STORAGE_DRIVER":             "blob",
		"BOOKING_STORAGE_BLOB_DRIVER":        "s3",
		"BOOKING_STORAGE_BLOB_S3_BUCKET":     "bookings",
		"BOOKING_STORAGE_BLOB_S3_PATH_STYLE": "true",
		"BOOKING_ADMIN_EMAILS":               "boss@shop.io",
		"BOOKING_TIMEZONE":                   "Europe/Paris",
		"BOOKING_LOG_LEVEL":                  "debug",
		"BOOKING_LOG_FORMAT":                 "json",
		"BOOKING_METRICS_ADDR":               ":9090",
	})
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Storage.Blob.S3Bucket != "bookings" || !cfg.Storage.Blob.S3PathStyle {
		t.Errorf("unexpected blob config %+v", cfg.Storage.Blob)
	}
	if len(cfg.AdminEmails) != 1 || cfg.AdminEmails[0] != "boss@shop.io" {
		t.Errorf("AdminEmails = %v", cfg.AdminEmails)
	}
	if cfg.Location().String() != "Europe/Paris" {
		t.Errorf("Location() = %v", cfg.Location())
	}
	if !cfg.MetricsEnabled() {
		t.Errorf("expected metrics enabled")
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"driver", map[string]string{"BOOKING_STORAGE_DRIVER": "floppy"}, "BOOKING_STORAGE_DRIVER"},
		{"redis url", map[string]string{"BOOKING_STORAGE_DRIVER": "redis"}, "REDIS_URL"},
		{"mongo uri", map[string]string{"BOOKING_STORAGE_DRIVER": "mongo"}, "MONGO_URI"},
		{"blob driver", map[string]string{"BOOKING_STORAGE_DRIVER": "blob", "BOOKING_STORAGE_BLOB_DRIVER": "tape"}, "BLOB_DRIVER"},
		{"s3 bucket", map[string]string{"BOOKING_STORAGE_DRIVER": "blob", "BOOKING_STORAGE_BLOB_DRIVER": "s3"}, "S3_BUCKET"},
		{"log level", map[string]string{"BOOKING_LOG_LEVEL": "loud"}, "BOOKING_LOG_LEVEL"},
		{"log format", map[string]string{"BOOKING_LOG_FORMAT": "xml"}, "BOOKING_LOG_FORMAT"},
		{"timezone", map[string]string{"BOOKING_TIMEZONE": "Mars/Olympus"}, "BOOKING_TIMEZONE"},
		{"timeout", map[string]string{"BOOKING_STORAGE_CONNECT_TIMEOUT": "soon"}, "parsing config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFrom(tc.vars)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadReadsProcessEnvironment(t *testing.T) {
	t.Setenv("BOOKING_STORAGE_DRIVER", "memory")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Errorf("Storage.Driver = %q, want memory", cfg.Storage.Driver)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
