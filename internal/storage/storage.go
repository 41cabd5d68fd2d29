// Package storage opens the storage medium selected by configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"bookingcore/internal/blob"
	"bookingcore/internal/config"
	"bookingcore/internal/infra/persistence/memory"
	"bookingcore/internal/infra/persistence/mongo"
	"bookingcore/internal/infra/persistence/object"
	"bookingcore/internal/infra/persistence/postgres"
	"bookingcore/internal/infra/persistence/redis"
	"bookingcore/internal/infra/persistence/sqlite"
	"bookingcore/pkg/domain"
)

// Open constructs the medium named by cfg.Driver. The caller owns the
// returned medium and must Close it.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (domain.Medium, error) {
	if logger == nil {
		logger = slog.Default()
	}
	medium, target, err := open(ctx, cfg)
	if err != nil {
		logger.Error("storage open failed", "driver", cfg.Driver, "error", err)
		return nil, err
	}
	logger.Info("storage opened", "driver", cfg.Driver, "target", target)
	return &loggedMedium{Medium: medium, driver: cfg.Driver, logger: logger}, nil
}

func open(ctx context.Context, cfg config.StorageConfig) (domain.Medium, string, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewStore(), "process", nil
	case config.DriverSQLite:
		s, err := sqlite.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite: %w", err)
		}
		return s, s.Path(), nil
	case config.DriverPostgres:
		s, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, "", fmt.Errorf("open postgres: %w", err)
		}
		return s, "postgres", nil
	case config.DriverRedis:
		s, err := redis.NewStore(ctx, redis.Options{
			URL:            cfg.RedisURL,
			Prefix:         cfg.RedisPrefix,
			ConnectTimeout: cfg.ConnectTimeout,
		})
		if err != nil {
			return nil, "", fmt.Errorf("open redis: %w", err)
		}
		return s, cfg.RedisPrefix, nil
	case config.DriverMongo:
		s, err := mongo.NewStore(ctx, mongo.Options{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDatabase,
			Collection:     cfg.MongoCollection,
			ConnectTimeout: cfg.ConnectTimeout,
		})
		if err != nil {
			return nil, "", fmt.Errorf("open mongo: %w", err)
		}
		return s, cfg.MongoDatabase + "." + cfg.MongoCollection, nil
	case config.DriverBlob:
		blobs, err := blob.Open(ctx, blobConfig(cfg.Blob))
		if err != nil {
			return nil, "", fmt.Errorf("open blob store: %w", err)
		}
		s, err := object.NewStore(blobs, cfg.Blob.Prefix)
		if err != nil {
			return nil, "", err
		}
		return s, string(blobs.Driver()) + ":" + s.Prefix(), nil
	default:
		return nil, "", fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func blobConfig(cfg config.BlobConfig) blob.Config {
	return blob.Config{
		Driver: blob.Driver(cfg.Driver),
		FSRoot: cfg.FSRoot,
		S3: blob.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		},
	}
}

// loggedMedium logs when the medium is closed.
type loggedMedium struct {
	domain.Medium
	driver string
	logger *slog.Logger
}

func (m *loggedMedium) Close() error {
	err := m.Medium.Close()
	if err != nil {
		m.logger.Warn("storage close failed", "driver", m.driver, "error", err)
		return err
	}
	m.logger.Info("storage closed", "driver", m.driver)
	return nil
}
