// Package storage selects and decorates the durable key-value backend
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
	"github.com/aryan0dhankhar/coursehub/internal/infrastructure/etcd"
	"github.com/aryan0dhankhar/coursehub/internal/infrastructure/mongostore"
	"github.com/aryan0dhankhar/coursehub/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/coursehub/internal/infrastructure/sqlite"
	"github.com/aryan0dhankhar/coursehub/pkg/cache"
	"github.com/aryan0dhankhar/coursehub/pkg/config"
	"github.com/aryan0dhankhar/coursehub/pkg/database"
)

// Backend is a key-value store that can be health-checked and closed
type Backend interface {
	domain.KeyValueStore
	Ping(ctx context.Context) error
	Close() error
}

// Open connects the backend named by cfg.StorageBackend and wraps it with
// key prefixing, retries with a circuit breaker, and metrics.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	raw, err := openRaw(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var b Backend = raw
	if cfg.StorageKeyPrefix != "" {
		b = WithPrefix(b, cfg.StorageKeyPrefix)
	}
	b = NewResilient(b, DefaultResilienceConfig(), logger)
	b = NewInstrumented(b, cfg.StorageBackend)

	logger.Info("storage backend ready",
		slog.String("backend", cfg.StorageBackend),
		slog.String("key_prefix", cfg.StorageKeyPrefix),
	)
	return b, nil
}

func openRaw(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Backend, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return cache.New(), nil
	case config.BackendSQLite:
		return sqlite.Open(cfg.SQLitePath, logger)
	case config.BackendRedis:
		return redis.NewClient(cfg.RedisURL, logger)
	case config.BackendPostgres:
		pool, err := database.NewConnectionPool(ctx, &database.Config{
			URL:             cfg.DatabaseURL,
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		}, logger)
		if err != nil {
			return nil, err
		}
		kv, err := database.NewKVStore(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return kv, nil
	case config.BackendEtcd:
		return etcd.NewStore(etcd.Config{
			Endpoints: cfg.EtcdEndpoints,
			Prefix:    cfg.EtcdPrefix,
		}, logger)
	case config.BackendMongo:
		return mongostore.NewStore(cfg.MongoURI, cfg.MongoDatabase, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
