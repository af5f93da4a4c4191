// Package backend opens the record store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"voto/internal/platform/config"
	"voto/internal/platform/metrics"
	"voto/internal/platform/postgres"
	"voto/internal/platform/redis"
	"voto/internal/storage"
	"voto/internal/storage/postgresstore"
	"voto/internal/storage/redisstore"
	"voto/internal/storage/sqlitestore"
)

// Backend is an opened store plus its lifecycle hooks.
type Backend struct {
	Store storage.RecordStore
	// Health pings the backing service. Nil for stores without one.
	Health func(ctx context.Context) error
	// Redis is the connection behind a redis store, for other components
	// that keep shared state there.
	Redis   *goredis.Client
	closers []func() error
	logger  *slog.Logger
}

// Open connects to the backend named by cfg.Store, creating tables where the
// backend needs them. When m is non-nil the store is instrumented.
func Open(ctx context.Context, cfg config.Server, m *metrics.Metrics, logger *slog.Logger) (*Backend, error) {
	b := &Backend{logger: logger}

	switch cfg.Store {
	case config.StoreRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.Store = redisstore.New(client.Client)
		b.Redis = client.Client
		b.Health = client.Health
		b.closers = append(b.closers, client.Close)

	case config.StorePostgres:
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := postgresstore.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		b.Store = store
		b.Health = db.PingContext
		b.closers = append(b.closers, db.Close)

	case config.StoreSQLite:
		store, err := sqlitestore.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		b.Store = store
		b.closers = append(b.closers, store.Close)

	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		b.Store = storage.NewInMemory()

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	if m != nil {
		b.Store = storage.NewInstrumented(b.Store, cfg.Store, m)
	}
	return b, nil
}

// Close releases connections held by the backend.
func (b *Backend) Close() {
	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil {
			b.logger.Warn("close store", "error", err)
		}
	}
}
