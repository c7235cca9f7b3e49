package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"go.uber.org/zap"
)

// Store is a mapping repository that can report its own health.
type Store interface {
	shortener.Repository
	Ping(ctx context.Context) error
}

// Migrator is implemented by stores with an explicit schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// RedisClient is the shared Redis connection, closed on injector shutdown.
type RedisClient struct {
	*redis.Client
}

// Shutdown closes the client.
func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// RedisPackage provides the shared *RedisClient.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// StorePackage provides the Store selected by Options.Store.
func StorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		logger.Info("opening store", zap.String("store", opts.Store))

		switch opts.Store {
		case "sqlite":
			return store.OpenSQLite(opts.DBPath)
		case "postgres":
			return openPostgres(opts.DatabaseURL)
		case "redis":
			client, err := do.Invoke[*RedisClient](i)
			if err != nil {
				return nil, err
			}

			logger.Warn("redis store durability depends on server persistence",
				zap.String("redis", opts.RedisAddr),
				zap.String("required", "appendonly yes, appendfsync always"),
				zap.String("note", "created_at is not retained"),
			)

			return store.NewRedisStore(client.Client), nil
		case "memory":
			return store.NewMemoryStore(), nil
		default:
			return nil, fmt.Errorf("unknown store %q", opts.Store)
		}
	})
}

func openPostgres(databaseURL string) (*store.PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("%w: database-url is required for the postgres store", shortener.ErrStorageUnavailable)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: connect postgres: %w", shortener.ErrStorageUnavailable, err)
	}

	pgStore := store.NewPostgresStore(pool)

	if err := pgStore.Migrate(ctx); err != nil {
		pool.Close()

		return nil, err
	}

	return pgStore, nil
}
