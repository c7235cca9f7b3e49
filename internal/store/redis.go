package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/shortener"
)

// RedisStore is a Redis implementation of shortener.Repository.
//
// Durability follows the server's persistence settings; run Redis with
// appendonly yes and appendfsync always to get acknowledged-means-durable.
// CreatedAt is not retained.
type RedisStore struct {
	client *redis.Client
	prefix string // "url:" for code->url (string keys)
}

// NewRedisStore creates a new Redis-backed URL store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "url:",
	}
}

func (r *RedisStore) PutIfAbsent(ctx context.Context, shortURL *shortener.ShortURL) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.prefix+string(shortURL.Code), shortURL.OriginalURL, 0).Result()
	if err != nil {
		return false, fmt.Errorf("%w: setnx %s: %w", shortener.ErrStorageUnavailable, shortURL.Code, err)
	}

	return ok, nil
}

func (r *RedisStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	url, err := r.client.Get(ctx, r.prefix+string(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("%w: get %s: %w", shortener.ErrStorageUnavailable, code, err)
	}

	return &shortener.ShortURL{
		Code:        code,
		OriginalURL: url,
	}, nil
}

// Ping checks Redis connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

var _ shortener.Repository = (*RedisStore)(nil)
