package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/url-shortener/internal/shortener"
)

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the urls table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS urls (
			code       TEXT PRIMARY KEY,
			long_url   TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	if _, err := p.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("%w: migrate: %w", shortener.ErrStorageUnavailable, err)
	}

	return nil
}

func (p *PostgresStore) PutIfAbsent(ctx context.Context, shortURL *shortener.ShortURL) (bool, error) {
	query := `
		INSERT INTO urls (code, long_url, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		string(shortURL.Code),
		shortURL.OriginalURL,
		shortURL.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("%w: insert %s: %w", shortener.ErrStorageUnavailable, shortURL.Code, err)
	}

	return tag.RowsAffected() == 1, nil
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	query := `
		SELECT code, long_url, created_at
		FROM urls
		WHERE code = $1
	`

	var url shortener.ShortURL

	err := p.pool.QueryRow(ctx, query, string(code)).Scan(
		&url.Code,
		&url.OriginalURL,
		&url.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("%w: lookup %s: %w", shortener.ErrStorageUnavailable, code, err)
	}

	return &url, nil
}

// Ping checks PostgreSQL connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

var _ shortener.Repository = (*PostgresStore)(nil)
