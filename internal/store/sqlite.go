package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/serroba/url-shortener/internal/shortener"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// sqlitePragmas makes every committed insert durable before it is acknowledged.
const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)"

// sqliteDSN appends the pragmas to path, which may already carry a query.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + sqlitePragmas
	}

	return path + "?" + sqlitePragmas
}

// urlRecord is the row layout of the urls table.
type urlRecord struct {
	Code      string    `gorm:"primaryKey;size:32"`
	LongURL   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (urlRecord) TableName() string {
	return "urls"
}

// SQLiteStore is a file-backed implementation of shortener.Repository.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the database file at path and
// ensures the urls table exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite %s: %w", shortener.ErrStorageUnavailable, path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite handle: %w", shortener.ErrStorageUnavailable, err)
	}

	// SQLite allows a single writer; one connection serialises inserts
	// instead of surfacing SQLITE_BUSY to callers.
	sqlDB.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = sqlDB.Close()

		return nil, err
	}

	return s, nil
}

// Migrate creates the urls table if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&urlRecord{}); err != nil {
		return fmt.Errorf("%w: migrate: %w", shortener.ErrStorageUnavailable, err)
	}

	return nil
}

func (s *SQLiteStore) PutIfAbsent(ctx context.Context, shortURL *shortener.ShortURL) (bool, error) {
	record := urlRecord{
		Code:      string(shortURL.Code),
		LongURL:   shortURL.OriginalURL,
		CreatedAt: shortURL.CreatedAt,
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record)
	if result.Error != nil {
		return false, fmt.Errorf("%w: insert %s: %w", shortener.ErrStorageUnavailable, shortURL.Code, result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (s *SQLiteStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	var record urlRecord

	err := s.db.WithContext(ctx).Where("code = ?", string(code)).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("%w: lookup %s: %w", shortener.ErrStorageUnavailable, code, err)
	}

	return &shortener.ShortURL{
		Code:        shortener.Code(record.Code),
		OriginalURL: record.LongURL,
		CreatedAt:   record.CreatedAt,
	}, nil
}

// Ping checks that the database file is still reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Shutdown closes the underlying database.
func (s *SQLiteStore) Shutdown() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

var _ shortener.Repository = (*SQLiteStore)(nil)
