package shortener

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds the collision retry loop in Shorten.
const DefaultMaxAttempts = 10

// Service allocates unique short codes and resolves them back to URLs.
type Service struct {
	store        Repository
	generateCode CodeGenerator
	maxAttempts  int
	now          func() time.Time
	logger       *zap.Logger
	reserved     map[Code]struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithMaxAttempts sets how many candidate codes Shorten tries before giving up.
// Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger used for collision diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithReservedCodes excludes codes that would be shadowed by fixed routes.
// A reserved candidate counts as a collision.
func WithReservedCodes(codes ...Code) Option {
	return func(s *Service) {
		for _, c := range codes {
			s.reserved[c] = struct{}{}
		}
	}
}

// NewService creates a shortening service backed by store.
func NewService(store Repository, generator CodeGenerator, opts ...Option) *Service {
	s := &Service{
		store:        store,
		generateCode: generator,
		maxAttempts:  DefaultMaxAttempts,
		now:          time.Now,
		logger:       zap.NewNop(),
		reserved:     make(map[Code]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Shorten stores longURL under a newly allocated code.
//
// Each attempt generates a candidate and hands it to the store's atomic
// insert; a rejected candidate is discarded and a new one drawn.
func (s *Service) Shorten(ctx context.Context, longURL string) (*ShortURL, error) {
	if longURL == "" {
		return nil, ErrInvalidInput
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		shortURL := &ShortURL{
			Code:        Code(s.generateCode()),
			OriginalURL: longURL,
			CreatedAt:   s.now().UTC(),
		}

		if _, ok := s.reserved[shortURL.Code]; !ok {
			stored, err := s.store.PutIfAbsent(ctx, shortURL)
			if err != nil {
				return nil, err
			}

			if stored {
				return shortURL, nil
			}
		}

		s.logger.Debug("short code collision",
			zap.String("code", string(shortURL.Code)),
			zap.Int("attempt", attempt),
		)
	}

	s.logger.Error("exhausted short code attempts", zap.Int("attempts", s.maxAttempts))

	return nil, fmt.Errorf("%w after %d attempts", ErrExhaustedRetries, s.maxAttempts)
}

// Resolve returns the mapping stored for code, or ErrNotFound.
func (s *Service) Resolve(ctx context.Context, code Code) (*ShortURL, error) {
	return s.store.GetByCode(ctx, code)
}
