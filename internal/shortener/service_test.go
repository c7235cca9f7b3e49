package shortener_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://example.com/very/long/path"

var errMock = errors.New("mock error")

// failingStore fails every operation with a storage error.
type failingStore struct{}

func (failingStore) PutIfAbsent(_ context.Context, _ *shortener.ShortURL) (bool, error) {
	return false, fmt.Errorf("%w: %w", shortener.ErrStorageUnavailable, errMock)
}

func (failingStore) GetByCode(_ context.Context, _ shortener.Code) (*shortener.ShortURL, error) {
	return nil, fmt.Errorf("%w: %w", shortener.ErrStorageUnavailable, errMock)
}

// sequenceGenerator returns the given codes in order, then fresh numbered codes.
func sequenceGenerator(codes ...string) shortener.CodeGenerator {
	var n atomic.Int64

	return func() string {
		i := n.Add(1) - 1
		if int(i) < len(codes) {
			return codes[i]
		}

		return fmt.Sprintf("gen%05d", i)
	}
}

func newTestService(t *testing.T, s shortener.Repository, opts ...shortener.Option) *shortener.Service {
	t.Helper()

	gen, err := shortener.NewCodeGenerator(shortener.DefaultCodeLength)
	require.NoError(t, err)

	return shortener.NewService(s, gen, opts...)
}

func TestService_Shorten(t *testing.T) {
	t.Run("round trips the original url unchanged", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())
		longURL := "https://example.com/path?q=a%20b&x=ü#frag"

		created, err := svc.Shorten(context.Background(), longURL)
		require.NoError(t, err)

		resolved, err := svc.Resolve(context.Background(), created.Code)
		require.NoError(t, err)
		assert.Equal(t, longURL, resolved.OriginalURL)
	})

	t.Run("rejects an empty url and stores nothing", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		svc := newTestService(t, memStore)

		created, err := svc.Shorten(context.Background(), "")

		assert.Nil(t, created)
		assert.ErrorIs(t, err, shortener.ErrInvalidInput)
		assert.Equal(t, 0, memStore.Len())
	})

	t.Run("creates a new code for the same url", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		first, err1 := svc.Shorten(context.Background(), testURL)
		second, err2 := svc.Shorten(context.Background(), testURL)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotEqual(t, first.Code, second.Code)
	})

	t.Run("stamps CreatedAt from the clock", func(t *testing.T) {
		fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		svc := newTestService(t, store.NewMemoryStore(), shortener.WithClock(func() time.Time { return fixed }))

		created, err := svc.Shorten(context.Background(), testURL)

		require.NoError(t, err)
		assert.Equal(t, fixed, created.CreatedAt)
	})

	t.Run("retries with a new candidate after a collision", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		_, _ = memStore.PutIfAbsent(context.Background(), &shortener.ShortURL{
			Code:        "taken001",
			OriginalURL: "https://other.com",
		})
		svc := shortener.NewService(memStore, sequenceGenerator("taken001", "free0001"))

		created, err := svc.Shorten(context.Background(), testURL)

		require.NoError(t, err)
		assert.Equal(t, shortener.Code("free0001"), created.Code)

		existing, _ := memStore.GetByCode(context.Background(), "taken001")
		assert.Equal(t, "https://other.com", existing.OriginalURL)
	})

	t.Run("skips reserved codes", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		svc := shortener.NewService(memStore,
			sequenceGenerator("health", "free0002"),
			shortener.WithReservedCodes("health"),
		)

		created, err := svc.Shorten(context.Background(), testURL)

		require.NoError(t, err)
		assert.Equal(t, shortener.Code("free0002"), created.Code)
		assert.Equal(t, 1, memStore.Len())
	})

	t.Run("fails with ErrExhaustedRetries when every candidate collides", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		_, _ = memStore.PutIfAbsent(context.Background(), &shortener.ShortURL{
			Code:        "constant",
			OriginalURL: "https://other.com",
		})
		svc := shortener.NewService(memStore,
			func() string { return "constant" },
			shortener.WithMaxAttempts(3),
		)

		created, err := svc.Shorten(context.Background(), testURL)

		assert.Nil(t, created)
		assert.ErrorIs(t, err, shortener.ErrExhaustedRetries)
		assert.Equal(t, 1, memStore.Len())
	})

	t.Run("honours the configured attempt bound", func(t *testing.T) {
		var calls atomic.Int64

		memStore := store.NewMemoryStore()
		_, _ = memStore.PutIfAbsent(context.Background(), &shortener.ShortURL{Code: "constant"})
		svc := shortener.NewService(memStore,
			func() string {
				calls.Add(1)

				return "constant"
			},
			shortener.WithMaxAttempts(4),
		)

		_, err := svc.Shorten(context.Background(), testURL)

		require.ErrorIs(t, err, shortener.ErrExhaustedRetries)
		assert.Equal(t, int64(4), calls.Load())
	})

	t.Run("defaults the attempt bound when given a non-positive value", func(t *testing.T) {
		var calls atomic.Int64

		memStore := store.NewMemoryStore()
		_, _ = memStore.PutIfAbsent(context.Background(), &shortener.ShortURL{Code: "constant"})
		svc := shortener.NewService(memStore,
			func() string {
				calls.Add(1)

				return "constant"
			},
			shortener.WithMaxAttempts(0),
		)

		_, err := svc.Shorten(context.Background(), testURL)

		require.ErrorIs(t, err, shortener.ErrExhaustedRetries)
		assert.Equal(t, int64(shortener.DefaultMaxAttempts), calls.Load())
	})

	t.Run("surfaces storage errors without retrying", func(t *testing.T) {
		var calls atomic.Int64

		svc := shortener.NewService(failingStore{}, func() string {
			calls.Add(1)

			return "abc12345"
		})

		created, err := svc.Shorten(context.Background(), testURL)

		assert.Nil(t, created)
		assert.ErrorIs(t, err, shortener.ErrStorageUnavailable)
		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		created, err := svc.Shorten(ctx, testURL)

		assert.Nil(t, created)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestService_Shorten_Concurrent(t *testing.T) {
	t.Run("codes are unique across concurrent calls", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		const callers = 200

		codes := make([]shortener.Code, callers)

		var wg sync.WaitGroup

		for i := range callers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				created, err := svc.Shorten(context.Background(), fmt.Sprintf("https://example.com/%d", i))
				if assert.NoError(t, err) {
					codes[i] = created.Code
				}
			}()
		}

		wg.Wait()

		seen := make(map[shortener.Code]struct{}, callers)
		for _, c := range codes {
			seen[c] = struct{}{}
		}

		assert.Len(t, seen, callers)
	})

	t.Run("a forced duplicate candidate is won by exactly one caller", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		svc := shortener.NewService(memStore, sequenceGenerator("dupe0001", "dupe0001"))

		var (
			wg      sync.WaitGroup
			results [2]*shortener.ShortURL
		)

		start := make(chan struct{})

		for i := range results {
			wg.Add(1)

			go func() {
				defer wg.Done()
				<-start

				created, err := svc.Shorten(context.Background(), fmt.Sprintf("https://example.com/%d", i))
				if assert.NoError(t, err) {
					results[i] = created
				}
			}()
		}

		close(start)
		wg.Wait()

		require.NotNil(t, results[0])
		require.NotNil(t, results[1])
		assert.NotEqual(t, results[0].Code, results[1].Code)

		winners := 0

		for _, r := range results {
			if r.Code == "dupe0001" {
				winners++
			}

			stored, err := memStore.GetByCode(context.Background(), r.Code)
			require.NoError(t, err)
			assert.Equal(t, r.OriginalURL, stored.OriginalURL)
		}

		assert.Equal(t, 1, winners)
	})
}

func TestService_Resolve(t *testing.T) {
	t.Run("returns the same url on repeated reads", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		created, err := svc.Shorten(context.Background(), testURL)
		require.NoError(t, err)

		for range 3 {
			resolved, err := svc.Resolve(context.Background(), created.Code)
			require.NoError(t, err)
			assert.Equal(t, testURL, resolved.OriginalURL)
		}
	})

	t.Run("returns ErrNotFound for a code never issued", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		resolved, err := svc.Resolve(context.Background(), "neverissued")

		assert.Nil(t, resolved)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("surfaces storage errors", func(t *testing.T) {
		svc := newTestService(t, failingStore{})

		_, err := svc.Resolve(context.Background(), "abc12345")

		assert.ErrorIs(t, err, shortener.ErrStorageUnavailable)
	})
}
