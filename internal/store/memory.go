package store

import (
	"context"
	"sync"

	"github.com/serroba/url-shortener/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
// Mappings do not survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	urls map[shortener.Code]shortener.ShortURL
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		urls: make(map[shortener.Code]shortener.ShortURL),
	}
}

func (m *MemoryStore) PutIfAbsent(_ context.Context, shortURL *shortener.ShortURL) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.urls[shortURL.Code]; ok {
		return false, nil
	}

	m.urls[shortURL.Code] = *shortURL

	return true, nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	url, ok := m.urls[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &url, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Len returns the number of stored mappings.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.urls)
}

var _ shortener.Repository = (*MemoryStore)(nil)
