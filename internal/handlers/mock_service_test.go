package handlers_test

import (
	"context"
	"errors"
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
)

var errMock = errors.New("mock error")

const testURL = "https://example.com/very/long/path"

// mockService is a URLService double returning canned results.
type mockService struct {
	shortenErr error
	resolveErr error
	lastURL    string
}

func (m *mockService) Shorten(_ context.Context, longURL string) (*shortener.ShortURL, error) {
	m.lastURL = longURL

	if m.shortenErr != nil {
		return nil, m.shortenErr
	}

	return &shortener.ShortURL{
		Code:        "mock1234",
		OriginalURL: longURL,
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

func (m *mockService) Resolve(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}

	return &shortener.ShortURL{Code: code, OriginalURL: testURL}, nil
}
