package shortener

import "errors"

var (
	// ErrInvalidInput is returned when the URL to shorten is empty.
	ErrInvalidInput = errors.New("long url must not be empty")

	// ErrNotFound is returned when no mapping exists for a code.
	ErrNotFound = errors.New("url not found")

	// ErrStorageUnavailable wraps any failure of the backing store.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrExhaustedRetries is returned when every generated candidate collided.
	ErrExhaustedRetries = errors.New("could not allocate a free short code")
)
