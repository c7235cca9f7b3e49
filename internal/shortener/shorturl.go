package shortener

import "time"

// Code represents a short URL code.
type Code string

// ShortURL is a persisted mapping from a short code to the original URL.
// Once stored, OriginalURL never changes.
type ShortURL struct {
	Code        Code
	OriginalURL string
	CreatedAt   time.Time
}
