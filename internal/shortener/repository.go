package shortener

import "context"

// Repository is the durable mapping store.
//
// PutIfAbsent must be atomic: of several concurrent calls with the same code
// exactly one reports true. A true result means the mapping is already durable.
// Backend failures are reported wrapped with ErrStorageUnavailable.
type Repository interface {
	PutIfAbsent(ctx context.Context, shortURL *ShortURL) (bool, error)
	GetByCode(ctx context.Context, code Code) (*ShortURL, error)
}
