package container

import (
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// Codes that would be shadowed by fixed routes.
var reservedCodes = []shortener.Code{"health", "shorten"}

// ShortenerPackage provides the *shortener.Service.
func ShortenerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		urlStore, err := do.Invoke[Store](i)
		if err != nil {
			return nil, err
		}

		generator, err := shortener.NewCodeGenerator(opts.CodeLength)
		if err != nil {
			return nil, err
		}

		return shortener.NewService(urlStore, generator,
			shortener.WithMaxAttempts(opts.MaxAttempts),
			shortener.WithLogger(logger),
			shortener.WithReservedCodes(reservedCodes...),
		), nil
	})
}
