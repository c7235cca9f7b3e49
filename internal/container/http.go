package container

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/audit"
	"github.com/serroba/url-shortener/internal/handlers"
	"github.com/serroba/url-shortener/internal/health"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		urlStore, err := do.Invoke[Store](i)
		if err != nil {
			return nil, err
		}

		service, err := do.Invoke[*shortener.Service](i)
		if err != nil {
			return nil, err
		}

		publish, err := do.Invoke[messaging.Publish[audit.MappingCreatedEvent]](i)
		if err != nil {
			return nil, err
		}

		api := humachi.New(router, handlers.NewAPIConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.Timeout(time.Duration(opts.RequestTimeout) * time.Second))

		health.RegisterRoutes(api, health.NewHandler(urlStore))
		handlers.RegisterRoutes(api, handlers.NewURLHandler(service, opts.PublicBaseURL(), publish, logger))

		return api, nil
	})
}
