package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the URL shortener routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "home",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Shortening form",
		Description: "Serves an HTML form that submits a URL to /shorten.",
		Tags:        []string{"URLs"},
	}, urlHandler.Home)

	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Allocates a new unique short code for the given URL. Accepts JSON or a form field.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusOK,
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "redirect-to-url",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL associated with the short code.",
		Tags:        []string{"URLs"},
	}, urlHandler.RedirectToURL)
}
