package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context) error

// Ping calls f.
func (f CheckerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// Handler handles health check operations.
type Handler struct {
	store Checker
}

// NewHandler creates a new health handler for the configured store.
func NewHandler(store Checker) *Handler {
	return &Handler{store: store}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status string `json:"status"`
		Store  string `json:"store"`
	}
}

// Check performs a health check of the application and its store.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "ok"

	if err := h.store.Ping(ctx); err != nil {
		resp.Body.Store = "unhealthy"
		resp.Body.Status = "degraded"
	} else {
		resp.Body.Store = "healthy"
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Get(api, "/health", h.Check)
}
