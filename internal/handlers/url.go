package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/audit"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// URLService is the shortening behaviour the handlers depend on.
type URLService interface {
	Shorten(ctx context.Context, longURL string) (*shortener.ShortURL, error)
	Resolve(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error)
}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	service               URLService
	baseURL               string
	publishMappingCreated messaging.Publish[audit.MappingCreatedEvent]
	logger                *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	service URLService,
	baseURL string,
	publishMappingCreated messaging.Publish[audit.MappingCreatedEvent],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		service:               service,
		baseURL:               baseURL,
		publishMappingCreated: publishMappingCreated,
		logger:                logger,
	}
}

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata recorded with audit events.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	shortURL, err := h.service.Shorten(ctx, req.Body.LongURL)
	if err != nil {
		if errors.Is(err, shortener.ErrInvalidInput) {
			return nil, huma.Error400BadRequest("long_url is required")
		}

		h.logger.Error("failed to shorten url", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to shorten url")
	}

	meta := RequestMetaFromContext(ctx)
	event := &audit.MappingCreatedEvent{
		Code:      string(shortURL.Code),
		LongURL:   shortURL.OriginalURL,
		CreatedAt: shortURL.CreatedAt,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.publishMappingCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish mapping created event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	fullShortURL := fmt.Sprintf("%s/%s", h.baseURL, shortURL.Code)

	resp := &CreateShortURLResponse{}
	resp.Location = fullShortURL
	resp.Body.Code = string(shortURL.Code)
	resp.Body.ShortURL = fullShortURL
	resp.Body.LongURL = shortURL.OriginalURL

	return resp, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	shortURL, err := h.service.Resolve(ctx, shortener.Code(req.Code))
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		h.logger.Error("failed to resolve url", zap.String("code", req.Code), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: shortURL.OriginalURL,
	}, nil
}
