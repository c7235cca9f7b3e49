package middleware

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/handlers"
)

// RequestMeta records the client address and user agent of each request
// for the mapping audit trail.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			ClientIP:  clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
		}

		next(huma.WithContext(ctx, handlers.ContextWithRequestMeta(ctx.Context(), meta)))
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// peer address. Values that are not IP addresses are skipped.
func clientIP(ctx huma.Context) string {
	if first, _, _ := strings.Cut(ctx.Header("X-Forwarded-For"), ","); first != "" {
		if ip := parseIP(first); ip != "" {
			return ip
		}
	}

	if ip := parseIP(ctx.Header("X-Real-IP")); ip != "" {
		return ip
	}

	return parseIP(ctx.RemoteAddr())
}

// parseIP accepts a bare address or host:port and returns the canonical IP.
func parseIP(value string) string {
	value = strings.TrimSpace(value)

	if host, _, err := net.SplitHostPort(value); err == nil {
		value = host
	}

	ip := net.ParseIP(strings.Trim(value, "[]"))
	if ip == nil {
		return ""
	}

	return ip.String()
}
