package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/staticway/staticway/core/handler"
)

// requestIDContextKey is the context key under which the request ID is stored.
type requestIDContextKey struct{}

// RequestIDHeader is the canonical header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// RequestIDConfig configures the RequestID middleware.
type RequestIDConfig struct {
	// Header is the request/response header to read and write the ID from.
	// Defaults to RequestIDHeader.
	Header string

	// Generator produces a new ID when the incoming request carries none.
	// Defaults to uuid.NewString.
	Generator func() string

	// TrustIncoming accepts an ID already present on the request instead of
	// generating a fresh one. Defaults to true.
	TrustIncoming bool
}

// RequestID attaches a unique ID to every request, stores it in the context,
// and echoes it back on the response.
func RequestID[C handler.Context]() handler.Middleware[C] {
	return RequestIDWithConfig[C](RequestIDConfig{TrustIncoming: true})
}

// RequestIDWithConfig returns a RequestID middleware with custom settings.
func RequestIDWithConfig[C handler.Context](cfg RequestIDConfig) handler.Middleware[C] {
	if cfg.Header == "" {
		cfg.Header = RequestIDHeader
	}
	if cfg.Generator == nil {
		cfg.Generator = uuid.NewString
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			id := ""
			if cfg.TrustIncoming {
				id = ctx.Request().Header.Get(cfg.Header)
			}
			if id == "" {
				id = cfg.Generator()
			}

			ctx.SetValue(requestIDContextKey{}, id)
			ctx.ResponseWriter().Header().Set(cfg.Header, id)

			return next(ctx)
		}
	}
}

// GetRequestID extracts the request ID from a context. Handler contexts
// carry the ID after the RequestID middleware has run; any other context
// returns an empty string.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
