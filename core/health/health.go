// Package health provides liveness and readiness endpoints for handler
// chains.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/staticway/staticway/core/handler"
	"github.com/staticway/staticway/core/logger"
)

// Liveness indicates that the service process is running. Always returns
// "ALIVE" with 200 OK, no dependency checks.
func Liveness[C handler.Context](C) handler.Response {
	return text(http.StatusOK, "ALIVE")
}

// NoContent returns HTTP 204 without a body. Suited to high-frequency checks.
func NoContent[C handler.Context](C) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}

// Readiness verifies all service dependencies are functioning. Returns
// "READY" when every check passes, 503 Service Unavailable otherwise.
func Readiness[C handler.Context](log *slog.Logger, fn ...func(context.Context) error) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		for _, f := range fn {
			if err := f(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Error(err))
				return text(http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
			}
		}
		return text(http.StatusOK, "READY")
	}
}

func text(code int, body string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(code)
		_, err := w.Write([]byte(body))
		return err
	}
}
