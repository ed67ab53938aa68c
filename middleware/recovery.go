package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/staticway/staticway/core/handler"
	"github.com/staticway/staticway/core/logger"
)

// Recovery converts handler panics into 500 responses and logs them with a
// stack trace instead of letting them tear down the connection.
func Recovery[C handler.Context](log *slog.Logger) handler.Middleware[C] {
	if log == nil {
		log = slog.Default()
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) (resp handler.Response) {
			defer func() {
				if rec := recover(); rec != nil {
					log.LogAttrs(ctx, slog.LevelError, "panic recovered",
						logger.RequestID(GetRequestID(ctx)),
						logger.Method(ctx.Request().Method),
						logger.Path(ctx.Request().URL.Path),
						logger.Error(fmt.Errorf("%v", rec)),
						logger.Stack(),
					)
					resp = func(w http.ResponseWriter, r *http.Request) error {
						http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
						return nil
					}
				}
			}()
			return next(ctx)
		}
	}
}
