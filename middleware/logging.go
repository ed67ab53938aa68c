package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/staticway/staticway/core/handler"
	"github.com/staticway/staticway/core/logger"
)

// LoggingConfig configures the Logging middleware.
type LoggingConfig struct {
	// Logger receives the access records. Defaults to slog.Default().
	Logger *slog.Logger

	// Level is the level successful requests are logged at.
	// Defaults to slog.LevelInfo. Responses with a 5xx status are always
	// logged at Error.
	Level slog.Level

	// SkipPaths lists exact request paths that are never logged, typically
	// health checks.
	SkipPaths []string
}

// Logging records one structured log line per request with method, path,
// status, response size and latency.
func Logging[C handler.Context](log *slog.Logger) handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{Logger: log})
}

// LoggingWithConfig returns a Logging middleware with custom settings.
func LoggingWithConfig[C handler.Context](cfg LoggingConfig) handler.Middleware[C] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			r := ctx.Request()
			if _, ok := skip[r.URL.Path]; ok {
				return next(ctx)
			}

			start := time.Now()
			resp := next(ctx)

			return func(w http.ResponseWriter, req *http.Request) error {
				rec := &recordingWriter{ResponseWriter: w}
				err := resp(rec, req)

				level := cfg.Level
				if rec.status() >= http.StatusInternalServerError || err != nil {
					level = slog.LevelError
				}
				cfg.Logger.LogAttrs(ctx, level, "request",
					logger.RequestID(GetRequestID(ctx)),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.Query(r.URL.RawQuery),
					logger.StatusCode(rec.status()),
					logger.BytesOut(rec.written),
					logger.Elapsed(start),
					logger.Error(err),
				)
				return err
			}
		}
	}
}

// recordingWriter captures the status code and byte count of a response.
type recordingWriter struct {
	http.ResponseWriter
	code    int
	written int64
}

func (w *recordingWriter) WriteHeader(code int) {
	if w.code == 0 {
		w.code = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	if w.code == 0 {
		w.code = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// status reports the recorded status, defaulting to 200 when the handler
// wrote a body without an explicit WriteHeader and to 0 when nothing was
// written at all.
func (w *recordingWriter) status() int {
	return w.code
}
