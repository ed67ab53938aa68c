package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/staticway/staticway/core/handler"
	"github.com/staticway/staticway/core/health"
	"github.com/staticway/staticway/core/logger"
	"github.com/staticway/staticway/core/serve"
	"github.com/staticway/staticway/core/server"
	"github.com/staticway/staticway/core/static"
	"github.com/staticway/staticway/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("cannot determine working directory", logger.Error(err))
		os.Exit(1)
	}

	cfg, err := LoadConfig(os.Args, cwd)
	if err != nil {
		slog.Error("configuration error", logger.Error(err))
		os.Exit(1)
	}

	if err := logging.InitSlog(cfg.LogLevel, cfg.LogFormat); err != nil {
		slog.Error("logging setup failed", logger.Error(err))
		os.Exit(1)
	}
	log := slog.Default()

	h, err := buildHandler(cfg, log)
	if err != nil {
		log.Error("cannot serve root", logger.Component("serve"), logger.Error(err))
		os.Exit(1)
	}

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log.With(logger.Component("server"))))
	if err != nil {
		log.Error("invalid server configuration", logger.Component("server"), logger.Error(err))
		os.Exit(1)
	}

	log.Info("serving files", "root", cfg.Root, "addr", srv.Addr(), "spa", cfg.SPA)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(srv.Run(ctx, h))

	if err := eg.Wait(); err != nil {
		log.Error("server failed", logger.Component("server"), logger.Error(err))
		os.Exit(1)
	}

	log.Info("stopped")
}

// buildHandler assembles the HTTP stack: request IDs, access logging,
// health endpoints, and the file serving engine in either plain or SPA mode.
func buildHandler(cfg *Config, log *slog.Logger) (http.Handler, error) {
	opts, err := engineOptions(cfg)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(logging.AccessLog(log.With(logger.Component("http.request"))))

	factory := func(w http.ResponseWriter, req *http.Request) handler.Context {
		return handler.NewContext(w, req, nil)
	}

	r.Get("/healthz", handler.Adapt(health.Liveness[handler.Context], factory, nil).ServeHTTP)
	r.Get("/readyz", handler.Adapt(
		health.Readiness[handler.Context](log, serve.Healthcheck(cfg.Root)),
		factory, nil,
	).ServeHTTP)

	if cfg.SPA {
		spa := static.SPA[handler.Context](cfg.Root,
			static.WithSPAIndex(cfg.SPAIndex),
			static.WithSPAOptions(opts...),
		)
		r.Handle("/*", handler.Adapt(spa, factory,
			func(ctx handler.Context, err error) {
				log.Error("request failed", logger.Component("spa"), logger.Error(err))
				http.Error(ctx.ResponseWriter(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			},
		))
		return r, nil
	}

	eng, err := serve.New(cfg.Root, opts...)
	if err != nil {
		return nil, err
	}
	eng.SetLogger(log.With(logger.Component("serve")))
	r.Handle("/*", eng)

	return r, nil
}
