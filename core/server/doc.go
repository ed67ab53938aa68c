// Package server wraps http.Server with graceful shutdown, environment-based
// configuration, and hardened TLS defaults.
//
// Basic usage:
//
//	srv := server.New(":8080",
//		server.WithLogger(log),
//		server.WithShutdownTimeout(30*time.Second),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//	if err := g.Wait(); err != nil {
//		log.Error("server failed", "error", err)
//	}
//
// Configuration can also come from the environment via Config and
// NewFromConfig; TLS turns on when both SERVER_TLS_CERT_FILE and
// SERVER_TLS_KEY_FILE are set.
package server
