// Package static provides HTTP handlers for serving static files and
// Single Page Applications on top of the serving engine in core/serve.
//
// All functions return handler.HandlerFunc[C], so they plug into any host
// that understands the handler package's contract:
//
//	// Serve a single file
//	r.Get("/favicon.ico", static.File[*appContext]("./static/favicon.ico"))
//
//	// Serve files from a directory
//	r.Get("/assets/*", static.Dir[*appContext]("./public/assets",
//		static.WithStripPrefix("/assets"),
//	))
//
//	// Serve an SPA with client-side routing
//	r.Get("/*", static.SPA[*appContext]("./dist"))
//
// Engine behavior — index files, extension fallback, dotfile policy,
// caching headers, byte ranges — is configured by forwarding serve options:
//
//	static.Dir[*appContext]("./public",
//		static.WithOptions(
//			serve.WithMaxAge(24*time.Hour),
//			serve.WithImmutable(true),
//		),
//	)
//
// Directory listing is never offered, and every handler inherits the
// engine's path traversal containment. The constructors panic at startup
// when the configured root or file does not exist, so deployment mistakes
// surface immediately rather than as runtime 404s.
package static
