// Package serve implements a static-asset serving engine: it resolves a
// request path to a file below a root directory, validates the request
// against HTTP caching and range semantics, and streams the response.
//
// The engine deliberately owns only the hard part of static serving. The
// host HTTP framework keeps routing, connection handling and request
// parsing; it hands the engine a request and gets back either a written
// response or the ErrNotHandled signal saying "continue routing".
//
// # Features
//
//   - Path traversal containment below an absolute root, including
//     percent-encoded and doubly-encoded traversal sequences
//   - Index file resolution for directory requests (ordered candidates)
//   - Extension fallback for extensionless URLs (ordered suffixes)
//   - Conditional requests: If-Match, If-None-Match, If-Modified-Since,
//     If-Unmodified-Since, with weak ETags derived from size and mtime
//   - Single byte-range requests with If-Range validation
//   - Trailing-slash redirects for directories, with an escaped HTML body
//   - Dotfile policies: allow, deny or ignore
//   - Fallthrough mode for composing with an outer router
//
// # Basic Usage
//
// Standalone, serving a directory on the default mux:
//
//	eng, err := serve.New("./public")
//	if err != nil {
//		log.Fatal(err)
//	}
//	http.Handle("/", eng)
//
// Composed with a router, falling through to its 404 handling:
//
//	eng, err := serve.New("./public",
//		serve.WithMaxAge(time.Hour),
//		serve.WithExtensions("html"),
//	)
//	...
//	r.Handle("/*", eng.Handler(http.HandlerFunc(apiNotFound)))
//
// Lower-level integrations call Serve or ServePath directly and branch on
// ErrNotHandled themselves.
//
// # Caching
//
// ETags are weak validators of the form W/"<size>-<mtime>"; they change
// whenever file size or modification time changes and cost one stat to
// compute. Cache-Control defaults to "public, max-age=0"; WithMaxAge and
// WithImmutable adjust the policy, and ParseMaxAge converts configuration
// strings ("30d", "1h", milliseconds, "infinity") into durations at
// construction time so bad input fails fast.
//
// # Concurrency
//
// An Engine is immutable after New and safe for concurrent use. Nothing is
// cached across requests: every request stats the filesystem fresh, so
// staleness windows are bounded by a single request's duration.
package serve
