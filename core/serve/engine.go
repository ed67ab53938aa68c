package serve

import (
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Engine resolves request paths below a root directory and streams file
// responses with HTTP caching and range semantics. An Engine is immutable
// after construction and safe for concurrent use; the only shared resource
// is the filesystem, which is treated as read-only and externally mutable.
type Engine struct {
	cfg config
	log *slog.Logger
}

// New creates an Engine rooted at the given directory. The root must exist
// and be a directory; it is resolved to an absolute path once so later
// containment checks compare against a fixed prefix.
func New(root string, opts ...Option) (*Engine, error) {
	if root == "" {
		return nil, ErrEmptyRoot
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrRootNotDirectory, root)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.root = abs

	if cfg.maxAge < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMaxAge, cfg.maxAge)
	}
	if cfg.maxAge > MaxAgeCap {
		cfg.maxAge = MaxAgeCap
	}

	return &Engine{
		cfg: cfg,
		log: slog.New(slog.DiscardHandler),
	}, nil
}

// SetLogger replaces the engine's logger, which is discarded by default.
// It must be called before the engine starts serving requests.
func (e *Engine) SetLogger(log *slog.Logger) {
	if log != nil {
		e.log = log
	}
}

// Root returns the absolute root directory the engine serves from.
func (e *Engine) Root() string {
	return e.cfg.root
}

// Serve handles a request using the request URL's path. It returns
// ErrNotHandled when the engine declines the request (the fallthrough
// signal), a non-nil error on an unexpected I/O fault, and nil once a
// response has been written.
func (e *Engine) Serve(w http.ResponseWriter, r *http.Request) error {
	return e.ServePath(w, r, r.URL.EscapedPath())
}

// ServePath is Serve with a caller-supplied request path, for hosts that
// rewrite paths before resolution. The path may be raw or percent-decoded;
// the engine performs its own decoding.
func (e *Engine) ServePath(w http.ResponseWriter, r *http.Request, upath string) error {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	case http.MethodOptions:
		if e.cfg.fallThrough {
			return ErrNotHandled
		}
		w.Header().Set("Allow", "GET, HEAD")
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return nil
	default:
		// Only GET and HEAD semantics are claimed; the host router owns
		// everything else.
		return ErrNotHandled
	}

	res, err := e.resolve(upath)
	if err != nil {
		return err
	}

	switch res.kind {
	case targetMalformed:
		if e.cfg.fallThrough {
			return ErrNotHandled
		}
		e.notFound(w, upath, nil)
		return nil

	case targetForbidden:
		if e.cfg.fallThrough {
			return ErrNotHandled
		}
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil

	case targetNotFound:
		if e.cfg.fallThrough {
			return ErrNotHandled
		}
		e.notFound(w, upath, res.err)
		return nil

	case targetDir:
		if e.cfg.redirect && !strings.HasSuffix(upath, "/") {
			e.redirectDir(w, r, upath)
			return nil
		}
		// A directory with no usable index behaves like a missing file.
		if e.cfg.fallThrough {
			return ErrNotHandled
		}
		e.notFound(w, upath, nil)
		return nil

	default:
		return e.sendFile(w, r, res)
	}
}

// notFound renders the engine's own 404 with a filesystem-flavored message,
// keeping it distinguishable from the forbidden case.
func (e *Engine) notFound(w http.ResponseWriter, upath string, err error) {
	msg := upath + ": no such file or directory"
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		msg = upath + ": " + err.Error()
	}
	http.Error(w, msg, http.StatusNotFound)
}

// redirectDir emits the trailing-slash redirect for a directory request.
// The Location is the original (still encoded) path plus a slash with the
// query string preserved, and the body carries an escaped link for clients
// that ignore the header.
func (e *Engine) redirectDir(w http.ResponseWriter, r *http.Request, upath string) {
	loc := upath + "/"
	// A leading-slash request path must never turn into a
	// protocol-relative "//host" location.
	if len(loc) > 1 && loc[0] == '/' && loc[1] == '/' {
		loc = "/" + strings.TrimLeft(loc, "/")
	}
	if r.URL.RawQuery != "" {
		loc += "?" + r.URL.RawQuery
	}

	body := redirectBody(loc)
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Set("Content-Security-Policy", "default-src 'self'")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Location", loc)
	w.WriteHeader(http.StatusMovedPermanently)
	if r.Method != http.MethodHead {
		_, _ = io.WriteString(w, body)
	}
}

func redirectBody(loc string) string {
	esc := html.EscapeString(loc)
	return "<!DOCTYPE html>\n" +
		"<html lang=\"en\">\n" +
		"<head>\n<meta charset=\"utf-8\">\n<title>Redirecting</title>\n</head>\n" +
		"<body>\n<p>Redirecting to <a href=\"" + esc + "\">" + esc + "</a></p>\n</body>\n" +
		"</html>\n"
}

// sendFile runs the conditional and range checks for a resolved file and
// streams the selected byte window.
func (e *Engine) sendFile(w http.ResponseWriter, r *http.Request, res resolved) error {
	h := w.Header()

	var etag string
	if e.cfg.etag {
		etag = computeETag(res.info)
	}

	switch checkPreconditions(r, etag, res.info.ModTime()) {
	case condPreconditionFailed:
		w.WriteHeader(http.StatusPreconditionFailed)
		return nil
	case condNotModified:
		e.setCacheHeaders(h, etag, res.info)
		if e.cfg.acceptRanges {
			h.Set("Accept-Ranges", "bytes")
		}
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	e.setContentHeaders(h, res.path, etag, res.info)

	size := res.info.Size()
	start, length := int64(0), size
	status := http.StatusOK

	if e.cfg.acceptRanges && ifRangeValid(r, etag, res.info.ModTime()) {
		switch kind, br := parseRange(r.Header.Get("Range"), size); kind {
		case rangeUnsatisfiable:
			h.Set("Content-Range", fmt.Sprintf("bytes */%d", size))
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			return nil
		case rangeSatisfiable:
			status = http.StatusPartialContent
			start, length = br.start, br.length
			h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, start+length-1, size))
		}
	}

	h.Set("Content-Length", strconv.FormatInt(length, 10))

	// HEAD and empty windows need no file handle at all.
	if r.Method == http.MethodHead || length == 0 {
		if e.cfg.setHeaders != nil {
			e.cfg.setHeaders(h, res.path, res.info)
		}
		w.WriteHeader(status)
		return nil
	}

	f, err := os.Open(res.path)
	if err != nil {
		// The file vanished between stat and open.
		if isNotFound(err) {
			if e.cfg.fallThrough {
				clearResourceHeaders(h)
				return ErrNotHandled
			}
			clearResourceHeaders(h)
			e.notFound(w, res.path, nil)
			return nil
		}
		return fmt.Errorf("open %s: %w", res.path, err)
	}
	defer func() { _ = f.Close() }()

	if start > 0 {
		if _, err := f.Seek(start, io.SeekStart); err != nil {
			return fmt.Errorf("seek %s: %w", res.path, err)
		}
	}

	if e.cfg.setHeaders != nil {
		e.cfg.setHeaders(h, res.path, res.info)
	}
	w.WriteHeader(status)

	if _, err := io.CopyN(w, f, length); err != nil {
		// Client disconnects land here; the handle is released by the
		// deferred close and there is nothing left to send.
		e.log.Debug("body stream aborted", "path", res.path, "error", err)
	}
	return nil
}

// clearResourceHeaders drops headers already staged for a send that will
// not happen.
func clearResourceHeaders(h http.Header) {
	for _, k := range []string{
		"Content-Type", "Content-Length", "Last-Modified",
		"ETag", "Cache-Control", "Accept-Ranges",
	} {
		h.Del(k)
	}
}

// Handler adapts the engine to net/http. ErrNotHandled falls through to
// next (or a plain 404 when next is nil); I/O faults render a 500 unless
// the response has already started.
func (e *Engine) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		err := e.Serve(sw, r)
		switch {
		case err == nil:
		case errors.Is(err, ErrNotHandled):
			if next != nil {
				next.ServeHTTP(w, r)
			} else {
				http.NotFound(w, r)
			}
		default:
			e.log.Error("serve failed", "path", r.URL.Path, "error", err)
			if !sw.written {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}
	})
}

// ServeHTTP serves requests in standalone mode, with no next handler.
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.Handler(nil).ServeHTTP(w, r)
}

// statusWriter tracks whether the response has started, so the net/http
// adapter never double-writes a status line.
type statusWriter struct {
	http.ResponseWriter
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	w.written = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}
