package static

import (
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/staticway/staticway/core/handler"
	"github.com/staticway/staticway/core/serve"
)

// spaConfig holds configuration options for Single Page Application serving.
type spaConfig struct {
	indexFile    string
	excludePaths []string
	engineOpts   []serve.Option
}

// SPAOption is a functional option type for configuring SPA serving behavior.
type SPAOption func(*spaConfig)

// WithSPAIndex sets the index file for the SPA (default: "index.html").
func WithSPAIndex(indexFile string) SPAOption {
	return func(c *spaConfig) {
		c.indexFile = indexFile
	}
}

// WithSPAExcludePaths sets paths that should be excluded from SPA handling.
// These paths return 404 instead of falling back to the index file.
// Default excluded paths are "/api" and "/ws".
func WithSPAExcludePaths(paths ...string) SPAOption {
	return func(c *spaConfig) {
		c.excludePaths = paths
	}
}

// WithSPAOptions forwards engine options to the underlying serve.Engine.
func WithSPAOptions(opts ...serve.Option) SPAOption {
	return func(c *spaConfig) {
		c.engineOpts = append(c.engineOpts, opts...)
	}
}

// SPA creates a handler for Single Page Applications with client-side
// routing: existing files are served normally, everything else falls back
// to the index file. Subdirectory index files are not served and directory
// redirects are disabled, so deep links always land on the application
// shell. Panics at startup if the root or the index file doesn't exist.
func SPA[C handler.Context](root string, opts ...SPAOption) handler.HandlerFunc[C] {
	config := &spaConfig{
		indexFile:    "index.html",
		excludePaths: []string{"/api", "/ws"},
	}
	for _, opt := range opts {
		opt(config)
	}

	// Fallback handling needs the engine in fallthrough mode with the
	// directory features turned off.
	engineOpts := append(config.engineOpts,
		serve.WithFallthrough(true),
		serve.WithRedirect(false),
		serve.WithIndex(),
	)
	eng, err := serve.New(root, engineOpts...)
	if err != nil {
		panic("static.SPA: " + err.Error())
	}

	indexPath := filepath.Join(eng.Root(), config.indexFile)
	if info, err := os.Stat(indexPath); err != nil || info.IsDir() {
		panic("static.SPA: index file does not exist: " + indexPath)
	}

	return func(ctx C) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			urlPath := path.Clean(r.URL.Path)
			for _, exclude := range config.excludePaths {
				if urlPath == exclude || strings.HasPrefix(urlPath, exclude+"/") {
					http.NotFound(w, r)
					return nil
				}
			}

			err := eng.ServePath(w, r, r.URL.EscapedPath())
			if !errors.Is(err, serve.ErrNotHandled) {
				return err
			}

			// Client-side route: serve the application shell.
			err = eng.ServePath(w, r, "/"+config.indexFile)
			if errors.Is(err, serve.ErrNotHandled) {
				http.NotFound(w, r)
				return nil
			}
			return err
		}
	}
}
