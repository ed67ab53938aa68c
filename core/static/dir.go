package static

import (
	"errors"
	"net/http"
	"strings"

	"github.com/staticway/staticway/core/handler"
	"github.com/staticway/staticway/core/serve"
)

// dirConfig holds configuration for directory serving.
type dirConfig struct {
	stripPrefix     string
	notFoundHandler func(w http.ResponseWriter, r *http.Request) error
	engineOpts      []serve.Option
}

// DirOption configures directory serving behavior.
type DirOption func(*dirConfig)

// WithStripPrefix removes the given prefix from the URL path before
// resolution. Useful when mounting static files under a route prefix.
func WithStripPrefix(prefix string) DirOption {
	return func(c *dirConfig) {
		c.stripPrefix = prefix
	}
}

// WithNotFound sets a custom handler invoked when the engine declines the
// request. This allows custom 404 pages or fallback behavior.
func WithNotFound(h func(w http.ResponseWriter, r *http.Request) error) DirOption {
	return func(c *dirConfig) {
		c.notFoundHandler = h
	}
}

// WithOptions forwards engine options (index names, extensions, caching,
// dotfiles policy and so on) to the underlying serve.Engine.
func WithOptions(opts ...serve.Option) DirOption {
	return func(c *dirConfig) {
		c.engineOpts = append(c.engineOpts, opts...)
	}
}

// Dir creates a handler that serves files from a directory through the
// serving engine: index resolution, extension fallback, conditional and
// range requests, traversal containment. Directory listing is never
// offered. Panics at startup if the directory doesn't exist.
func Dir[C handler.Context](root string, opts ...DirOption) handler.HandlerFunc[C] {
	config := &dirConfig{}
	for _, opt := range opts {
		opt(config)
	}

	eng, err := serve.New(root, config.engineOpts...)
	if err != nil {
		panic("static.Dir: " + err.Error())
	}

	return func(ctx C) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			upath := r.URL.EscapedPath()
			if config.stripPrefix != "" {
				upath = strings.TrimPrefix(upath, config.stripPrefix)
				if upath == "" {
					upath = "/"
				}
			}

			err := eng.ServePath(w, r, upath)
			if errors.Is(err, serve.ErrNotHandled) {
				if config.notFoundHandler != nil {
					return config.notFoundHandler(w, r)
				}
				http.NotFound(w, r)
				return nil
			}
			return err
		}
	}
}
