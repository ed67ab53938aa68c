package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/staticway/staticway/core/serve"
	"github.com/staticway/staticway/core/server"
	"github.com/staticway/staticway/pkg/logging"
)

// Config holds the full configuration of the staticway binary. Values come
// from defaults, then environment variables (including a .env file), then
// command line flags, with later sources winning.
type Config struct {
	Server server.Config

	Root      string `env:"STATICWAY_ROOT" envDefault:"./public"`
	LogLevel  string `env:"STATICWAY_LOG_LEVEL" envDefault:"INFO"`
	LogFormat string `env:"STATICWAY_LOG_FORMAT" envDefault:"pretty"`

	Index      []string `env:"STATICWAY_INDEX" envDefault:"index.html"`
	Extensions []string `env:"STATICWAY_EXTENSIONS"`
	MaxAge     string   `env:"STATICWAY_MAX_AGE" envDefault:"0"`
	Immutable  bool     `env:"STATICWAY_IMMUTABLE" envDefault:"false"`
	Dotfiles   string   `env:"STATICWAY_DOTFILES" envDefault:"ignore"`
	Redirect   bool     `env:"STATICWAY_REDIRECT" envDefault:"true"`

	// SPA mode serves a single-page application shell for client routes.
	SPA      bool   `env:"STATICWAY_SPA" envDefault:"false"`
	SPAIndex string `env:"STATICWAY_SPA_INDEX" envDefault:"index.html"`
}

// LoadConfig builds the configuration from a .env file (when present), the
// environment, and the command line.
func LoadConfig(args []string, cwd string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	f := pflag.NewFlagSet("staticway", pflag.ContinueOnError)
	f.Usage = func() {
		fmt.Fprintf(os.Stderr, "Run as %s [options]:\n", filepath.Base(args[0]))
		f.PrintDefaults()
	}

	f.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "listen address")
	f.StringVar(&cfg.Root, "root", cfg.Root, "directory to serve files from")
	f.StringVar(&cfg.LogFormat, "logformat", cfg.LogFormat,
		fmt.Sprintf("log format [%s]", strings.Join(logging.LogFormats, ", ")))
	f.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel,
		fmt.Sprintf("log level [%s]", strings.Join(logging.LogLevels, ", ")))
	f.StringSliceVar(&cfg.Index, "index", cfg.Index, "index file names tried for directory requests")
	f.StringSliceVar(&cfg.Extensions, "ext", cfg.Extensions, "extensions tried when the path resolves to nothing")
	f.StringVar(&cfg.MaxAge, "max-age", cfg.MaxAge, `cache lifetime: "1h", "30d", milliseconds, or "infinity"`)
	f.BoolVar(&cfg.Immutable, "immutable", cfg.Immutable, "add the immutable directive to Cache-Control")
	f.StringVar(&cfg.Dotfiles, "dotfiles", cfg.Dotfiles, "dotfile policy [allow, deny, ignore]")
	f.BoolVar(&cfg.Redirect, "redirect", cfg.Redirect, "redirect directory requests to a trailing slash")
	f.BoolVar(&cfg.SPA, "spa", cfg.SPA, "single-page application mode")
	f.StringVar(&cfg.SPAIndex, "spa-index", cfg.SPAIndex, "application shell served for client routes in SPA mode")

	if err := f.Parse(args[1:]); err != nil {
		return nil, fmt.Errorf("command line parse: %w", err)
	}

	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(cwd, cfg.Root)
	}

	return &cfg, nil
}

// engineOptions translates the file serving part of the config into engine
// options.
func engineOptions(cfg *Config) ([]serve.Option, error) {
	maxAge, err := serve.ParseMaxAge(cfg.MaxAge)
	if err != nil {
		return nil, fmt.Errorf("max-age: %w", err)
	}
	dotfiles, err := serve.ParseDotfilesPolicy(cfg.Dotfiles)
	if err != nil {
		return nil, err
	}

	opts := []serve.Option{
		serve.WithIndex(cfg.Index...),
		serve.WithDotfiles(dotfiles),
		serve.WithRedirect(cfg.Redirect),
		serve.WithMaxAge(maxAge),
		serve.WithImmutable(cfg.Immutable),
	}
	if len(cfg.Extensions) > 0 {
		opts = append(opts, serve.WithExtensions(cfg.Extensions...))
	}
	return opts, nil
}
