package serve

import (
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MaxAgeCap is the upper bound for Cache-Control max-age. Larger values,
// including "infinity", clamp to one year.
const MaxAgeCap = 365 * 24 * time.Hour

// DotfilesPolicy controls how path segments starting with a dot are treated.
type DotfilesPolicy int

const (
	// DotfilesIgnore pretends dotfiles do not exist and resolves them as
	// not found. This is the default.
	DotfilesIgnore DotfilesPolicy = iota

	// DotfilesAllow serves dotfiles like any other file.
	DotfilesAllow

	// DotfilesDeny rejects dotfile requests as forbidden.
	DotfilesDeny
)

// ParseDotfilesPolicy parses a policy name ("allow", "deny" or "ignore").
func ParseDotfilesPolicy(s string) (DotfilesPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allow":
		return DotfilesAllow, nil
	case "deny":
		return DotfilesDeny, nil
	case "ignore", "":
		return DotfilesIgnore, nil
	default:
		return DotfilesIgnore, fmt.Errorf("%w: %q", ErrInvalidDotfiles, s)
	}
}

// SetHeadersFunc customizes response headers. It is invoked exactly once,
// immediately before a 200 or 206 send, and never on redirects, conditional
// short-circuits or error responses. It may override any header already set.
type SetHeadersFunc func(h http.Header, path string, info fs.FileInfo)

// config is the immutable per-engine configuration. It is resolved once in
// New and never mutated afterwards.
type config struct {
	root         string
	indexNames   []string
	extensions   []string
	dotfiles     DotfilesPolicy
	fallThrough  bool
	redirect     bool
	acceptRanges bool
	cacheControl bool
	maxAge       time.Duration
	immutable    bool
	etag         bool
	lastModified bool
	setHeaders   SetHeadersFunc
}

func defaultConfig() config {
	return config{
		indexNames:   []string{"index.html"},
		dotfiles:     DotfilesIgnore,
		fallThrough:  true,
		redirect:     true,
		acceptRanges: true,
		cacheControl: true,
		etag:         true,
		lastModified: true,
	}
}

// Option configures an Engine at construction time.
type Option func(*config)

// WithIndex sets the ordered list of index file names tried when a directory
// is requested. Passing no names disables index serving.
func WithIndex(names ...string) Option {
	return func(c *config) {
		c.indexNames = names
	}
}

// WithExtensions sets the ordered list of extension fallbacks tried when the
// exact path has no match, e.g. WithExtensions("html", "htm").
func WithExtensions(exts ...string) Option {
	return func(c *config) {
		c.extensions = exts
	}
}

// WithDotfiles sets the dotfiles policy.
func WithDotfiles(policy DotfilesPolicy) Option {
	return func(c *config) {
		c.dotfiles = policy
	}
}

// WithFallthrough controls whether non-success conditions produce the
// ErrNotHandled signal (true, the default) or terminal error responses.
func WithFallthrough(enabled bool) Option {
	return func(c *config) {
		c.fallThrough = enabled
	}
}

// WithRedirect controls the trailing-slash redirect for directory requests.
func WithRedirect(enabled bool) Option {
	return func(c *config) {
		c.redirect = enabled
	}
}

// WithAcceptRanges controls byte-range support and the Accept-Ranges header.
func WithAcceptRanges(enabled bool) Option {
	return func(c *config) {
		c.acceptRanges = enabled
	}
}

// WithCacheControl controls whether the Cache-Control header is emitted.
func WithCacheControl(enabled bool) Option {
	return func(c *config) {
		c.cacheControl = enabled
	}
}

// WithMaxAge sets the Cache-Control max-age. Values above MaxAgeCap clamp
// to MaxAgeCap; negative values fail engine construction.
func WithMaxAge(d time.Duration) Option {
	return func(c *config) {
		c.maxAge = d
	}
}

// WithImmutable appends the immutable directive to Cache-Control when
// max-age is positive.
func WithImmutable(enabled bool) Option {
	return func(c *config) {
		c.immutable = enabled
	}
}

// WithETag controls ETag generation.
func WithETag(enabled bool) Option {
	return func(c *config) {
		c.etag = enabled
	}
}

// WithLastModified controls the Last-Modified header.
func WithLastModified(enabled bool) Option {
	return func(c *config) {
		c.lastModified = enabled
	}
}

// WithSetHeaders installs a header customization hook. See SetHeadersFunc
// for the invocation contract.
func WithSetHeaders(fn SetHeadersFunc) Option {
	return func(c *config) {
		c.setHeaders = fn
	}
}

// ParseMaxAge parses a max-age configuration string into a duration.
// Accepted forms: a Go duration ("1h", "90s"), a day count ("30d"), a bare
// integer interpreted as milliseconds ("60000"), and "infinity". The result
// clamps to MaxAgeCap; negative or unparsable input is an error.
func ParseMaxAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidMaxAge)
	}

	var d time.Duration
	switch {
	case strings.EqualFold(s, "infinity"):
		return MaxAgeCap, nil
	case isInteger(s):
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMaxAge, s)
		}
		d = time.Duration(ms) * time.Millisecond
	case strings.HasSuffix(s, "d"):
		days, err := strconv.ParseInt(strings.TrimSuffix(s, "d"), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMaxAge, s)
		}
		d = time.Duration(days) * 24 * time.Hour
	default:
		var err error
		d, err = time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMaxAge, s)
		}
	}

	if d < 0 {
		return 0, fmt.Errorf("%w: negative duration %q", ErrInvalidMaxAge, s)
	}
	if d > MaxAgeCap {
		d = MaxAgeCap
	}
	return d, nil
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	start := 0
	if s[0] == '-' || s[0] == '+' {
		start = 1
	}
	if start == len(s) {
		return false
	}
	for i := start; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
