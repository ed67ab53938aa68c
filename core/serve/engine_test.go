package serve_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staticway/staticway/core/serve"
)

// newFixtureDir builds the directory tree shared by the engine tests.
func newFixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "todo.txt"), []byte("- groceries"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nums"), []byte("123456789"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".secret"), []byte("hidden"), 0644))

	usersDir := filepath.Join(dir, "users")
	require.NoError(t, os.Mkdir(usersDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(usersDir, "index.html"), []byte("<p>tobi, loki, jane</p>"), 0644))

	docsDir := filepath.Join(dir, "docs")
	require.NoError(t, os.Mkdir(docsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "page.html"), []byte("<h1>docs</h1>"), 0644))

	return dir
}

func newEngine(t *testing.T, dir string, opts ...serve.Option) *serve.Engine {
	t.Helper()
	eng, err := serve.New(dir, opts...)
	require.NoError(t, err)
	return eng
}

// doServe runs a request through Serve and returns the recorder and the
// engine's verdict.
func doServe(eng *serve.Engine, r *http.Request) (*httptest.ResponseRecorder, error) {
	w := httptest.NewRecorder()
	err := eng.Serve(w, r)
	return w, err
}

func TestServeFile(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)
	eng := newEngine(t, dir)

	w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/todo.txt", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "- groceries", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "public, max-age=0", w.Header().Get("Cache-Control"))
	assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
	assert.Equal(t, "11", w.Header().Get("Content-Length"))
	assert.NotEmpty(t, w.Header().Get("ETag"))
	assert.NotEmpty(t, w.Header().Get("Last-Modified"))
}

func TestServeDirectoryIndex(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)
	eng := newEngine(t, dir)

	w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/users/", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>tobi, loki, jane</p>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "html")
}

func TestServeUnknownExtension(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)
	eng := newEngine(t, dir)

	w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/nums", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "123456789", w.Body.String())
}

func TestServeZeroLengthFile(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)
	eng := newEngine(t, dir)

	w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/empty.txt", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("Content-Length"))
	assert.Empty(t, w.Body.String())
}

func TestServeHead(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)
	eng := newEngine(t, dir)

	w, err := doServe(eng, httptest.NewRequest(http.MethodHead, "/todo.txt", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "11", w.Header().Get("Content-Length"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestDirectoryRedirect(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)
	eng := newEngine(t, dir)

	t.Run("adds_trailing_slash", func(t *testing.T) {
		t.Parallel()
		w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/users", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "/users/", w.Header().Get("Location"))
		assert.Contains(t, w.Body.String(), `<a href="/users/">`)
		assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
	})

	t.Run("preserves_query_string", func(t *testing.T) {
		t.Parallel()
		w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/users?page=2", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "/users/?page=2", w.Header().Get("Location"))
	})

	t.Run("never_protocol_relative", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		err := eng.ServePath(w, r, "//users")
		require.NoError(t, err)

		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "/users/", w.Header().Get("Location"))
	})

	t.Run("disabled_falls_through", func(t *testing.T) {
		t.Parallel()
		noRedirect := newEngine(t, dir, serve.WithRedirect(false))
		_, err := doServe(noRedirect, httptest.NewRequest(http.MethodGet, "/users", nil))
		assert.ErrorIs(t, err, serve.ErrNotHandled)
	})

	t.Run("no_index_with_slash_falls_through", func(t *testing.T) {
		t.Parallel()
		// docs/ has no index.html, so the slashed form is a miss.
		_, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/docs/", nil))
		assert.ErrorIs(t, err, serve.ErrNotHandled)
	})
}

func TestFallthroughSignal(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)
	eng := newEngine(t, dir)

	for _, path := range []string{"/missing.txt", "/docs/nope.html", "/.secret"} {
		_, err := doServe(eng, httptest.NewRequest(http.MethodGet, path, nil))
		assert.ErrorIs(t, err, serve.ErrNotHandled, "path %s", path)
	}
}

func TestTerminalErrors(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)
	eng := newEngine(t, dir, serve.WithFallthrough(false))

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()
		w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/missing.txt", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "no such file or directory")
	})

	t.Run("forbidden_traversal", func(t *testing.T) {
		t.Parallel()
		w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/%2e%2e/%2e%2e/etc/passwd", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("malformed_escape_is_not_found", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		require.NoError(t, eng.ServePath(w, r, "/%zz"))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPathTraversalNeverServes(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)
	eng := newEngine(t, dir)

	paths := []string{
		"/../todo.txt",
		"/../../etc/passwd",
		"/%2e%2e/etc/passwd",
		"/%2e%2e/%2e%2e/etc/passwd",
		"/users/%2e%2e/%2e%2e/etc/passwd",
		"/%252e%252e/etc/passwd", // double-encoded stays a literal segment
	}
	for _, p := range paths {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		err := eng.ServePath(w, r, p)
		assert.ErrorIs(t, err, serve.ErrNotHandled, "path %s", p)
		assert.NotEqual(t, http.StatusOK, w.Code, "path %s", p)
	}
}

func TestDotfilesPolicies(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)

	t.Run("ignore_default", func(t *testing.T) {
		t.Parallel()
		eng := newEngine(t, dir, serve.WithFallthrough(false))
		w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/.secret", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("deny", func(t *testing.T) {
		t.Parallel()
		eng := newEngine(t, dir, serve.WithFallthrough(false), serve.WithDotfiles(serve.DotfilesDeny))
		w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/.secret", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("allow", func(t *testing.T) {
		t.Parallel()
		eng := newEngine(t, dir, serve.WithDotfiles(serve.DotfilesAllow))
		w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/.secret", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "hidden", w.Body.String())
	})
}

func TestExtensionFallback(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)
	eng := newEngine(t, dir, serve.WithExtensions("html", "txt"))

	t.Run("first_match_wins", func(t *testing.T) {
		t.Parallel()
		w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/docs/page", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "<h1>docs</h1>", w.Body.String())
	})

	t.Run("later_extension", func(t *testing.T) {
		t.Parallel()
		w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/todo", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "- groceries", w.Body.String())
	})

	t.Run("no_match_falls_through", func(t *testing.T) {
		t.Parallel()
		_, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/nothing", nil))
		assert.ErrorIs(t, err, serve.ErrNotHandled)
	})
}

func TestCustomIndexOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sub := filepath.Join(dir, "app")
	require.NoError(t, os.Mkdir(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "default.htm"), []byte("fallback"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "main.html"), []byte("primary"), 0644))

	eng := newEngine(t, dir, serve.WithIndex("main.html", "default.htm"))

	w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/app/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "primary", w.Body.String())
}

func TestIndexDisabled(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)
	eng := newEngine(t, dir, serve.WithIndex())

	_, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/users/", nil))
	assert.ErrorIs(t, err, serve.ErrNotHandled)
}

func TestMethods(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)

	t.Run("options_fallthrough", func(t *testing.T) {
		t.Parallel()
		eng := newEngine(t, dir)
		_, err := doServe(eng, httptest.NewRequest(http.MethodOptions, "/todo.txt", nil))
		assert.ErrorIs(t, err, serve.ErrNotHandled)
	})

	t.Run("options_terminal_405", func(t *testing.T) {
		t.Parallel()
		eng := newEngine(t, dir, serve.WithFallthrough(false))
		w, err := doServe(eng, httptest.NewRequest(http.MethodOptions, "/todo.txt", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "GET, HEAD", w.Header().Get("Allow"))
	})

	t.Run("post_is_never_handled", func(t *testing.T) {
		t.Parallel()
		for _, eng := range []*serve.Engine{
			newEngine(t, dir),
			newEngine(t, dir, serve.WithFallthrough(false)),
		} {
			_, err := doServe(eng, httptest.NewRequest(http.MethodPost, "/todo.txt", nil))
			assert.ErrorIs(t, err, serve.ErrNotHandled)
		}
	})
}

func TestSetHeadersHook(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)

	var calls int
	eng := newEngine(t, dir, serve.WithSetHeaders(func(h http.Header, path string, info os.FileInfo) {
		calls++
		h.Set("X-Custom", "yes")
	}))

	t.Run("invoked_on_send", func(t *testing.T) {
		w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/todo.txt", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "yes", w.Header().Get("X-Custom"))
		assert.Equal(t, 1, calls)
	})

	t.Run("skipped_on_not_modified", func(t *testing.T) {
		first, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/todo.txt", nil))
		require.NoError(t, err)
		before := calls

		r := httptest.NewRequest(http.MethodGet, "/todo.txt", nil)
		r.Header.Set("If-None-Match", first.Header().Get("ETag"))
		w, err := doServe(eng, r)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotModified, w.Code)
		assert.Empty(t, w.Header().Get("X-Custom"))
		assert.Equal(t, before, calls)
	})

	t.Run("skipped_on_redirect", func(t *testing.T) {
		before := calls
		w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/users", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Empty(t, w.Header().Get("X-Custom"))
		assert.Equal(t, before, calls)
	})
}

func TestCacheControlConfig(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)

	tests := []struct {
		name string
		opts []serve.Option
		want string
	}{
		{
			name: "default_zero",
			want: "public, max-age=0",
		},
		{
			name: "one_hour",
			opts: []serve.Option{serve.WithMaxAge(time.Hour)},
			want: "public, max-age=3600",
		},
		{
			name: "immutable",
			opts: []serve.Option{serve.WithMaxAge(time.Hour), serve.WithImmutable(true)},
			want: "public, max-age=3600, immutable",
		},
		{
			name: "immutable_ignored_at_zero",
			opts: []serve.Option{serve.WithImmutable(true)},
			want: "public, max-age=0",
		},
		{
			name: "infinity_clamps_to_one_year",
			opts: []serve.Option{serve.WithMaxAge(serve.MaxAgeCap)},
			want: "public, max-age=31536000",
		},
		{
			name: "over_cap_clamps",
			opts: []serve.Option{serve.WithMaxAge(10 * 365 * 24 * time.Hour)},
			want: "public, max-age=31536000",
		},
		{
			name: "disabled",
			opts: []serve.Option{serve.WithCacheControl(false)},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			eng := newEngine(t, dir, tt.opts...)
			w, err := doServe(eng, httptest.NewRequest(http.MethodGet, "/todo.txt", nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Cache-Control"))
		})
	}
}

func TestAcceptRangesDisabled(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)
	eng := newEngine(t, dir, serve.WithAcceptRanges(false))

	r := httptest.NewRequest(http.MethodGet, "/nums", nil)
	r.Header.Set("Range", "bytes=2-5")
	w, err := doServe(eng, r)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Accept-Ranges"))
	assert.Equal(t, "123456789", w.Body.String())
}

func TestHandlerComposition(t *testing.T) {
	t.Parallel()

	dir := newFixtureDir(t)
	eng := newEngine(t, dir)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := eng.Handler(next)

	t.Run("hit_serves_file", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/todo.txt", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "- groceries", w.Body.String())
	})

	t.Run("miss_falls_through_to_next", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, http.StatusTeapot, w.Code)
	})

	t.Run("standalone_renders_404", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		eng.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	t.Run("empty_root", func(t *testing.T) {
		t.Parallel()
		_, err := serve.New("")
		assert.ErrorIs(t, err, serve.ErrEmptyRoot)
	})

	t.Run("missing_root", func(t *testing.T) {
		t.Parallel()
		_, err := serve.New(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("file_root", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		f := filepath.Join(dir, "f.txt")
		require.NoError(t, os.WriteFile(f, []byte("x"), 0644))
		_, err := serve.New(f)
		assert.ErrorIs(t, err, serve.ErrRootNotDirectory)
	})

	t.Run("negative_max_age", func(t *testing.T) {
		t.Parallel()
		_, err := serve.New(t.TempDir(), serve.WithMaxAge(-time.Second))
		assert.ErrorIs(t, err, serve.ErrInvalidMaxAge)
	})
}
