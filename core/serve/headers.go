package serve

import (
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
)

// computeETag derives a weak validator from file size and modification
// time. It is stable across requests for the same file state and changes
// whenever either input changes.
func computeETag(info fs.FileInfo) string {
	return fmt.Sprintf(`W/"%x-%x"`, info.Size(), info.ModTime().UnixMilli())
}

// contentType maps a file extension to a MIME type. Unknown extensions
// default to application/octet-stream.
func contentType(path string) string {
	if ctype := mime.TypeByExtension(filepath.Ext(path)); ctype != "" {
		return ctype
	}
	return "application/octet-stream"
}

// cacheControlValue formats the Cache-Control header for the configured
// max-age, appending immutable only when max-age is positive.
func (e *Engine) cacheControlValue() string {
	secs := int64(e.cfg.maxAge.Seconds())
	v := "public, max-age=" + strconv.FormatInt(secs, 10)
	if e.cfg.immutable && secs > 0 {
		v += ", immutable"
	}
	return v
}

// setCacheHeaders emits the validators and caching policy. These headers
// accompany both full sends and 304 responses.
func (e *Engine) setCacheHeaders(h http.Header, etag string, info fs.FileInfo) {
	if e.cfg.lastModified {
		h.Set("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
	}
	if etag != "" {
		h.Set("ETag", etag)
	}
	if e.cfg.cacheControl {
		h.Set("Cache-Control", e.cacheControlValue())
	}
}

// setContentHeaders emits the content headers for a send. Ordering follows
// the dependency chain: content type first, then validators and caching,
// then Accept-Ranges so range handling can rely on everything before it.
func (e *Engine) setContentHeaders(h http.Header, path, etag string, info fs.FileInfo) {
	h.Set("Content-Type", contentType(path))
	e.setCacheHeaders(h, etag, info)
	if e.cfg.acceptRanges {
		h.Set("Accept-Ranges", "bytes")
	}
}
