package serve

import (
	"net/http"
	"strings"
	"time"
)

type precondition int

const (
	condProceed precondition = iota
	condNotModified
	condPreconditionFailed
)

// checkPreconditions evaluates the If-Match family against the current file
// state. Precedence follows RFC 9110: If-Match before If-Unmodified-Since,
// If-None-Match before If-Modified-Since, and the date checks are skipped
// when the corresponding entity-tag check is present.
func checkPreconditions(r *http.Request, etag string, modTime time.Time) precondition {
	modTime = modTime.Truncate(time.Second)

	if im := r.Header.Get("If-Match"); im != "" {
		if !etagMatch(im, etag) {
			return condPreconditionFailed
		}
	} else if ius := r.Header.Get("If-Unmodified-Since"); ius != "" {
		if t, err := http.ParseTime(ius); err == nil && modTime.After(t) {
			return condPreconditionFailed
		}
	}

	if inm := r.Header.Get("If-None-Match"); inm != "" {
		if etagMatch(inm, etag) {
			return condNotModified
		}
	} else if ims := r.Header.Get("If-Modified-Since"); ims != "" {
		if t, err := http.ParseTime(ims); err == nil && !modTime.After(t) {
			return condNotModified
		}
	}

	return condProceed
}

// etagMatch reports whether any entity-tag in a comma-separated header list
// matches the current tag. "*" matches any existing resource. Comparison
// ignores the weak prefix since the engine only produces weak validators.
func etagMatch(header, current string) bool {
	current = strings.TrimPrefix(current, "W/")
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" {
			return true
		}
		if current != "" && strings.TrimPrefix(tag, "W/") == current {
			return true
		}
	}
	return false
}

// ifRangeValid reports whether a Range header may be honored. Without an
// If-Range header the answer is always yes. With one, the validator must
// match the current entity-tag or the file must be unchanged since the
// given date; otherwise the full representation is served.
func ifRangeValid(r *http.Request, etag string, modTime time.Time) bool {
	ir := r.Header.Get("If-Range")
	if ir == "" {
		return true
	}
	if strings.HasPrefix(ir, `"`) || strings.HasPrefix(ir, `W/"`) {
		cur := strings.TrimPrefix(etag, "W/")
		return cur != "" && strings.TrimPrefix(ir, "W/") == cur
	}
	t, err := http.ParseTime(ir)
	if err != nil {
		return false
	}
	return !modTime.Truncate(time.Second).After(t)
}
