package serve

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// maxPathLength is the ceiling for decoded request paths. Longer paths are
// rejected as malformed before touching the filesystem.
const maxPathLength = 4096

type targetKind int

const (
	targetNotFound targetKind = iota
	targetFile
	targetDir
	targetMalformed
	targetForbidden
)

// resolved is the outcome of path resolution. It is computed fresh for every
// request; the underlying filesystem may change between requests.
type resolved struct {
	kind targetKind
	path string
	info fs.FileInfo
	err  error // stat error behind a targetNotFound, for error rendering
}

// resolve maps a request path to a filesystem target below the root.
// A non-nil error return is an unexpected I/O fault; expected conditions
// (missing file, traversal attempt, bad encoding) come back in the result.
func (e *Engine) resolve(upath string) (resolved, error) {
	decoded, err := url.PathUnescape(upath)
	if err != nil {
		return resolved{kind: targetMalformed}, nil
	}
	if strings.ContainsRune(decoded, 0) || len(decoded) > maxPathLength {
		return resolved{kind: targetMalformed}, nil
	}

	segs, ok := splitPath(decoded)
	if !ok {
		// Normalization walked above the root.
		return resolved{kind: targetForbidden}, nil
	}

	if e.cfg.dotfiles != DotfilesAllow {
		for _, seg := range segs {
			if strings.HasPrefix(seg, ".") {
				if e.cfg.dotfiles == DotfilesDeny {
					return resolved{kind: targetForbidden}, nil
				}
				return resolved{kind: targetNotFound, err: fs.ErrNotExist}, nil
			}
		}
	}

	full := filepath.Join(append([]string{e.cfg.root}, segs...)...)
	if full != e.cfg.root && !strings.HasPrefix(full, e.cfg.root+string(filepath.Separator)) {
		return resolved{kind: targetForbidden}, nil
	}

	info, err := os.Stat(full)
	switch {
	case err == nil && info.IsDir():
		return e.resolveIndex(full, info)
	case err == nil && info.Mode().IsRegular():
		return resolved{kind: targetFile, path: full, info: info}, nil
	case err == nil:
		// Sockets, devices and other specials are not served.
		return resolved{kind: targetNotFound, err: fs.ErrNotExist}, nil
	case isNotFound(err):
		return e.resolveExtensions(full, err)
	default:
		return resolved{}, fmt.Errorf("stat %s: %w", full, err)
	}
}

// resolveIndex tries the configured index names inside a directory, in order.
// Index candidates must be regular files; a directory named like an index is
// not followed further.
func (e *Engine) resolveIndex(dir string, dirInfo fs.FileInfo) (resolved, error) {
	for _, name := range e.cfg.indexNames {
		cand := filepath.Join(dir, name)
		info, err := os.Stat(cand)
		if err == nil && info.Mode().IsRegular() {
			return resolved{kind: targetFile, path: cand, info: info}, nil
		}
		if err != nil && !isNotFound(err) {
			return resolved{}, fmt.Errorf("stat %s: %w", cand, err)
		}
	}
	return resolved{kind: targetDir, path: dir, info: dirInfo}, nil
}

// resolveExtensions tries the configured extension fallbacks, in order.
func (e *Engine) resolveExtensions(full string, statErr error) (resolved, error) {
	for _, ext := range e.cfg.extensions {
		cand := full + "." + strings.TrimPrefix(ext, ".")
		info, err := os.Stat(cand)
		if err == nil && info.Mode().IsRegular() {
			return resolved{kind: targetFile, path: cand, info: info}, nil
		}
		if err != nil && !isNotFound(err) {
			return resolved{}, fmt.Errorf("stat %s: %w", cand, err)
		}
	}
	return resolved{kind: targetNotFound, err: statErr}, nil
}

// splitPath normalizes "." and ".." segments logically, without touching the
// filesystem. The second return is false when the path attempts to walk
// above the root.
func splitPath(p string) ([]string, bool) {
	segs := make([]string, 0, strings.Count(p, "/")+1)
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
			// skip
		case "..":
			if len(segs) == 0 {
				return nil, false
			}
			segs = segs[:len(segs)-1]
		default:
			segs = append(segs, seg)
		}
	}
	return segs, true
}

// isNotFound reports whether a stat error should resolve to "not found".
// ENOTDIR covers trailing path components below a regular file and
// ENAMETOOLONG covers oversized component names, both of which upstream
// servers treat as a missing resource rather than a fault.
func isNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ENOTDIR) ||
		errors.Is(err, syscall.ENAMETOOLONG)
}
