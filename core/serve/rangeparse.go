package serve

import (
	"strconv"
	"strings"
)

type rangeKind int

const (
	// rangeNone means the full representation is served with status 200.
	// Absent, malformed and multi-range headers all degrade to this.
	rangeNone rangeKind = iota
	rangeSatisfiable
	rangeUnsatisfiable
)

// byteRange is a normalized byte window with 0 <= start and
// start+length <= size.
type byteRange struct {
	start  int64
	length int64
}

// parseRange parses a single-range Range header against the actual file
// size. Only the "bytes" unit and the start-end, start- and -suffix forms
// are supported; anything else is ignored rather than rejected.
func parseRange(header string, size int64) (rangeKind, byteRange) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return rangeNone, byteRange{}
	}
	spec = strings.TrimSpace(spec)
	if strings.Contains(spec, ",") {
		// Multi-range requests are not serviced; fall back to a full send.
		return rangeNone, byteRange{}
	}

	dash := strings.IndexByte(spec, '-')
	if dash < 0 {
		return rangeNone, byteRange{}
	}
	startStr, endStr := spec[:dash], spec[dash+1:]

	if startStr == "" {
		// Suffix form: last N bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return rangeNone, byteRange{}
		}
		if n <= 0 || size == 0 {
			return rangeUnsatisfiable, byteRange{}
		}
		start := size - n
		if start < 0 {
			start = 0
		}
		return rangeSatisfiable, byteRange{start: start, length: size - start}
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return rangeNone, byteRange{}
	}
	if start >= size {
		// Covers empty files as well: any start is beyond the last byte.
		return rangeUnsatisfiable, byteRange{}
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return rangeNone, byteRange{}
		}
		if end > size-1 {
			end = size - 1
		}
		if start > end {
			return rangeNone, byteRange{}
		}
	}

	return rangeSatisfiable, byteRange{start: start, length: end - start + 1}
}
