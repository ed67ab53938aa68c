package serve

import "errors"

var (
	// ErrNotHandled is the fallthrough signal. It is returned by Serve and
	// ServePath when the engine declines a request so an outer router can
	// apply its own terminal handling.
	ErrNotHandled = errors.New("request not handled")

	// Construction errors
	ErrEmptyRoot        = errors.New("root directory is required")
	ErrRootNotDirectory = errors.New("root path is not a directory")
	ErrInvalidMaxAge    = errors.New("invalid max-age value")
	ErrInvalidDotfiles  = errors.New("invalid dotfiles policy")
)
