package errors

import "errors"

// Standard API-related errors
var (
	ErrUnauthorized         = errors.New("opensubtitles: unauthorized (wrong username/password or expired token)")
	ErrBadUserAgent         = errors.New("opensubtitles: unknown or invalid user agent")
	ErrDownloadLimitReached = errors.New("opensubtitles: download limit reached")
	ErrServiceUnavailable   = errors.New("opensubtitles: service unavailable or internal server error")

	// Application/Flow specific errors
	ErrNotLoggedIn  = errors.New("client: not logged in")
	ErrNoResults    = errors.New("search: no subtitles found matching the criteria")
	ErrFileTooSmall = errors.New("hash: file is too small for OSDb hashing")
)
