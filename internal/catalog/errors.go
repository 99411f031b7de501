package catalog

import "errors"

// Load-time failure kinds. Callers test with errors.Is; every returned error
// wraps one of these with context.
var (
	// ErrNotFound means the source document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrParse means the document exists but is not a valid catalog.
	ErrParse = errors.New("parse error")

	// ErrNetwork means a remote source could not be reached.
	ErrNetwork = errors.New("network error")

	// ErrRead means a local document was opened but reading it failed.
	ErrRead = errors.New("read error")
)

// Video variant errors.
var (
	ErrUnknownVideoType = errors.New("unknown video type")
	ErrInvalidVideo     = errors.New("invalid video")
)
