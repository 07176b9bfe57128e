package weekly

import "errors"

// Sentinel kinds for engine errors.
var (
	// ErrClockUnavailable is fatal: without "today" there is no window.
	ErrClockUnavailable = errors.New("clock unavailable")
)
