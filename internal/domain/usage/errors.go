package usage

import "errors"

// Sentinel kinds for usage record errors.
var (
	ErrMalformedRecord = errors.New("malformed usage record")
	ErrDecode          = errors.New("decode usage payload failed")
)
