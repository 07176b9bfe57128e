package colors

import "errors"

// Sentinel kinds for color table errors.
var (
	ErrLoadColors   = errors.New("load color table failed")
	ErrInvalidColor = errors.New("invalid color entry")
)
