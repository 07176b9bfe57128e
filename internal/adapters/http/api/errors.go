package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNoSnapshot = errors.New("no weekly snapshot yet")
)
