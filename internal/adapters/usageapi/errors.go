package usageapi

import "errors"

// Sentinel kinds for usage API errors.
var (
	ErrRequest          = errors.New("usage api request failed")
	ErrUnexpectedStatus = errors.New("usage api unexpected status")
	ErrDecode           = errors.New("usage api decode failed")
	ErrInvalidArgument  = errors.New("usage api invalid argument")
)
