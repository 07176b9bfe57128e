package service

import "errors"

// Sentinel errors returned by the Service.
var (
	ErrUpstream = errors.New("usage upstream unavailable")
	ErrPivot    = errors.New("weekly pivot failed")
)
