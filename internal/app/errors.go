package service

import "errors"

// Sentinel kinds for ranking service errors.
var (
	ErrUnknownTitle = errors.New("unknown title")
)
