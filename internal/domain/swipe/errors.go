package swipe

import "errors"

// Sentinel kinds for swipe state errors.
var (
	ErrInvalidDecision = errors.New("invalid swipe decision")
	ErrEmptyPerson     = errors.New("empty person id")
)
