package repository

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrNoSession        = errors.New("no ranking session")
	ErrNoSwipeState     = errors.New("no swipe state")
	ErrSnapshotExists   = errors.New("snapshot already exists")
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
