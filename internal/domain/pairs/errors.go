package pairs

import "errors"

// Sentinel kinds for pair accounting errors.
var (
	ErrSamePair   = errors.New("cannot pair an item with itself")
	ErrEmptyTitle = errors.New("empty title in pair")
	ErrEmptyRater = errors.New("empty rater id")
)
