package repository

import (
	"github.com/halden/reelrank/internal/domain/rating"
	"github.com/halden/reelrank/pkg/logger"
)

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithDataDir sets the root directory holding all state artifacts.
func WithDataDir(dir string) Option {
	return func(s *FileStore) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithStateFile sets the session artifact filename within the data dir.
func WithStateFile(name string) Option {
	return func(s *FileStore) {
		if name != "" {
			s.stateFile = name
		}
	}
}

// WithSwipeStateFile sets the swipe artifact filename within the data dir.
func WithSwipeStateFile(name string) Option {
	return func(s *FileStore) {
		if name != "" {
			s.swipeFile = name
		}
	}
}

// WithSnapshotDir sets the snapshot directory name within the data dir.
func WithSnapshotDir(name string) Option {
	return func(s *FileStore) {
		if name != "" {
			s.snapshotDir = name
		}
	}
}

// WithPosterDir sets the poster asset directory name within the data dir.
func WithPosterDir(name string) Option {
	return func(s *FileStore) {
		if name != "" {
			s.posterDir = name
		}
	}
}

// WithMovieCSV sets the exported movie list filename within the data dir.
func WithMovieCSV(name string) Option {
	return func(s *FileStore) {
		if name != "" {
			s.movieCSV = name
		}
	}
}

// WithRatingConfig sets the rating defaults used when normalizing sessions
// whose persisted config is incomplete.
func WithRatingConfig(cfg rating.Config) Option {
	return func(s *FileStore) {
		s.ratingDefaults = cfg
	}
}

// WithPersonCount sets the default person count for sessions that carry none.
func WithPersonCount(count int) Option {
	return func(s *FileStore) {
		if count > 0 {
			s.personCount = count
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(log logger.Logger) Option {
	return func(s *FileStore) {
		if log != nil {
			s.logger = log
		}
	}
}
