// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"

	"github.com/halden/reelrank/internal/domain/rating"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// DataDir is the root directory for all state artifacts.
	DataDir string `koanf:"data_dir"`

	// StateFile names the ranking session artifact within DataDir.
	StateFile string `koanf:"state_file"`

	// SwipeStateFile names the swipe artifact within DataDir.
	SwipeStateFile string `koanf:"swipe_state_file"`

	// SnapshotDir names the snapshot directory within DataDir.
	SnapshotDir string `koanf:"snapshot_dir"`

	// PosterDir names the poster asset directory within DataDir.
	PosterDir string `koanf:"poster_dir"`

	// MovieCSV names the exported title list within DataDir.
	MovieCSV string `koanf:"movie_csv"`

	// DefaultPersonCount seeds sessions that carry no person count.
	DefaultPersonCount int `koanf:"default_person_count"`

	// Rating holds the skill-model prior parameters. They are persisted
	// with each session, so changing them here only affects new sessions.
	Rating rating.Config `koanf:"rating"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":5000",
		DataDir:            "data",
		StateFile:          "state.json",
		SwipeStateFile:     "swipe_state.json",
		SnapshotDir:        "snapshots",
		PosterDir:          "images",
		MovieCSV:           "movies.csv",
		DefaultPersonCount: 1,
		Rating:             rating.DefaultConfig(),
	}
}
