package config

import (
	"errors"
)

// Sentinel error kinds for configuration loading, matchable via errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
