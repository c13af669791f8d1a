package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be
	// parsed into the target struct.
	ErrParsingConfig = errors.New("config: failed to parse environment variables")

	// ErrNilPointer is returned when Load receives a nil target.
	ErrNilPointer = errors.New("config: nil pointer provided")

	// ErrLoadingEnvFiles is returned when an explicit env file cannot be read.
	ErrLoadingEnvFiles = errors.New("config: failed to load env files")
)
