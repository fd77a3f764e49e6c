package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct
	ErrParsingConfig = errors.New("config.parse_failed")

	// ErrInvalidConfigType is returned when a cached entry has an unexpected type
	ErrInvalidConfigType = errors.New("config.invalid_type")

	// ErrNilPointer is returned when a nil pointer is provided to Load
	ErrNilPointer = errors.New("config.nil_pointer")
)
