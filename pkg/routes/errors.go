package routes

import "errors"

var (
	ErrInvalidPath   = errors.New("routes.invalid_path")
	ErrMissingName   = errors.New("routes.missing_name")
	ErrDuplicateName = errors.New("routes.duplicate_name")
	ErrParseTree     = errors.New("routes.parse_failed")
	ErrReadTree      = errors.New("routes.read_failed")
)
