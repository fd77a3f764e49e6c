package guard

import "errors"

var (
	// ErrRedirectLoop is returned when guards keep redirecting past the limit.
	ErrRedirectLoop = errors.New("guard.redirect_loop")

	// ErrInvalidTarget is returned for targets that are not absolute paths.
	ErrInvalidTarget = errors.New("guard.invalid_target")
)
