package auth

import "errors"

var (
	// ErrLoadProfile wraps failures fetching the profile or access codes
	// right after a successful login.
	ErrLoadProfile = errors.New("auth.load_profile_failed")

	// ErrNoNavigator is returned when navigation is needed but none is set.
	ErrNoNavigator = errors.New("auth.no_navigator")
)
