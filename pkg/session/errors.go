package session

import "errors"

var (
	// ErrSessionNotFound indicates no session is stored under the key
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrInvalidSession indicates a nil session or an empty key
	ErrInvalidSession = errors.New("session.invalid")

	// ErrDecode indicates stored data could not be decoded
	ErrDecode = errors.New("session.decode_failed")

	// ErrStoreUnavailable wraps backend failures
	ErrStoreUnavailable = errors.New("session.store_unavailable")
)
