package access

import "errors"

var (
	// ErrStaleSession is returned by Commit and GrantAccessCodes when the
	// session was reset after the caller read its generation.
	ErrStaleSession = errors.New("access.stale_session")

	// ErrPersist wraps durable storage failures on write.
	ErrPersist = errors.New("access.persist_failed")

	// ErrRestore wraps durable storage failures on boot.
	ErrRestore = errors.New("access.restore_failed")
)
