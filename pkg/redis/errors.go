package redis

import "errors"

var (
	ErrParseURL           = errors.New("redis.invalid_url")
	ErrNotReady           = errors.New("redis.not_ready")
	ErrEmptyConnectionURL = errors.New("redis.empty_url")
	ErrHealthcheckFailed  = errors.New("redis.healthcheck_failed")
)
