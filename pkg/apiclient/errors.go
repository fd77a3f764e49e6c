package apiclient

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBaseURL = errors.New("apiclient.invalid_base_url")
	ErrUnauthorized   = errors.New("apiclient.unauthorized")
	ErrRequestFailed  = errors.New("apiclient.request_failed")
	ErrTransport      = errors.New("apiclient.transport")
	ErrDecode         = errors.New("apiclient.decode")
	ErrCircuitOpen    = errors.New("apiclient.circuit_open")
)

// Error is a response the backend rejected, either by HTTP status or by a
// non-success envelope code.
type Error struct {
	Status int
	Code   int
	Msg    string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("backend returned status %d, code %d", e.Status, e.Code)
	}
	return fmt.Sprintf("backend returned status %d, code %d: %s", e.Status, e.Code, e.Msg)
}

// Is lets errors.Is(err, ErrRequestFailed) match any *Error.
func (e *Error) Is(target error) bool {
	return target == ErrRequestFailed
}
