package gateway

import "errors"

var (
	ErrWorkspaceNotFound = errors.New("gateway.workspace_not_found")
	ErrUnknownNamespace  = errors.New("gateway.unknown_namespace")
	ErrInvalidRequest    = errors.New("gateway.invalid_request")
)
