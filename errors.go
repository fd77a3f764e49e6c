package navgate

import "errors"

var (
	ErrInvalidWorkspaceID = errors.New("navgate.invalid_workspace_id")
	ErrAssemble           = errors.New("navgate.assemble_failed")
)
