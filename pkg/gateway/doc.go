// Package gateway runs workspaces server-side and exposes them over HTTP for
// thin clients.
//
// Routes:
//
//	POST   /workspaces                          create a workspace
//	DELETE /workspaces/{id}                     sign out and forget it
//	GET    /workspaces/{id}/location            current location and history
//	POST   /workspaces/{id}/navigate            {"target": "/admin/x", "replace": false}
//	POST   /workspaces/{id}/{namespace}/login   credentials, optional "redirect"
//	POST   /workspaces/{id}/{namespace}/logout  ?redirect=false skips the redirect query
//	GET    /workspaces/{id}/{namespace}/menus
//	GET    /workspaces/{id}/{namespace}/session
//	GET    /healthz, /readyz, /metrics
//
// Responses use the backend's {code, data, msg} envelope; code is 0 on
// success and the HTTP status otherwise.
//
// Workspaces live in a Registry, a bounded LRU keyed by uuid. An evicted
// workspace is closed, and the next request for its id assembles it again
// from the durable session store.
package gateway
