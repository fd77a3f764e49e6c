// Package navgate assembles the access-control and routing pipeline of an
// admin panel into a Workspace, one per client.
//
// A workspace owns two namespaces, admin and user. Each has its own access
// store (tokens, access codes, login expiry, derived menus and routes), its
// identity store, its backend client and the auth service that signs it in
// and out. A single guard.Router serves both shells; its guards run in a
// fixed order on every navigation:
//
//  1. install: keeps an installed application out of the install wizard
//  2. common: tracks visited pages and drives the progress indicator
//  3. admin: filters the static admin tree by role on the first navigation
//  4. user: builds the user tree from the backend on the first navigation
//
// Routes committed by the guards live in the access stores, so the router
// picks them up on the next navigation and drops them again on logout.
//
// Basic usage:
//
//	ws, err := navgate.NewWorkspace(ctx, id, navgate.Deps{
//		Config:      cfg,
//		Sessions:    session.NewRedisStore(rdb),
//		CoreRoutes:  core,
//		AdminRoutes: admin,
//		Registry:    registry,
//	})
//	if err != nil {
//		return err
//	}
//	defer ws.Close()
//
//	loc, err := ws.Navigate(ctx, "/admin/dashboard/workspace", false)
//
// NewWorkspace restores the durable sessions stored under "<id>:admin" and
// "<id>:user", so a workspace re-created with the same id resumes where the
// previous one stopped.
package navgate
