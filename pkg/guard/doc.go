// Package guard runs every navigation of a workspace through an ordered
// chain of guards.
//
// A Router resolves a target against the core routes plus the routes each
// namespace committed for its session, then calls the guards in
// registration order. A guard allows, redirects (optionally replacing the
// history entry) or fails the navigation. Redirects are followed until the
// chain allows a location; a chain that keeps redirecting fails with
// ErrRedirectLoop instead of spinning. After hooks run once the navigation
// settled, with the error if it failed.
//
// The workspace registers the guards in this order:
//
//	router.BeforeEach(guard.InstallGuard(installAPI, paths))
//	common := guard.NewCommon(progress)
//	router.BeforeEach(common.Before)
//	router.AfterEach(common.After)
//	router.BeforeEach(guard.AdminGuard(adminAuth, adminTree, guard.WithPaths(paths), guard.WithCoreRoutes(router.CoreNames()...)))
//	router.BeforeEach(guard.UserGuard(userAuth, menuAPI, guard.WithPaths(paths), guard.WithRegistry(registry)))
//
// The admin and user guards resolve access once per session: they load the
// identity, produce the role-filtered route tree and its menus, and commit
// them together with the access-checked latch through access.Store.Commit.
// A commit racing a logout is rejected and the navigation lands on the
// login page.
package guard
