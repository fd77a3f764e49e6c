// Package access implements the per-namespace access state of a session.
//
// A Store owns the access and refresh tokens, the granted access codes, the
// login timestamp and a single expiry timer, plus the menus and routes the
// guards derive once per session. Tokens, codes and the login time are
// written through to a session.Store so a session survives a restart;
// derived trees are memory-only unless WithPersistMenus is set.
//
// # Expiry
//
// Begin (a fresh login) and SetLoginTime arm a timer for the full window
// and cancel any previous one. When it fires the expired flag is raised and expiry listeners run;
// nothing else is touched. After Restore, InitExpiryCheck either flags the
// session at once or arms the timer for what is left of the window.
//
//	store := access.New(access.NamespaceAdmin,
//		access.WithExpiryWindow(cfg.AdminExpiry),
//		access.WithSessionStore(sessions),
//		access.WithKey(workspaceID+":admin"),
//	)
//	if err := store.Restore(ctx); err != nil {
//		return err
//	}
//	store.InitExpiryCheck()
//
// # Access-checked latch
//
// Guards compute menus and routes once per session. Commit stores both and
// sets the latch atomically, and only if the session has not been Reset
// since the guard read Generation. A fetch that completes after logout
// therefore gets ErrStaleSession instead of resurrecting cleared state. Access
// codes fetched at login follow the same rule through GrantAccessCodes.
package access
