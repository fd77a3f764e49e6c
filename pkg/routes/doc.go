// Package routes models the route trees of the admin and user shells and
// the two ways of producing the tree a session may see.
//
// In frontend mode the application ships a static tree (see LoadYAML) and
// Filter prunes it by the caller's roles:
//
//	visible := routes.Filter(tree, identity.Roles(),
//		routes.WithForbidden(routes.View("/_core/fallback/forbidden.vue")))
//
// A node survives when its Access is public, when a role matches its
// authority, or when it is marked visible-when-forbidden. Nodes kept for the
// last reason render the forbidden component instead of their own, so they
// show up in menus but open a permission-denied page. Filter never mutates
// its input, preserves sibling order and is idempotent.
//
// In backend mode the server sends Records whose component is a string.
// Build binds layouts by name and pages by normalized path:
//
//	tree := routes.Build(records, routes.Registry{
//		Layouts: map[string]routes.Component{"BasicLayout": routes.Layout("BasicLayout")},
//		Pages:   routes.PagesOf("/dashboard/index.vue"),
//	}, routes.WithLogger(log))
//
// A record without a name or with an unknown page is logged and kept; the
// server is the source of truth for the tree shape.
//
// Table flattens a tree and matches concrete navigation paths against it,
// including ":param" segments and a trailing ":path(.*)*" catch-all.
package routes
