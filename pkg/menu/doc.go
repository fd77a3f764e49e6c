// Package menu holds the menu tree shown in the admin and user shells.
//
// Menus are never edited by hand: Generate derives them from an already
// permission-filtered route tree, and the access stores cache the result for
// the lifetime of a session.
package menu
