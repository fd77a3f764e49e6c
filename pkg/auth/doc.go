// Package auth orchestrates sign-in and sign-out of one namespace.
//
// A Service ties the remote API to the namespace's access.Store and
// identity.Store and to a Navigator that moves the client. Logout is
// unconditionally effective on the client: the remote call is best-effort,
// local state is always cleared and the client always lands on the login
// page. Terminate performs the same sign-out without navigating and is what
// guards use while a navigation is already in flight.
//
// Login over a live session replaces it: the old state is cleared locally
// before the new token is stored, so the guards resolve access again for
// whoever signed in.
package auth
