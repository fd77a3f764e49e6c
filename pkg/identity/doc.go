// Package identity stores the profile of the principal signed in to a
// namespace. Roles used for route filtering come from Identity.Roles.
package identity
