// Package identity provides authenticated identity management for requests.
//
// This package separates the concept of an authenticated identity from the
// raw token parsing. An Identity combines token claims (user, roles) with
// request-specific context (remote IP).
//
// # Basic Usage
//
//	// Store in request context
//	ctx = identity.Set(ctx, id)
//
//	// Retrieve from context
//	id, ok := identity.Get(ctx)
package identity
