// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels shared by the session store and the API client.
var (
	// ErrNotFound indicates the requested entity does not exist on the server.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a request was rejected for missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated user lacks permission (e.g., non-admin).
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrRateLimited indicates the server is throttling the client.
	ErrRateLimited = errors.New("rate limited")

	// ErrSessionExpired indicates the refresh token was missing or rejected and the
	// local session has been cleared. The user must sign in again.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoSession indicates an operation that needs credentials ran with none stored.
	ErrNoSession = errors.New("no session")

	// ErrNotHydrated indicates the persisted session has not been loaded yet.
	// Callers must treat this as "unknown", never as "signed out".
	ErrNotHydrated = errors.New("session not hydrated")
)
