// Package v1 provides authentication and authorization business logic
// for API version 1.
//
// Error Handling:
// This package defines sentinel errors that represent common
// authentication failures. They are wrapped with context using
// fmt.Errorf("%w") when returned from business logic methods, and
// discriminated in handlers with errors.Is — never by matching message
// text.
//
// Example (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrInvalidCredentials):
//	    c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
//	case errors.Is(err, logicv1.ErrUserNotFound):
//	    c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
//	}
package v1

import "errors"

// Sentinel errors for authentication operations.
var (
	// ErrInvalidCredentials indicates the provided password does not
	// match. HTTP Status: 401 Unauthorized. Handlers must render it
	// identically to ErrUserNotFound so login failures are
	// non-enumerable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the user does not exist.
	// HTTP Status: 401 Unauthorized (don't reveal user existence).
	ErrUserNotFound = errors.New("user not found")

	// ErrForbidden indicates a valid identity with insufficient role.
	// HTTP Status: 403 Forbidden.
	ErrForbidden = errors.New("forbidden")

	// ErrUserExists indicates the email already exists.
	// HTTP Status: 409 Conflict.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidRole indicates a role outside the closed enum.
	// HTTP Status: 400 Bad Request.
	ErrInvalidRole = errors.New("invalid role")

	// ErrSessionNotFound indicates the token matches no live session
	// (revoked, never issued, or cryptographically invalid).
	// HTTP Status: 401 Unauthorized.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the session's expiry has passed.
	// HTTP Status: 401 Unauthorized.
	ErrSessionExpired = errors.New("session expired")
)
