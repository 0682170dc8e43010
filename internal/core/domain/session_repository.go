package domain

import (
	"context"
	"time"
)

// SessionRow represents a session joined with its owner user, returned
// by session lookup queries. Role is the live role from the users
// table, not the role frozen into the token at mint time.
type SessionRow struct {
	UserID    string
	Email     string
	Role      Role
	ExpiresAt time.Time
}

// SessionRepository defines the data-access contract for session
// operations. Implementations live in internal/core/repository (Core
// layer).
type SessionRepository interface {
	// Create inserts a new session for the given user. Concurrent
	// logins for the same user each create their own row.
	Create(ctx context.Context, userID, token string, expiresAt time.Time) error

	// GetByToken looks up the session by token and returns the
	// associated user data together with the session expiry time.
	// Returns (nil, nil) when the token does not match any session.
	GetByToken(ctx context.Context, token string) (*SessionRow, error)

	// DeleteByToken removes every session row carrying the token.
	// Deleting a token with no rows is not an error.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteExpired removes sessions whose expiry has passed and
	// returns how many rows were deleted. Used by the optional reaper;
	// validity never depends on it.
	DeleteExpired(ctx context.Context) (int64, error)
}
