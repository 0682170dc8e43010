package domain

import (
	"context"
	"time"
)

// UserRow represents a user record returned from the database.
// It includes the password hash so the Logic layer can verify
// credentials; the hash never leaves that layer.
type UserRow struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only — never on SQL or pgx
// directly.
type UserRepository interface {
	// GetByEmail returns the user matching the given email, compared
	// case-sensitively as stored. Returns (nil, nil) when no user is
	// found.
	GetByEmail(ctx context.Context, email string) (*UserRow, error)

	// ExistsByEmail returns true when a user with the given email
	// already exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts a new user with the given generated ID.
	Create(ctx context.Context, id, email, name, passwordHash string, role Role) error

	// List returns all users ordered by creation time, without password
	// hashes populated.
	List(ctx context.Context) ([]UserRow, error)

	// UpdateRole sets the role for the given user and returns the
	// updated row. Returns (nil, nil) when the user does not exist.
	UpdateRole(ctx context.Context, userID string, role Role) (*UserRow, error)

	// Delete removes the user and any sessions owned by it. Returns
	// false when the user did not exist.
	Delete(ctx context.Context, userID string) (bool, error)
}
