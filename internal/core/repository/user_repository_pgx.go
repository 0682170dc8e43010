package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/gatehouse/internal/core/domain"
)

// PgxUserRepository implements domain.UserRepository using pgxpool.
// Every call runs under the configured timeout so a slow store fails
// fast instead of hanging the request gate.
type PgxUserRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(pool *pgxpool.Pool, timeout time.Duration) *PgxUserRepository {
	return &PgxUserRepository{pool: pool, timeout: timeout}
}

// GetByEmail returns the user matching the given email, compared
// case-sensitively as stored. Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, email, COALESCE(name, ''), password_hash, role, created_at, updated_at
		FROM users WHERE email = $1
	`

	var row domain.UserRow
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&row.ID, &row.Email, &row.Name, &row.PasswordHash, &row.Role, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// ExistsByEmail returns true when a user with the given email already
// exists.
func (r *PgxUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// Create inserts a new user with the given generated ID.
func (r *PgxUserRepository) Create(ctx context.Context, id, email, name, passwordHash string, role domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO users (id, email, name, password_hash, role)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, id, email, name, passwordHash, role)
	return err
}

// List returns all users ordered by creation time, without password
// hashes populated.
func (r *PgxUserRepository) List(ctx context.Context) ([]domain.UserRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, email, COALESCE(name, ''), role, created_at, updated_at
		FROM users ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.UserRow
	for rows.Next() {
		var row domain.UserRow
		if err := rows.Scan(&row.ID, &row.Email, &row.Name, &row.Role, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, row)
	}

	return users, rows.Err()
}

// UpdateRole sets the role for the given user and returns the updated
// row. Returns (nil, nil) when the user does not exist.
func (r *PgxUserRepository) UpdateRole(ctx context.Context, userID string, role domain.Role) (*domain.UserRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE users SET role = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING id, email, COALESCE(name, ''), role, created_at, updated_at
	`

	var row domain.UserRow
	err := r.pool.QueryRow(ctx, query, userID, role).Scan(
		&row.ID, &row.Email, &row.Name, &row.Role, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// Delete removes the user and, via ON DELETE CASCADE, any sessions it
// owns. Returns false when the user did not exist.
func (r *PgxUserRepository) Delete(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}
