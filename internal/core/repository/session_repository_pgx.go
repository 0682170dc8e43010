package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/gatehouse/internal/core/domain"
)

// PgxSessionRepository implements domain.SessionRepository using
// pgxpool, with the same per-call timeout discipline as the user
// repository.
type PgxSessionRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(pool *pgxpool.Pool, timeout time.Duration) *PgxSessionRepository {
	return &PgxSessionRepository{pool: pool, timeout: timeout}
}

// Create inserts a new session for the given user.
func (r *PgxSessionRepository) Create(ctx context.Context, userID, token string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `INSERT INTO sessions (user_id, token, expires_at) VALUES ($1, $2, $3)`
	_, err := r.pool.Exec(ctx, query, userID, token, expiresAt)
	return err
}

// GetByToken looks up the session by token and returns the associated
// user data together with the session expiry time. The role is read
// live from the users table. Returns (nil, nil) when the token does not
// match any session.
func (r *PgxSessionRepository) GetByToken(ctx context.Context, token string) (*domain.SessionRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT u.id, u.email, u.role, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = $1
	`

	var row domain.SessionRow
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&row.UserID, &row.Email, &row.Role, &row.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// DeleteByToken removes every session row carrying the token. Deleting
// a token with no rows is not an error.
func (r *PgxSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// DeleteExpired removes sessions whose expiry has passed and returns
// how many rows were deleted.
func (r *PgxSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
