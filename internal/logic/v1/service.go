package v1

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/gatehouse/internal/core/domain"
	"github.com/duynhne/gatehouse/internal/token"
	"github.com/duynhne/gatehouse/middleware"
)

// AuthService implements the session lifecycle and role-authorization
// business rules. It depends on repository interfaces and the token
// codec (injected via constructor) and MUST NOT access the database or
// SQL directly.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	codec    *token.Codec
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, codec *token.Codec) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		codec:    codec,
	}
}

// Login verifies credentials, mints a session token and persists the
// session row. A lookup miss and a password mismatch surface as
// distinct sentinels for logging, but handlers must render them
// identically.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	row, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user: %w", err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate: %w", ErrUserNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(req.Password)); err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate: %w", ErrInvalidCredentials)
	}

	resp, err := s.startSession(ctx, row)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("user.id", resp.User.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return resp, nil
}

// Register creates a user and logs it in. The role defaults to USER
// and is validated against the closed enum.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	role := domain.RoleUser
	if req.Role != "" {
		parsed, err := domain.ParseRole(req.Role)
		if err != nil {
			return nil, fmt.Errorf("register: %w: %q", ErrInvalidRole, req.Role)
		}
		role = parsed
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register: %w", ErrUserExists)
	}

	userID := uuid.New().String()
	if err := s.users.Create(ctx, userID, req.Email, req.Name, string(passwordHash), role); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	resp, err := s.startSession(ctx, &domain.UserRow{
		ID:    userID,
		Email: req.Email,
		Name:  req.Name,
		Role:  role,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	return resp, nil
}

// startSession mints a token for the user and persists the matching
// session row. The row must land: without it server-side revocation
// (logout) cannot work, so a store failure fails the whole operation.
func (s *AuthService) startSession(ctx context.Context, row *domain.UserRow) (*domain.AuthResponse, error) {
	signed, err := s.codec.Issue(token.Payload{
		UserID: row.ID,
		Email:  row.Email,
		Role:   row.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	expiresAt := s.codec.ExpiresAt(time.Now())
	if err := s.sessions.Create(ctx, row.ID, signed, expiresAt); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &domain.AuthResponse{
		Token: signed,
		User: domain.User{
			ID:    row.ID,
			Email: row.Email,
			Name:  row.Name,
			Role:  row.Role,
		},
	}, nil
}

// Logout revokes the session rows carrying the token. It is idempotent
// and succeeds for tokens that never existed or already expired; only
// a store failure is reported, and callers clear the cookie regardless.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	ctx, span := middleware.StartSpan(ctx, "auth.logout", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if tokenString == "" {
		return nil
	}

	if err := s.sessions.DeleteByToken(ctx, tokenString); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// CurrentSession returns the user behind the token. Beyond the
// cryptographic check it requires a live session row, so a logged-out
// token is rejected even before its expiry.
func (s *AuthService) CurrentSession(ctx context.Context, tokenString string) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.current_session", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if _, err := s.codec.Verify(tokenString); err != nil {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, fmt.Errorf("verify token: %w", ErrSessionNotFound)
	}

	row, err := s.sessions.GetByToken(ctx, tokenString)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query session: %w", err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, fmt.Errorf("lookup session: %w", ErrSessionNotFound)
	}

	if time.Now().After(row.ExpiresAt) {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, fmt.Errorf("session expired at %v: %w", row.ExpiresAt, ErrSessionExpired)
	}

	user := &domain.User{
		ID:    row.UserID,
		Email: row.Email,
		Role:  row.Role,
	}

	span.SetAttributes(
		attribute.String("user.id", user.ID),
		attribute.Bool("session.valid", true),
	)

	return user, nil
}

// CheckAccess applies the role hierarchy for embeddable gated regions.
// requiredRole may be empty, in which case any authenticated caller has
// access; an unrecognized requiredRole is an ErrInvalidRole, not a
// silent deny.
func (s *AuthService) CheckAccess(ctx context.Context, caller *token.Payload, requiredRole string) (*domain.AccessCheck, error) {
	_, span := middleware.StartSpan(ctx, "auth.check_access", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	check := &domain.AccessCheck{
		HasAccess: true,
		Role:      caller.Role,
		Email:     caller.Email,
	}

	if requiredRole != "" {
		required, err := domain.ParseRole(requiredRole)
		if err != nil {
			return nil, fmt.Errorf("check access: %w: %q", ErrInvalidRole, requiredRole)
		}
		check.HasAccess = caller.Role.Satisfies(required)
	}

	span.SetAttributes(attribute.Bool("access.granted", check.HasAccess))
	return check, nil
}

// ListUsers returns every user for the admin table. The actor's role
// is re-checked here even though the gate already rejected non-admins
// (defense in depth for topologies where a handler is reachable without
// the gate).
func (s *AuthService) ListUsers(ctx context.Context, actor *token.Payload) ([]domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.list_users", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}

	rows, err := s.users.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, domain.User{
			ID:    row.ID,
			Email: row.Email,
			Name:  row.Name,
			Role:  row.Role,
		})
	}

	return users, nil
}

// UpdateUserRole sets a user's role, validated against the closed enum.
func (s *AuthService) UpdateUserRole(ctx context.Context, actor *token.Payload, userID, roleString string) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.update_user_role", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}

	role, err := domain.ParseRole(roleString)
	if err != nil {
		return nil, fmt.Errorf("update role: %w: %q", ErrInvalidRole, roleString)
	}

	row, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update role: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("update role: %w", ErrUserNotFound)
	}

	span.SetAttributes(
		attribute.String("user.id", row.ID),
		attribute.String("user.role", string(row.Role)),
	)

	return &domain.User{
		ID:    row.ID,
		Email: row.Email,
		Name:  row.Name,
		Role:  row.Role,
	}, nil
}

// DeleteUser removes a user and its sessions.
func (s *AuthService) DeleteUser(ctx context.Context, actor *token.Payload, userID string) error {
	ctx, span := middleware.StartSpan(ctx, "auth.delete_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if err := s.requireAdmin(actor); err != nil {
		return err
	}

	found, err := s.users.Delete(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete user: %w", err)
	}
	if !found {
		return fmt.Errorf("delete user: %w", ErrUserNotFound)
	}

	span.SetAttributes(attribute.String("user.id", userID))
	return nil
}

func (s *AuthService) requireAdmin(actor *token.Payload) error {
	if actor == nil || !actor.Role.Satisfies(domain.RoleAdmin) {
		return fmt.Errorf("require admin: %w", ErrForbidden)
	}
	return nil
}
