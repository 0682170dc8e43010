// Package token signs and verifies the session credential.
//
// The token is a compact HS256 JWT carrying the user's identity and
// role at mint time. Verification collapses every failure mode — bad
// signature, wrong algorithm, malformed input, expired claims, unknown
// role — into the single ErrTokenInvalid sentinel: an invalid token is
// a normal outcome on the request path, not an exceptional one, and
// callers must not learn which check failed.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/duynhne/gatehouse/internal/core/domain"
)

// TTL is the token (and session) lifetime from issuance.
const TTL = 7 * 24 * time.Hour

// ErrTokenInvalid covers missing, malformed, tampered and expired
// tokens alike.
var ErrTokenInvalid = errors.New("invalid token")

// Payload is the transient projection decoded from a verified token.
// It reflects the user at mint time and may go stale if the role
// changes before expiry.
type Payload struct {
	UserID string
	Email  string
	Role   domain.Role
}

type claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies session tokens with a process-wide secret.
// It is immutable after construction and safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// New creates a Codec. The secret is mandatory: signing with an empty
// (or defaulted) key would make every token forgeable, so construction
// fails instead.
func New(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret must not be empty")
	}
	return &Codec{secret: []byte(secret), ttl: TTL}, nil
}

// Issue signs the payload with an expiry of now + 7 days.
func (c *Codec) Issue(p Payload) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: p.UserID,
		Email:  p.Email,
		Role:   string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ExpiresAt returns the absolute expiry a token issued now would carry,
// for callers persisting the matching session row.
func (c *Codec) ExpiresAt(now time.Time) time.Time {
	return now.Add(c.ttl)
}

// Verify checks signature and expiry and returns the decoded payload,
// or ErrTokenInvalid. It never panics on malformed input.
func (c *Codec) Verify(tokenString string) (*Payload, error) {
	var cl claims
	t, err := jwt.ParseWithClaims(tokenString, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !t.Valid {
		return nil, ErrTokenInvalid
	}

	// Normalize the role at the trust boundary. A token carrying a role
	// outside the closed enum is rejected here rather than ranking as
	// zero deep inside a comparison.
	role, err := domain.ParseRole(cl.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	return &Payload{UserID: cl.UserID, Email: cl.Email, Role: role}, nil
}
