package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/gatehouse/internal/core/domain"
)

const testSecret = "test-signing-secret"

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := New(testSecret)
	require.NoError(t, err)
	return codec
}

func TestNew_EmptySecretRejected(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	payload := Payload{UserID: "user-123", Email: "alice@example.com", Role: domain.RoleModerator}
	signed, err := codec.Issue(payload)
	require.NoError(t, err)

	got, err := codec.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, payload, *got)
}

func TestVerify_TamperedSignature(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Issue(Payload{UserID: "u1", Email: "a@b.c", Role: domain.RoleUser})
	require.NoError(t, err)

	// Flip the last signature byte.
	tampered := []byte(signed)
	if tampered[len(tampered)-1] == 'A' {
		tampered[len(tampered)-1] = 'B'
	} else {
		tampered[len(tampered)-1] = 'A'
	}

	_, err = codec.Verify(string(tampered))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_WrongSecret(t *testing.T) {
	codec := newTestCodec(t)

	other, err := New("a-different-secret")
	require.NoError(t, err)

	signed, err := other.Issue(Payload{UserID: "u1", Email: "a@b.c", Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Expired(t *testing.T) {
	codec := newTestCodec(t)

	// Sign a token with the same secret and shape but an expiry in the
	// past; the signature itself is valid.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: "u1",
		Email:  "a@b.c",
		Role:   "USER",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_UnknownRoleRejected(t *testing.T) {
	codec := newTestCodec(t)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: "u1",
		Email:  "a@b.c",
		Role:   "SUPERADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := forged.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_MalformedInput(t *testing.T) {
	codec := newTestCodec(t)

	for _, input := range []string{"", "garbage", "not.a.jwt", "a.b"} {
		_, err := codec.Verify(input)
		assert.ErrorIs(t, err, ErrTokenInvalid, "input %q", input)
	}
}

func TestVerify_RejectsNonHMACAlgorithm(t *testing.T) {
	codec := newTestCodec(t)

	// alg=none tokens must never verify.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims{
		UserID: "u1",
		Email:  "a@b.c",
		Role:   "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiresAt(t *testing.T) {
	codec := newTestCodec(t)

	now := time.Now()
	assert.Equal(t, now.Add(TTL), codec.ExpiresAt(now))
}
