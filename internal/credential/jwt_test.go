package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	h := NewJWTHandler("secret-one")
	claims := ForUser("user-123", "alice", time.Hour)

	token, err := h.Encode(claims)
	require.NoError(t, err)

	decoded, err := h.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, claims.Subject, decoded.Subject)
	assert.Equal(t, "alice", decoded.Username())
}

func TestDecodeWrongKeyFails(t *testing.T) {
	h1 := NewJWTHandler("secret-one")
	h2 := NewJWTHandler("secret-two")

	token, err := h1.Encode(ForUser("user-123", "alice", time.Hour))
	require.NoError(t, err)

	_, err = h2.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeExpiredToken(t *testing.T) {
	h := NewJWTHandler("secret-one")
	claims := NewClaims().WithSubject("user-123").WithExpiration(time.Now().Add(-time.Hour).Unix())

	token, err := h.Encode(claims)
	require.NoError(t, err)

	_, err = h.Decode(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDecodeMissingExpAllowed(t *testing.T) {
	h := NewJWTHandler("secret-one")
	claims := NewClaims().WithSubject("user-123")

	token, err := h.Encode(claims)
	require.NoError(t, err)

	decoded, err := h.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", decoded.Subject)
}

func TestDecodeUnverifiedSucceedsUnderWrongKey(t *testing.T) {
	h1 := NewJWTHandler("secret-one")
	h2 := NewJWTHandler("secret-two")

	token, err := h1.Encode(ForUser("user-123", "alice", time.Hour))
	require.NoError(t, err)

	decoded, err := h2.DecodeUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", decoded.Subject)
}

func TestPasswordHashAndVerify(t *testing.T) {
	h := NewPasswordHasher()
	encoded, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)

	ok, err := h.Verify("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordVerifyMalformedHash(t *testing.T) {
	h := NewPasswordHasher()
	_, err := h.Verify("whatever", "not-a-phc-string")
	assert.ErrorIs(t, err, ErrMalformedHash)
}
