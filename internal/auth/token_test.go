// ABOUTME: Tests for JWT mint and verification
// ABOUTME: Covers round-trip, expiry, wrong secret, and malformed tokens

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret-test-secret-test-secret"))

	token, err := v.Generate("owner-123", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ownerID, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "owner-123", ownerID)
}

func TestJWTVerifier_Expired(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret-test-secret-test-secret"))

	token, err := v.Generate("owner-123", -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	minter := NewJWTVerifier([]byte("secret-a-secret-a-secret-a-secret-a"))
	verifier := NewJWTVerifier([]byte("secret-b-secret-b-secret-b-secret-b"))

	token, err := minter.Generate("owner-123", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifier_Garbage(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret-test-secret-test-secret"))

	_, err := v.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifier_EmptySubject(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret-test-secret-test-secret"))

	// A well-signed token without an owner in the subject claim carries
	// no identity and must be rejected
	token, err := v.Generate("", time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
