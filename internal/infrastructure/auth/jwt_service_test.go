package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/voicegate/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:     42,
		Email:  "a@x.com",
		Role:   domain.RoleOutbound,
		Status: domain.StatusActive,
	}
}

func TestJWTService_MissingSecret(t *testing.T) {
	_, err := NewJWTService("", "voicegate", 30*time.Minute)
	assert.Error(t, err, "an absent signing secret must fail construction")
}

func TestJWTService_SignAndVerify(t *testing.T) {
	svc, err := NewJWTService("test-secret-0123456789abcdef", "voicegate", 30*time.Minute)
	require.NoError(t, err)

	token, err := svc.SignAccessToken(testUser(), "sess-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, domain.RoleOutbound, claims.Role)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
}

func TestJWTService_Expired(t *testing.T) {
	svc, err := NewJWTService("test-secret-0123456789abcdef", "voicegate", -time.Minute)
	require.NoError(t, err)

	token, err := svc.SignAccessToken(testUser(), "sess-1")
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestJWTService_WrongSecret(t *testing.T) {
	signer, err := NewJWTService("secret-one-0123456789abcdef", "voicegate", 30*time.Minute)
	require.NoError(t, err)
	verifier, err := NewJWTService("secret-two-0123456789abcdef", "voicegate", 30*time.Minute)
	require.NoError(t, err)

	token, err := signer.SignAccessToken(testUser(), "sess-1")
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWTService_Garbage(t *testing.T) {
	svc, err := NewJWTService("test-secret-0123456789abcdef", "voicegate", 30*time.Minute)
	require.NoError(t, err)

	for _, token := range []string{"", "not.a.jwt", "a.b"} {
		_, err := svc.VerifyAccessToken(token)
		assert.Error(t, err, "token %q", token)
	}
}
