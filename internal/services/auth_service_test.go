package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewdesk/internal/authz"
	"crewdesk/internal/models"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour)

	hash, err := svc.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, svc.CheckPassword("s3cret-pass", hash))
	assert.False(t, svc.CheckPassword("wrong", hash))
	assert.False(t, svc.CheckPassword("s3cret-pass", "not-a-hash"))
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour)

	user := &models.User{
		ID:    42,
		Email: "ann@example.com",
		Role:  authz.RoleProjectManager,
	}

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.Equal(t, authz.RoleProjectManager, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService("secret-a", time.Hour)
	verifier := NewAuthService("secret-b", time.Hour)

	token, err := issuer.GenerateToken(&models.User{ID: 1, Email: "x@example.com", Role: authz.RoleWorker})
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	// NewAuthService floors non-positive TTLs, so build one directly
	svc := &AuthService{secret: []byte("test-secret"), tokenTTL: -time.Minute}

	token, err := svc.GenerateToken(&models.User{ID: 1, Email: "x@example.com", Role: authz.RoleWorker})
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour)
	_, err := svc.ParseToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
