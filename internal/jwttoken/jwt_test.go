package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "lingua/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-key", "lingua", "lingua-api")

	token, err := svc.GenerateAccessToken("user-123", "maria", true, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "maria", claims.Username)
	assert.True(t, claims.Superuser)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewService("test-key", "lingua", "lingua-api")

	token, err := svc.GenerateAccessToken("user-123", "maria", false, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateWrongKey(t *testing.T) {
	issuer := NewService("key-a", "lingua", "lingua-api")
	verifier := NewService("key-b", "lingua", "lingua-api")

	token, err := issuer.GenerateAccessToken("user-123", "maria", false, time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateGarbage(t *testing.T) {
	svc := NewService("test-key", "lingua", "lingua-api")
	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
