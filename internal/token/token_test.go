package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := New("test-secret", time.Hour)

	tok, err := svc.Generate("user-1", "alice", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := svc.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestValidate_WrongSecret(t *testing.T) {
	tok, err := New("secret-a", time.Hour).Generate("user-1", "alice", "alice@example.com")
	require.NoError(t, err)

	claims, err := New("secret-b", time.Hour).Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestValidate_Expired(t *testing.T) {
	svc := New("test-secret", -time.Minute)

	tok, err := svc.Generate("user-1", "alice", "alice@example.com")
	require.NoError(t, err)

	claims, err := svc.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestValidate_Garbage(t *testing.T) {
	svc := New("test-secret", time.Hour)

	claims, err := svc.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}
