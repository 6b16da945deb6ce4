package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.GenerateToken("u1", "admin@example.com", true)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "u1", claims.Subject)
	assert.True(t, claims.IsAdmin)

	_, err = NewManager("other", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	now := time.Now()

	fresh, err := NewManager("s", time.Hour).GenerateToken("u1", "a@b.c", false)
	require.NoError(t, err)
	assert.False(t, Expired(fresh, now))
	assert.True(t, Expired(fresh, now.Add(2*time.Hour)))

	exp, err := ExpiresAt(fresh)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), exp, 5*time.Second)

	assert.False(t, Expired("opaque-token", now), "non-JWT tokens are left alone")
}
