package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManagerAdminToken(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, "member-directory")

	tok, exp, err := m.GenerateAdminToken("office@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "office@example.com", claims.Email)
	assert.Equal(t, "member-directory", claims.Issuer)
}

func TestJWTManagerRejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, "")
	other := NewJWTManager("other", time.Hour, "")
	tok, _, err := other.GenerateAdminToken("x@example.com")
	require.NoError(t, err)

	_, err = m.ParseToken(tok)
	assert.Error(t, err)

	expired := NewJWTManager("secret", -time.Minute, "")
	tok, _, err = expired.GenerateAdminToken("x@example.com")
	require.NoError(t, err)
	_, err = m.ParseToken(tok)
	assert.Error(t, err)
}
