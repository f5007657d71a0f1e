package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyPair(t *testing.T) {
	m := NewManager("test-secret", time.Minute, time.Hour)

	pair, err := m.IssuePair("user-1", "user")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := m.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)

	refresh, err := m.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	m := NewManager("test-secret", time.Minute, time.Hour)

	pair, err := m.IssuePair("user-1", "user")
	require.NoError(t, err)

	_, err = m.VerifyAccess(pair.RefreshToken)
	assert.Error(t, err)
	_, err = m.VerifyRefresh(pair.AccessToken)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager("test-secret", time.Minute, time.Hour)
	m.WithClock(func() time.Time { return issued })

	pair, err := m.IssuePair("user-1", "user")
	require.NoError(t, err)

	m.WithClock(func() time.Time { return issued.Add(2 * time.Minute) })
	_, err = m.VerifyAccess(pair.AccessToken)
	assert.Error(t, err)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	pair, err := NewManager("secret-a", time.Minute, time.Hour).IssuePair("user-1", "user")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Minute, time.Hour).VerifyAccess(pair.AccessToken)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}

func TestPINHashing(t *testing.T) {
	hash, err := HashPIN("4821")
	require.NoError(t, err)
	assert.True(t, CheckPIN(hash, "4821"))
	assert.False(t, CheckPIN(hash, "0000"))
}
