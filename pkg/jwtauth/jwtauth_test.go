package jwtauth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	p := NewProvider("unit-secret", time.Hour, 24*time.Hour)

	token, err := p.GenerateAccessToken("m1", "m1@example.com", "MEMBER")
	require.NoError(t, err)

	claims, err := p.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "m1", claims.MemberID)
	assert.Equal(t, "m1@example.com", claims.Email)
	assert.Equal(t, "MEMBER", claims.Role)
}

func TestTokenTypeSeparation(t *testing.T) {
	p := NewProvider("unit-secret", time.Hour, 24*time.Hour)

	access, err := p.GenerateAccessToken("m1", "m1@example.com", "MEMBER")
	require.NoError(t, err)
	refresh, err := p.GenerateRefreshToken("m1", "m1@example.com", "MEMBER")
	require.NoError(t, err)

	_, err = p.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = p.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	p := NewProvider("unit-secret", -time.Minute, 24*time.Hour)

	token, err := p.GenerateAccessToken("m1", "m1@example.com", "MEMBER")
	require.NoError(t, err)

	_, err = p.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestWrongSecretRejected(t *testing.T) {
	p := NewProvider("unit-secret", time.Hour, 24*time.Hour)
	other := NewProvider("other-secret", time.Hour, 24*time.Hour)

	token, err := p.GenerateAccessToken("m1", "m1@example.com", "MEMBER")
	require.NoError(t, err)

	_, err = other.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpiration(t *testing.T) {
	p := NewProvider("unit-secret", time.Hour, 24*time.Hour)

	token, err := p.GenerateAccessToken("m1", "m1@example.com", "MEMBER")
	require.NoError(t, err)

	exp, err := p.TokenExpiration(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)
}

func TestHashToken(t *testing.T) {
	k1 := HashToken("token-a")
	k2 := HashToken("token-b")
	assert.True(t, strings.HasPrefix(k1, "bl:"))
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, HashToken("token-a"))
}
