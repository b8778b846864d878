package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_1234567890"

func testClaims(role string) Claims {
	return Claims{
		UserID:    42,
		Name:      "Carlos Mendoza",
		Email:     "carlos@example.com",
		Role:      role,
		Country:   "Colombia",
		BirthDate: "15/04/1990",
		PhotoURL:  "uploads/carlos.png",
	}
}

func TestMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	maker := NewMaker(testSecret, time.Hour, 10*time.Minute)

	tests := []struct {
		name string
		role string
	}{
		{name: "admin user", role: "admin"},
		{name: "client user", role: "client"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testClaims(tt.role)
			token, err := maker.GenerateToken(in)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, in.UserID, claims.UserID)
			assert.Equal(t, in.Name, claims.Name)
			assert.Equal(t, in.Email, claims.Email)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, in.Country, claims.Country)
			assert.Equal(t, in.BirthDate, claims.BirthDate)
			assert.Equal(t, in.PhotoURL, claims.PhotoURL)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestMaker_ParseToken_InvalidTokens(t *testing.T) {
	maker := NewMaker(testSecret, time.Hour, 10*time.Minute)

	validToken, err := maker.GenerateToken(testClaims("client"))
	require.NoError(t, err)

	expiredMaker := NewMaker(testSecret, -time.Hour, 10*time.Minute)
	expiredToken, err := expiredMaker.GenerateToken(testClaims("client"))
	require.NoError(t, err)

	wrongSecretMaker := NewMaker("another_secret_key", time.Hour, 10*time.Minute)
	foreignToken, err := wrongSecretMaker.GenerateToken(testClaims("client"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: expiredToken},
		{name: "wrong secret key", token: foreignToken},
		{name: "tampered token", token: validToken + "tampered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestMaker_NeedsRefresh(t *testing.T) {
	shortMaker := NewMaker(testSecret, 5*time.Minute, 10*time.Minute)
	longMaker := NewMaker(testSecret, time.Hour, 10*time.Minute)

	shortToken, err := shortMaker.GenerateToken(testClaims("client"))
	require.NoError(t, err)
	longToken, err := longMaker.GenerateToken(testClaims("client"))
	require.NoError(t, err)

	shortClaims, err := shortMaker.ParseToken(shortToken)
	require.NoError(t, err)
	longClaims, err := longMaker.ParseToken(longToken)
	require.NoError(t, err)

	assert.True(t, shortMaker.NeedsRefresh(shortClaims),
		"token with less than the refresh window left must be refreshed")
	assert.False(t, longMaker.NeedsRefresh(longClaims))
}

func TestMaker_RefreshKeepsIdentity(t *testing.T) {
	maker := NewMaker(testSecret, time.Hour, 10*time.Minute)

	token, err := maker.GenerateToken(testClaims("admin"))
	require.NoError(t, err)
	claims, err := maker.ParseToken(token)
	require.NoError(t, err)

	// Повторная генерация по старым claims сохраняет профиль и обновляет сроки.
	refreshed, err := maker.GenerateToken(*claims)
	require.NoError(t, err)
	refreshedClaims, err := maker.ParseToken(refreshed)
	require.NoError(t, err)

	assert.Equal(t, claims.UserID, refreshedClaims.UserID)
	assert.Equal(t, claims.Email, refreshedClaims.Email)
	assert.Equal(t, claims.Role, refreshedClaims.Role)
	assert.False(t, refreshedClaims.ExpiresAt.Time.Before(claims.ExpiresAt.Time))
}
