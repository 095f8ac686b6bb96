package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, expires, err := svc.GenerateToken(42, "dispatcher")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "dispatcher", claims.Username)
	assert.Equal(t, issuer, claims.Issuer)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("secret", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := svc.GenerateToken(1, "old")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.True(t, errors.Is(err, ErrTokenExpired), err)
}

func TestTokenService_WrongKey(t *testing.T) {
	token, _, err := NewTokenService("one", time.Hour).GenerateToken(1, "u")
	require.NoError(t, err)

	_, err = NewTokenService("two", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenService_Malformed(t *testing.T) {
	_, err := NewTokenService("secret", time.Hour).ValidateToken("not-a-token")
	assert.True(t, errors.Is(err, ErrTokenMalformed), err)
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).ValidateToken(signed)
	assert.Error(t, err)
}
