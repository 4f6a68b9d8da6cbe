package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rryowa/foodsafer/internal/storage/memory"
	"github.com/rryowa/foodsafer/internal/util"
)

func newTestTokenService(accessTTL time.Duration) *TokenService {
	return NewTokenService(&util.TokenConfig{
		JwtSecretKey: []byte("test-secret"),
		AccessTTL:    accessTTL,
		RefreshTTL:   time.Hour,
	}, memory.NewTokenStorage())
}

func TestAccessToken_RoundTrip(t *testing.T) {
	ts := newTestTokenService(time.Minute)

	token, jti, err := ts.CreateAccessToken(42, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	userID, err := ts.VerifyAccessToken(t.Context(), token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)
}

func TestAccessToken_Expired(t *testing.T) {
	ts := newTestTokenService(time.Minute)

	token, _, err := ts.CreateAccessToken(42, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ts.VerifyAccessToken(t.Context(), token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestAccessToken_WrongKeyOrAlgorithm(t *testing.T) {
	ts := newTestTokenService(time.Minute)

	other := newTestTokenService(time.Minute)
	other.secret = []byte("another-secret")
	forged, _, err := other.CreateAccessToken(42, time.Now())
	require.NoError(t, err)

	_, err = ts.VerifyAccessToken(t.Context(), forged)
	require.ErrorIs(t, err, ErrTokenInvalid)

	hs256 := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	signed, err := hs256.SignedString(ts.secret)
	require.NoError(t, err)

	_, err = ts.VerifyAccessToken(t.Context(), signed)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessToken_Revoked(t *testing.T) {
	ts := newTestTokenService(time.Minute)

	token, _, err := ts.CreateAccessToken(42, time.Now())
	require.NoError(t, err)
	require.NoError(t, ts.RevokeAccessToken(t.Context(), token))

	_, err = ts.VerifyAccessToken(t.Context(), token)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefreshToken(t *testing.T) {
	ts := newTestTokenService(time.Minute)

	token, selector, hash, err := ts.CreateRefreshToken()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, selector+"."))

	gotSelector, verifier, err := ts.SplitRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, selector, gotSelector)
	assert.NotContains(t, hash, verifier)

	require.NoError(t, ts.ValidateRefreshToken(verifier, hash))
	require.ErrorIs(t, ts.ValidateRefreshToken(verifier+"x", hash), ErrTokenInvalid)

	for _, bad := range []string{"", "nodot", ".verifier", "selector.", "a.b.c"} {
		_, _, err := ts.SplitRefreshToken(bad)
		assert.ErrorIs(t, err, ErrTokenMalformed, bad)
	}
}
