package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(TokenConfig{
		Secret:     "test-secret",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService(TokenConfig{})
	require.Error(t, err)
}

func TestNewTokenServiceRejectsUnknownAlgorithm(t *testing.T) {
	_, err := NewTokenService(TokenConfig{Secret: "s", Algorithm: "none-such"})
	require.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)

	result, err := svc.CreateAccessToken("u-1")
	require.NoError(t, err)
	assert.Empty(t, result.JTI)

	payload, err := svc.Decode(result.Token, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "u-1", payload.UserID)
	assert.Equal(t, TokenTypeAccess, payload.Type)
	assert.WithinDuration(t, result.ExpiresAt, payload.ExpiresAt, time.Second)
}

func TestRefreshTokenCarriesJTI(t *testing.T) {
	svc := newTestTokenService(t)

	result, err := svc.CreateRefreshToken("u-1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.JTI)

	payload, err := svc.Decode(result.Token, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, result.JTI, payload.JTI)
}

func TestDecodeRejectsTypeMismatch(t *testing.T) {
	svc := newTestTokenService(t)

	access, err := svc.CreateAccessToken("u-1")
	require.NoError(t, err)
	refresh, err := svc.CreateRefreshToken("u-1")
	require.NoError(t, err)

	_, err = svc.Decode(access.Token, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.Decode(refresh.Token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsExpiredToken(t *testing.T) {
	svc := newTestTokenService(t)

	result, err := svc.CreateAccessToken("u-1")
	require.NoError(t, err)

	// Move the validation clock past expiry.
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Decode(result.Token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	svc := newTestTokenService(t)
	other, err := NewTokenService(TokenConfig{Secret: "different", AccessTTL: time.Hour})
	require.NoError(t, err)

	result, err := other.CreateAccessToken("u-1")
	require.NoError(t, err)

	_, err = svc.Decode(result.Token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStaticTokenPassThrough(t *testing.T) {
	svc, err := NewTokenService(TokenConfig{
		Secret:       "s",
		AccessTTL:    time.Hour,
		StaticTokens: map[string]string{"test-static": "u-static"},
	})
	require.NoError(t, err)

	payload, err := svc.Decode("test-static", TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "u-static", payload.UserID)

	// Static tokens never work as refresh tokens.
	_, err = svc.Decode("test-static", TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
