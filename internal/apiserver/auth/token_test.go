package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func newTokenService(t *testing.T, secret string) *TokenService {
	t.Helper()
	s, err := NewTokenService(TokenConfig{Secret: secret, TTL: 30 * time.Minute, Issuer: "test"})
	require.NoError(t, err)
	return s.WithClock(fixedClock(t0))
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService(TokenConfig{TTL: time.Minute})
	assert.Error(t, err)

	_, err = NewTokenService(TokenConfig{Secret: "x", TTL: -time.Second})
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTokenService(t, testSecret)

	token, exp, err := s.Issue("alice@example.com", "u-1", model.UserRoleManager)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(30*time.Minute), exp)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, model.UserRoleManager, claims.Role)
	assert.Equal(t, t0, claims.IssuedAt.Time.UTC())
}

func TestTokenExpiry(t *testing.T) {
	s := newTokenService(t, testSecret)

	zero, _, err := s.IssueWithTTL("alice@example.com", "u-1", model.UserRoleViewer, 0)
	require.NoError(t, err)
	_, err = s.Verify(zero)
	assert.ErrorIs(t, err, ErrInvalidToken, "ttl=0 must be invalid immediately")

	token, _, err := s.Issue("alice@example.com", "u-1", model.UserRoleViewer)
	require.NoError(t, err)

	_, err = s.WithClock(fixedClock(t0.Add(29 * time.Minute))).Verify(token)
	assert.NoError(t, err)

	_, err = s.WithClock(fixedClock(t0.Add(30 * time.Minute))).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "now == exp is expired")

	_, err = s.WithClock(fixedClock(t0.Add(31 * time.Minute))).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsTampering(t *testing.T) {
	s := newTokenService(t, testSecret)
	token, _, err := s.Issue("alice@example.com", "u-1", model.UserRoleViewer)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[10] == 'a' {
		sig[10] = 'b'
	} else {
		sig[10] = 'a'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = s.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 用其他密钥签发的令牌
	other := newTokenService(t, "another-secret-0123456789abcdef")
	foreign, _, err := other.Issue("alice@example.com", "u-1", model.UserRoleAdmin)
	require.NoError(t, err)
	_, err = s.Verify(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsOtherAlgorithms(t *testing.T) {
	s := newTokenService(t, testSecret)
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@example.com",
			ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour)),
		},
		UserID: "u-1",
		Role:   model.UserRoleAdmin,
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = s.Verify(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsMalformedAndIncomplete(t *testing.T) {
	s := newTokenService(t, testSecret)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := s.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}

	// 缺少 user_id
	partial, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "alice@example.com",
		"role": "viewer",
		"exp":  t0.Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = s.Verify(partial)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 缺少 exp
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice@example.com", "user_id": "u-1", "role": "viewer",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = s.Verify(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = s.Issue("", "u-1", model.UserRoleViewer)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, _, err = s.Issue("a@example.com", "u-1", model.UserRole("root"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
