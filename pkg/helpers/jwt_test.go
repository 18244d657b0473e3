package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	tok, exp, err := m.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, err := m.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.Subject)
	assert.Equal(t, exp.Unix(), got.ExpiresAt.Unix())
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := m.Issue("user-1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTManager_Invalid(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)
	foreign, _, err := other.Issue("user-1")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	noExpTok, err := noExp.SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   foreign,
		"alg none":       unsigned,
		"missing expiry": noExpTok,
		"empty":          "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(context.Background(), tok)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}
