package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// JWTManager issues and verifies HS256 tokens bound to a user id.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{Secret: []byte(secret), TTL: ttl, now: time.Now}
}

// Claims carries the user id as the registered subject.
type Claims struct {
	jwt.RegisteredClaims
}

// VerifiedToken is what callers get back from Verify.
type VerifiedToken struct {
	Subject   string
	ExpiresAt time.Time
}

func (m *JWTManager) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

// Issue signs a token for subject that expires after TTL.
func (m *JWTManager) Issue(subject string) (string, time.Time, error) {
	now := m.clock()
	exp := now.Add(m.TTL)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

// Verify checks signature, algorithm and expiry. Expired tokens return
// ErrTokenExpired; every other failure returns ErrTokenInvalid.
func (m *JWTManager) Verify(_ context.Context, tokenStr string) (VerifiedToken, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(m.clock), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return VerifiedToken{}, ErrTokenExpired
		}
		return VerifiedToken{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !tkn.Valid || claims.Subject == "" {
		return VerifiedToken{}, ErrTokenInvalid
	}
	return VerifiedToken{Subject: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}
