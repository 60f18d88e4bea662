package service

import (
	"testing"
	"time"

	"github.com/yourorg/kap-news/internal/config"
	"github.com/yourorg/kap-news/internal/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-0123456789"

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(config.AdminConfig{
		Username:     "admin@kaphaber.com",
		PasswordHash: string(hash),
		JWTSecret:    testSecret,
		TokenTTL:     time.Hour,
	}, zap.NewNop())
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	s := newTestAuthService(t)

	resp, err := s.Login(&model.AdminLogin{Username: "admin@kaphaber.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "admin@kaphaber.com", resp.Username)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)

	subject, err := s.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@kaphaber.com", subject)
}

func TestAuthService_RejectsBadCredentials(t *testing.T) {
	s := newTestAuthService(t)

	_, err := s.Login(&model.AdminLogin{Username: "admin@kaphaber.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(&model.AdminLogin{Username: "someone", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	disabled := NewAuthService(config.AdminConfig{Username: "admin", JWTSecret: testSecret}, zap.NewNop())
	_, err = disabled.Login(&model.AdminLogin{Username: "admin", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RejectsBadTokens(t *testing.T) {
	s := newTestAuthService(t)

	sign := func(claims jwt.MapClaims, secret string) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return tok
	}
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign(jwt.MapClaims{"sub": "a", "exp": future, "type": "access"}, "another-secret-0123456")},
		{"expired", sign(jwt.MapClaims{"sub": "a", "exp": time.Now().Add(-time.Minute).Unix(), "type": "access"}, testSecret)},
		{"refresh type", sign(jwt.MapClaims{"sub": "a", "exp": future, "type": "refresh"}, testSecret)},
		{"no subject", sign(jwt.MapClaims{"exp": future, "type": "access"}, testSecret)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
