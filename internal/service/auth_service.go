package service

import (
	"errors"
	"time"

	"github.com/yourorg/kap-news/internal/config"
	"github.com/yourorg/kap-news/internal/model"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for a wrong username or password
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned for an unusable admin token
	ErrInvalidToken = errors.New("invalid token")
)

// AuthService authenticates the admin panel user and issues access tokens
type AuthService struct {
	cfg    config.AdminConfig
	now    func() time.Time
	logger *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(cfg config.AdminConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// Login verifies the credentials and returns a signed access token
func (s *AuthService) Login(login *model.AdminLogin) (*model.TokenResponse, error) {
	// No configured hash means admin login is disabled
	if s.cfg.PasswordHash == "" || login.Username != s.cfg.Username {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(login.Password)); err != nil {
		s.logger.Debug("password verification failed", zap.Error(err))
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.TokenTTL)
	claims := jwt.MapClaims{
		"sub":  login.Username,
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
		"type": "access",
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return nil, err
	}

	return &model.TokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Username:    login.Username,
	}, nil
}

// ValidateToken validates an access token and returns its subject
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if tokenType, ok := claims["type"].(string); !ok || tokenType != "access" {
		return "", ErrInvalidToken
	}
	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", ErrInvalidToken
	}

	return subject, nil
}
