package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/attendance-tracker/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// adminSubject is the JWT subject of every admin session.
const adminSubject = "admin"

// AuthService checks the admin password and issues short-lived session tokens.
type AuthService struct {
	passwordHash  []byte
	sessionSecret []byte
	sessionTTL    time.Duration
}

// NewAuthService creates a new AuthService from a bcrypt password hash.
func NewAuthService(passwordHash, sessionSecret string, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		passwordHash:  []byte(passwordHash),
		sessionSecret: []byte(sessionSecret),
		sessionTTL:    sessionTTL,
	}
}

// HashPassword hashes a plaintext admin password with bcrypt.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login verifies the admin password and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", domain.ErrUnauthorized
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.sessionSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// ValidateToken checks a session token's signature, expiry and subject.
func (s *AuthService) ValidateToken(tokenString string) error {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.sessionSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return domain.ErrUnauthorized
	}
	if claims.Subject != adminSubject {
		return domain.ErrUnauthorized
	}
	return nil
}
