package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const organizerTokenTTL = 12 * time.Hour

// AuthService issues organizer session tokens. There is a single shared
// organizer password; mutating endpoints require the token it unlocks.
type AuthService interface {
	Login(ctx context.Context, password string) (string, error)
}

type authService struct {
	passwordHash []byte
	jwtSecret    []byte
}

// NewAuthService hashes the configured organizer password once at startup
// so the plaintext never sits in memory longer than necessary.
func NewAuthService(organizerPassword, jwtSecret string) (AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(organizerPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash organizer password: %w", err)
	}
	return &authService{
		passwordHash: hash,
		jwtSecret:    []byte(jwtSecret),
	}, nil
}

func (s *authService) Login(_ context.Context, password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrAuthInvalidCredentials
		}
		return "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"role": "organizer",
		"iat":  now.Unix(),
		"exp":  now.Add(organizerTokenTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}
