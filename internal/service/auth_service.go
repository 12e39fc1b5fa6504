package service

import (
	"context"
	"errors"
	"fmt"

	"session_auth/internal/models"
	"session_auth/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 12

// ErrInvalidCredentials covers both an unknown user and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles user registration and password checks.
type AuthService struct {
	users repository.Users
	cost  int
}

func NewAuthService(users repository.Users, cost int) *AuthService {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	return &AuthService{users: users, cost: cost}
}

// Register hashes password and stores a new user. The returned user carries the hash;
// callers must not expose it.
func (s *AuthService) Register(ctx context.Context, username, password string) (models.User, error) {
	hash, err := s.hashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.users.Add(ctx, models.User{Username: username, PasswordHash: hash})
	if err != nil {
		return models.User{}, fmt.Errorf("register %q: %w", username, err)
	}
	return u, nil
}

// LookupUser returns the stored user or (nil, nil) if none matches.
func (s *AuthService) LookupUser(ctx context.Context, username string) (*models.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", username, err)
	}
	return u, nil
}

// CheckPassword compares password against the user's stored hash.
func (s *AuthService) CheckPassword(u *models.User, password string) error {
	if u == nil {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
