package service

import (
	"context"
	"time"

	"session_auth/internal/models"
	"session_auth/internal/repository"
	"session_auth/internal/session"
)

type Authorization interface {
	Register(ctx context.Context, username, password string) (models.User, error)
	LookupUser(ctx context.Context, username string) (*models.User, error)
	CheckPassword(u *models.User, password string) error
}

// Sessions exposes the session lifecycle by id.
type Sessions interface {
	Start(ctx context.Context, u models.User) (models.Session, error)
	Current(ctx context.Context, id string) (*models.Session, error)
	End(ctx context.Context, id string) (bool, error)
}

// Options tunes the concrete services.
type Options struct {
	BcryptCost int
	SessionTTL time.Duration
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Sessions
}

func NewService(repos *repository.Repository, store session.Store, opts Options) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Users, opts.BcryptCost),
		Sessions:      NewSessionService(store, opts.SessionTTL),
	}
}
