package repository

import (
	"context"
	"database/sql"
	"errors"

	"session_auth/internal/models"

	"gorm.io/gorm"
)

// ErrUsernameTaken is returned by Add when the unique username constraint rejects the insert.
var ErrUsernameTaken = errors.New("username taken")

// Users is the persistent user store.
type Users interface {
	// Add persists u (PasswordHash already set) and returns the stored record with its ID.
	Add(ctx context.Context, u models.User) (models.User, error)
	// FindByUsername returns (nil, nil) if no user matches.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type Repository struct {
	Users Users
}

// NewRepository wires repositories backed by a database/sql SQLite handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users: NewUserSQLite(db),
	}
}

// NewGormRepository wires repositories backed by gorm (Postgres).
func NewGormRepository(db *gorm.DB) *Repository {
	return &Repository{
		Users: NewUserGorm(db),
	}
}
