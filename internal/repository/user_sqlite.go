package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"session_auth/internal/models"
)

type UserSQLite struct {
	db *sql.DB
}

func NewUserSQLite(db *sql.DB) *UserSQLite {
	return &UserSQLite{db: db}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserSQLite)(nil)

const (
	insertUserSQL           = `INSERT INTO users (username, password_hash) VALUES (?, ?)`
	selectUserByUsernameSQL = `SELECT id, username, password_hash FROM users WHERE username = ?`

	sqliteUniqueViolation = "UNIQUE constraint failed"
)

// Add inserts a new user and returns it with the generated ID.
func (r *UserSQLite) Add(ctx context.Context, u models.User) (models.User, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL, u.Username, u.PasswordHash)
	if err != nil {
		if strings.Contains(err.Error(), sqliteUniqueViolation) {
			return models.User{}, fmt.Errorf("insert user %q: %w", u.Username, ErrUsernameTaken)
		}
		return models.User{}, fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("get last insert id for user %q: %w", u.Username, err)
	}
	u.ID = int(lastID)
	return u, nil
}

// FindByUsername fetches a user by username. Returns (nil, nil) if not found.
func (r *UserSQLite) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, selectUserByUsernameSQL, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return &u, nil
}
