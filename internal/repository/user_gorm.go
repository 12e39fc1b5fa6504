package repository

import (
	"context"
	"errors"
	"fmt"

	"session_auth/internal/models"

	"gorm.io/gorm"
)

// UserGorm stores users through gorm. Open the handle with TranslateError
// enabled so unique violations surface as gorm.ErrDuplicatedKey.
type UserGorm struct {
	db *gorm.DB
}

func NewUserGorm(db *gorm.DB) *UserGorm {
	return &UserGorm{db: db}
}

var _ Users = (*UserGorm)(nil)

func (r *UserGorm) Add(ctx context.Context, u models.User) (models.User, error) {
	if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, fmt.Errorf("insert user %q: %w", u.Username, ErrUsernameTaken)
		}
		return models.User{}, fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	return u, nil
}

func (r *UserGorm) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return &u, nil
}
