package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	models "storefront/internal/models"
)

// ErrEmailTaken — такой email уже зарегистрирован
var ErrEmailTaken = errors.New("store: email already registered")

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (s *Users) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find user %d: %w", id, err)
	}
	return &u, nil
}

// FindByEmail сравнивает email в нижнем регистре
func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find user by email: %w", err)
	}
	return &u, nil
}

// Create возвращает ErrEmailTaken для занятого email
func (s *Users) Create(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	var cnt int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", u.Email).Count(&cnt).Error; err != nil {
		return fmt.Errorf("store: check email: %w", err)
	}
	if cnt > 0 {
		return ErrEmailTaken
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("store: create user: %w", err)
	}
	return nil
}

// UpdatePassword пишет только хэш
func (s *Users) UpdatePassword(ctx context.Context, u *models.User) error {
	err := s.db.WithContext(ctx).Model(u).Update("password_hash", u.PasswordHash).Error
	if err != nil {
		return fmt.Errorf("store: update password %d: %w", u.ID, err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
