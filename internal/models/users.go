package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Role — роль пользователя
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User — таблица users
type User struct {
	Base
	Email        string `gorm:"size:180;uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         Role   `gorm:"type:varchar(16);not null;default:'user'"`
}

// IsAdmin проверяет роль без учёта регистра
func (u *User) IsAdmin() bool {
	return strings.EqualFold(string(u.Role), string(RoleAdmin))
}

// SetPassword хэширует пароль и сохраняет хэш в модели
func (u *User) SetPassword(pw string) error {
	hash, err := HashPassword(pw)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// HashPassword превращает обычный пароль в безопасный хэш
func HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword проверяет пароль на совпадение с хэшем
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
