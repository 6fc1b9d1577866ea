package game

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Admin is a registered user. Username doubles as the display name used in
// slicer keys and never changes after creation.
type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

var ErrEmptyPassword = errors.New("game: empty password")

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NewAdmin builds an unsaved administrator with a hashed password.
func NewAdmin(username, password string) (Admin, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return Admin{}, err
	}
	return Admin{
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		IsAdmin:      true,
		CreatedAt:    time.Now(),
	}, nil
}

// SetPassword replaces the stored hash.
func (a *Admin) SetPassword(password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (a Admin) CheckPassword(password string) bool {
	if a.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
