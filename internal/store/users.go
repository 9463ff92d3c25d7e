// Package store is the document-store adapter: typed, owner-scoped CRUD over
// the application's collections, backed by GORM. Lookups return (nil, nil)
// when no row matches so callers can distinguish "missing" from "store down".
package store

import (
	"errors" // Error inspection

	"mattress_money/internal/domain" // Entity records

	"gorm.io/gorm" // GORM ORM library
)

// ErrDuplicate is returned when a create violates a unique index
var ErrDuplicate = errors.New("item already exists")

// Users persists user records
type Users struct {
	db *gorm.DB
}

// NewUsers creates a user store
func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// ByUsername returns the user with the given (lowercase) username, or nil
func (s *Users) ByUsername(username string) (*domain.User, error) {
	var user domain.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ByEmail returns the user with the given (lowercase) email, or nil
func (s *Users) ByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user; ErrDuplicate when the username or email is taken
func (s *Users) Create(user *domain.User) error {
	err := s.db.Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
