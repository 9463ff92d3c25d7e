package store

import (
	"time" // Expiry comparisons

	"mattress_money/internal/domain" // Entity records

	"gorm.io/gorm" // GORM ORM library
)

// Tokens persists login tokens
type Tokens struct {
	db *gorm.DB
}

// NewTokens creates a login token store
func NewTokens(db *gorm.DB) *Tokens {
	return &Tokens{db: db}
}

// Create inserts a new login token
func (s *Tokens) Create(token *domain.LoginToken) error {
	return s.db.Create(token).Error
}

// ActiveForUser returns the user's non-expired tokens.
// MongoDB handled expiry with a TTL index; here expired rows are simply
// excluded from the query and cleaned up by PurgeExpired.
func (s *Tokens) ActiveForUser(username string) ([]domain.LoginToken, error) {
	var tokens []domain.LoginToken
	err := s.db.
		Where("username = ? AND expires_at > ?", username, time.Now().UTC()).
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// PurgeExpired deletes tokens past their expiry
func (s *Tokens) PurgeExpired() error {
	return s.db.
		Where("expires_at <= ?", time.Now().UTC()).
		Delete(&domain.LoginToken{}).Error
}
