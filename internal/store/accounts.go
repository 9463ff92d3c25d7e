package store

import (
	"errors" // Error inspection

	"mattress_money/internal/domain" // Entity records

	"github.com/shopspring/decimal" // Exact money amounts
	"gorm.io/gorm"                  // GORM ORM library
)

// Accounts persists money accounts
type Accounts struct {
	db *gorm.DB
}

// NewAccounts creates an account store
func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{db: db}
}

// Get returns the account matching (username, name, institution), or nil
func (s *Accounts) Get(username, name, institution string) (*domain.Account, error) {
	var account domain.Account
	err := s.db.
		Where("username = ? AND name = ? AND institution = ?", username, name, institution).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// List returns all of a user's accounts
func (s *Accounts) List(username string) ([]domain.Account, error) {
	var accounts []domain.Account
	err := s.db.Where("username = ?", username).Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// Create inserts a new account; ErrDuplicate when (username, name,
// institution) is taken
func (s *Accounts) Create(account *domain.Account) error {
	err := s.db.Create(account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// IncrementBalance applies delta to the account balance as a single atomic
// update and returns the updated account. Returns nil when no row matched.
// This is the only sanctioned mutation path for balances after creation.
func (s *Accounts) IncrementBalance(username, name, institution string, delta decimal.Decimal) (*domain.Account, error) {
	result := s.db.Model(&domain.Account{}).
		Where("username = ? AND name = ? AND institution = ?", username, name, institution).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return s.Get(username, name, institution)
}

// SumBalances returns the sum of all of a user's account balances
func (s *Accounts) SumBalances(username string) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := s.db.Model(&domain.Account{}).
		Where("username = ?", username).
		Select("COALESCE(SUM(balance), 0)").
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
