package store

import (
	"errors" // Error values
	"time"   // Date range queries

	"mattress_money/internal/domain" // Entity records

	"gorm.io/gorm" // GORM ORM library
)

// Fields exposed to distinct-value queries. Anything else is rejected so the
// API layer can never turn a request parameter into arbitrary SQL.
var distinctTransactionFields = map[string]bool{
	"tag":      true,
	"location": true,
}

// Transactions persists ledger entries
type Transactions struct {
	db *gorm.DB
}

// NewTransactions creates a transaction store
func NewTransactions(db *gorm.DB) *Transactions {
	return &Transactions{db: db}
}

// Create inserts a new transaction
func (s *Transactions) Create(tx *domain.Transaction) error {
	return s.db.Create(tx).Error
}

// Get returns the transaction with the given id, scoped to the owning user,
// or nil when no such row exists
func (s *Transactions) Get(id uint, username string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := s.db.Where("id = ? AND username = ?", id, username).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// List returns all of a user's transactions ordered by date then amount
func (s *Transactions) List(username string) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := s.db.
		Where("username = ?", username).
		Order("date asc, amount asc").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// ListWithinRange returns the user's transactions with start <= date <= end
func (s *Transactions) ListWithinRange(username string, start, end time.Time) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := s.db.
		Where("username = ? AND date >= ? AND date <= ?", username, start, end).
		Order("date asc, amount asc").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// Update applies a sparse field patch to the transaction with the given id,
// scoped to the owning user. Returns the number of rows patched.
func (s *Transactions) Update(id uint, username string, fields map[string]any) (int64, error) {
	result := s.db.Model(&domain.Transaction{}).
		Where("id = ? AND username = ?", id, username).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// Delete removes the transaction with the given id, scoped to the owning
// user. Returns the number of rows deleted.
func (s *Transactions) Delete(id uint, username string) (int64, error) {
	result := s.db.Where("id = ? AND username = ?", id, username).Delete(&domain.Transaction{})
	return result.RowsAffected, result.Error
}

// Distinct returns the distinct values of a whitelisted field across the
// user's transactions
func (s *Transactions) Distinct(username, field string) ([]string, error) {
	if !distinctTransactionFields[field] {
		return nil, errors.New("field not exposed for distinct queries: " + field)
	}
	var values []string
	err := s.db.Model(&domain.Transaction{}).
		Where("username = ?", username).
		Distinct(field).
		Order(field + " asc").
		Pluck(field, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}
