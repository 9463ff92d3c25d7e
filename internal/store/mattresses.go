package store

import (
	"errors" // Error inspection

	"mattress_money/internal/domain" // Entity records

	"github.com/shopspring/decimal" // Exact money amounts
	"gorm.io/gorm"                  // GORM ORM library
)

// Mattresses persists mattress allocations
type Mattresses struct {
	db *gorm.DB
}

// NewMattresses creates a mattress store
func NewMattresses(db *gorm.DB) *Mattresses {
	return &Mattresses{db: db}
}

// Get returns the mattress matching (username, name), or nil
func (s *Mattresses) Get(username, name string) (*domain.Mattress, error) {
	var mattress domain.Mattress
	err := s.db.Where("username = ? AND name = ?", username, name).First(&mattress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mattress, nil
}

// List returns all of a user's mattresses
func (s *Mattresses) List(username string) ([]domain.Mattress, error) {
	var mattresses []domain.Mattress
	err := s.db.Where("username = ?", username).Find(&mattresses).Error
	if err != nil {
		return nil, err
	}
	return mattresses, nil
}

// Create inserts a new mattress; ErrDuplicate when (username, name) is taken
func (s *Mattresses) Create(mattress *domain.Mattress) error {
	err := s.db.Create(mattress).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// IncrementAmount applies delta to the mattress amount as a single atomic
// update and returns the updated mattress. Returns nil when no row matched.
func (s *Mattresses) IncrementAmount(username, name string, delta decimal.Decimal) (*domain.Mattress, error) {
	result := s.db.Model(&domain.Mattress{}).
		Where("username = ? AND name = ?", username, name).
		Update("amount", gorm.Expr("amount + ?", delta))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return s.Get(username, name)
}

// Update applies a sparse field patch to the mattress with the given id,
// scoped to the owning user. Returns the number of rows patched.
func (s *Mattresses) Update(id uint, username string, fields map[string]any) (int64, error) {
	result := s.db.Model(&domain.Mattress{}).
		Where("id = ? AND username = ?", id, username).
		Updates(fields)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return 0, ErrDuplicate
	}
	return result.RowsAffected, result.Error
}

// Delete removes the mattress with the given id, scoped to the owning user.
// Returns the number of rows deleted.
func (s *Mattresses) Delete(id uint, username string) (int64, error) {
	result := s.db.Where("id = ? AND username = ?", id, username).Delete(&domain.Mattress{})
	return result.RowsAffected, result.Error
}

// SumAmounts returns the sum of all of a user's mattress amounts
func (s *Mattresses) SumAmounts(username string) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := s.db.Model(&domain.Mattress{}).
		Where("username = ?", username).
		Select("COALESCE(SUM(amount), 0)").
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
