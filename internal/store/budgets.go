package store

import (
	"errors" // Error inspection
	"time"   // Period containment queries

	"mattress_money/internal/domain" // Entity records

	"gorm.io/gorm" // GORM ORM library
)

// Budgets persists budget templates and their materialized instances
type Budgets struct {
	db *gorm.DB
}

// NewBudgets creates a budget store
func NewBudgets(db *gorm.DB) *Budgets {
	return &Budgets{db: db}
}

// CreateTemplate inserts a new budget template; ErrDuplicate when the user
// already has a template with that name
func (s *Budgets) CreateTemplate(template *domain.BudgetTemplate) error {
	err := s.db.Create(template).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// TemplateByName returns the user's template with the given budget name, or nil
func (s *Budgets) TemplateByName(username, budgetName string) (*domain.BudgetTemplate, error) {
	var template domain.BudgetTemplate
	err := s.db.Where("username = ? AND budget_name = ?", username, budgetName).First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// TemplateNames returns the names of all of the user's budget templates
func (s *Budgets) TemplateNames(username string) ([]string, error) {
	var names []string
	err := s.db.Model(&domain.BudgetTemplate{}).
		Where("username = ?", username).
		Order("budget_name asc").
		Pluck("budget_name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// InstanceContaining returns the budget instance whose period contains date,
// or nil when no instance has been materialized for that period yet
func (s *Budgets) InstanceContaining(username, budgetName string, date time.Time) (*domain.BudgetInstance, error) {
	var instance domain.BudgetInstance
	err := s.db.
		Where("username = ? AND budget_name = ? AND start_date <= ? AND end_date >= ?",
			username, budgetName, date, date).
		First(&instance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

// CreateInstance persists a newly materialized budget instance
func (s *Budgets) CreateInstance(instance *domain.BudgetInstance) error {
	return s.db.Create(instance).Error
}
