package domain

import (
	"database/sql/driver" // Valuer interface for the line items column
	"encoding/json"       // JSON encoding for the line items column
	"errors"              // Error values
	"time"                // Budget period bounds

	"github.com/shopspring/decimal" // Exact money amounts
)

// Budget recurrence periods
const (
	RecurrenceMonthly = "monthly"
	RecurrenceYearly  = "yearly"
)

// IsValidRecurrence reports whether r is an accepted recurrence period
func IsValidRecurrence(r string) bool {
	return r == RecurrenceMonthly || r == RecurrenceYearly
}

// LineItem is one budgeted tag with its per-period amount
type LineItem struct {
	Tag    string          `json:"tag"`    // Transaction tag the line matches
	Amount decimal.Decimal `json:"amount"` // Budgeted amount for the period
}

// LineItems is a list of line items stored as a JSON column
type LineItems []LineItem

// Value marshals the line items for storage
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		l = LineItems{}
	}
	return json.Marshal(l)
}

// Scan unmarshals the line items from storage
func (l *LineItems) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = LineItems{}
		return nil
	}
	return errors.New("unsupported line items column type")
}

// BudgetTemplate Model. The recurring definition a user creates once; concrete
// per-period instances are materialized from it on demand.
type BudgetTemplate struct {
	ID         uint      `gorm:"primaryKey" json:"-"`                                        // Primary key
	Username   string    `gorm:"uniqueIndex:idx_budget_owner_name;not null" json:"username"` // Owning username
	BudgetName string    `gorm:"uniqueIndex:idx_budget_owner_name;not null" json:"budgetName"` // Unique budget name per user
	Recurrence string    `gorm:"not null" json:"recurrence"`                                 // monthly or yearly
	LineItems  LineItems `gorm:"type:json" json:"lineItems"`                                 // Budgeted tags and amounts
}

// BudgetInstance Model. One concrete period's copy of a template, immutable
// once created.
type BudgetInstance struct {
	ID         uint      `gorm:"primaryKey" json:"-"`            // Primary key
	Username   string    `gorm:"index;not null" json:"username"` // Owning username
	BudgetName string    `gorm:"index;not null" json:"budgetName"` // Budget name
	Recurrence string    `gorm:"not null" json:"recurrence"`     // monthly or yearly
	StartDate  time.Time `gorm:"not null" json:"startDate"`      // First day of the period (UTC)
	EndDate    time.Time `gorm:"not null" json:"endDate"`        // Last day of the period (UTC)
	LineItems  LineItems `gorm:"type:json" json:"lineItems"`     // Copied from the template at materialization
}
