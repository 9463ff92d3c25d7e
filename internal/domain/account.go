package domain

import (
	"strings" // Case-insensitive reserved name check

	"github.com/shopspring/decimal" // Exact money amounts
)

// OutsideName is the reserved pseudo-account/institution marking money that
// enters or leaves the tracked system. It has no stored balance.
const OutsideName = "Outside"

// IsOutside reports whether name refers to the reserved Outside account
func IsOutside(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), OutsideName)
}

// ValidAccountTypes lists the accepted account types
var ValidAccountTypes = []string{"Checking", "Savings", "Credit", "Investment", "Loan"}

// IsValidAccountType reports whether t is one of the accepted account types
func IsValidAccountType(t string) bool {
	for _, v := range ValidAccountTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Account Model. Balance is only ever mutated through the ledger's
// atomic increment; it is written directly at creation time only.
type Account struct {
	ID          uint            `gorm:"primaryKey" json:"-"`                                      // Primary key
	Username    string          `gorm:"uniqueIndex:idx_account_owner_name;not null" json:"username"` // Owning username
	Name        string          `gorm:"uniqueIndex:idx_account_owner_name;not null" json:"name"`     // Account name
	Institution string          `gorm:"uniqueIndex:idx_account_owner_name;not null" json:"institution"` // Institution name
	Balance     decimal.Decimal `gorm:"type:decimal(13,2);not null" json:"balance"`               // Current balance
	Type        string          `gorm:"not null" json:"type"`                                     // One of ValidAccountTypes
}
