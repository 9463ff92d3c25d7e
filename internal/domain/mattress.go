package domain

import (
	"strings" // Case-insensitive reserved name check

	"github.com/shopspring/decimal" // Exact money amounts
)

// UnallocatedName is the reserved name of the virtual mattress holding
// whatever portion of the user's total balance no named mattress claims.
// It is computed, never stored.
const UnallocatedName = "unallocated"

// IsUnallocated reports whether name refers to the virtual unallocated mattress
func IsUnallocated(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), UnallocatedName)
}

// Mattress Model. A named sub-allocation ("envelope") of already-deposited
// funds, independent of which account physically holds the money.
type Mattress struct {
	ID        uint            `gorm:"primaryKey" json:"_id"`                                        // Primary key
	Username  string          `gorm:"uniqueIndex:idx_mattress_owner_name;not null" json:"username"` // Owning username
	Name      string          `gorm:"uniqueIndex:idx_mattress_owner_name;not null" json:"name"`     // Mattress name
	MaxAmount decimal.Decimal `gorm:"type:decimal(13,2);not null" json:"maxAmount"`                 // Target ceiling
	Amount    decimal.Decimal `gorm:"type:decimal(13,2);not null" json:"amount"`                    // Currently earmarked amount
}
