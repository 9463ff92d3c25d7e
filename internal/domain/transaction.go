package domain

import (
	"time" // Transaction dates (UTC day granularity)

	"github.com/shopspring/decimal" // Exact money amounts
)

// Transaction Model. Amount is always a non-negative magnitude; direction is
// encoded by which side is the reserved Outside account. Source and
// destination can never both be Outside.
type Transaction struct {
	ID                     uint            `gorm:"primaryKey" json:"_id"`              // Primary key
	Username               string          `gorm:"index;not null" json:"username"`     // Owning username
	Date                   time.Time       `gorm:"index;not null" json:"date"`         // UTC calendar day
	Location               string          `gorm:"not null" json:"location"`           // Where the transaction happened
	SourceAccount          string          `gorm:"not null" json:"sourceAccount"`      // Source account name (or Outside)
	SourceInstitution      string          `gorm:"not null" json:"sourceInstitution"`  // Source institution (or Outside)
	DestinationAccount     string          `gorm:"not null" json:"destinationAccount"` // Destination account name (or Outside)
	DestinationInstitution string          `gorm:"not null" json:"destinationInstitution"` // Destination institution (or Outside)
	Tag                    string          `gorm:"index;not null" json:"tag"`          // Budget/category tag
	Amount                 decimal.Decimal `gorm:"type:decimal(13,2);not null" json:"amount"` // Non-negative magnitude
	Description            string          `json:"description"`                        // Free-form description (optional)
	Mattress               string          `json:"mattress,omitempty"`                 // Attached mattress name (optional)
	IsPaycheck             bool            `json:"isPaycheck"`                         // Paycheck transaction flag

	// Paycheck breakdown. Only populated when IsPaycheck is set; earnings is
	// the gross figure, the rest are withholdings.
	Earnings             decimal.NullDecimal `gorm:"type:decimal(13,2)" json:"earnings,omitempty"`             // Gross earnings
	StateTaxes           decimal.NullDecimal `gorm:"type:decimal(13,2)" json:"stateTaxes,omitempty"`           // State tax withholding
	FederalTaxes         decimal.NullDecimal `gorm:"type:decimal(13,2)" json:"federalTaxes,omitempty"`         // Federal tax withholding
	Healthcare           decimal.NullDecimal `gorm:"type:decimal(13,2)" json:"healthcare,omitempty"`           // Healthcare deduction
	Vision               decimal.NullDecimal `gorm:"type:decimal(13,2)" json:"vision,omitempty"`               // Vision deduction
	Dental               decimal.NullDecimal `gorm:"type:decimal(13,2)" json:"dental,omitempty"`               // Dental deduction
	K401                 decimal.NullDecimal `gorm:"column:k401;type:decimal(13,2)" json:"401k,omitempty"`     // 401k contribution
	HSA                  decimal.NullDecimal `gorm:"type:decimal(13,2)" json:"hsa,omitempty"`                  // HSA contribution
	RothIRA              decimal.NullDecimal `gorm:"type:decimal(13,2)" json:"rothIRA,omitempty"`              // Roth IRA contribution
	EmployerContribution decimal.NullDecimal `gorm:"type:decimal(13,2)" json:"employerContribution,omitempty"` // Derived employer share
}
