package engine

import (
	"mattress_money/internal/domain" // Entity records
	"mattress_money/internal/errs"   // Error taxonomy
	"mattress_money/internal/utils"  // Money parsing

	"github.com/shopspring/decimal" // Exact money amounts
)

// PaycheckInput carries the raw paycheck sub-fields of the transaction form.
// Empty strings mean the field was not provided.
type PaycheckInput struct {
	Earnings     string `json:"earnings"`     // Gross earnings (required)
	StateTaxes   string `json:"stateTaxes"`   // State tax withholding
	FederalTaxes string `json:"federalTaxes"` // Federal tax withholding
	Healthcare   string `json:"healthcare"`   // Healthcare deduction
	Vision       string `json:"vision"`       // Vision deduction
	Dental       string `json:"dental"`       // Dental deduction
	K401         string `json:"401k"`         // 401k contribution
	HSA          string `json:"hsa"`          // HSA contribution
	RothIRA      string `json:"rothIRA"`      // Roth IRA contribution
}

// The fixed paycheck field schedule. Taxes and benefits count toward the
// derived employer contribution; earnings is the gross figure they are
// measured against.
type paycheckField struct {
	name     string
	required bool
	tax      bool
	benefit  bool
	get      func(PaycheckInput) string
	set      func(*domain.Transaction, decimal.Decimal)
}

var paycheckFields = []paycheckField{
	{
		name: "earnings", required: true,
		get: func(in PaycheckInput) string { return in.Earnings },
		set: func(tx *domain.Transaction, v decimal.Decimal) {
			tx.Earnings = decimal.NewNullDecimal(v)
		},
	},
	{
		name: "stateTaxes", tax: true,
		get: func(in PaycheckInput) string { return in.StateTaxes },
		set: func(tx *domain.Transaction, v decimal.Decimal) {
			tx.StateTaxes = decimal.NewNullDecimal(v)
		},
	},
	{
		name: "federalTaxes", tax: true,
		get: func(in PaycheckInput) string { return in.FederalTaxes },
		set: func(tx *domain.Transaction, v decimal.Decimal) {
			tx.FederalTaxes = decimal.NewNullDecimal(v)
		},
	},
	{
		name: "healthcare", benefit: true,
		get: func(in PaycheckInput) string { return in.Healthcare },
		set: func(tx *domain.Transaction, v decimal.Decimal) {
			tx.Healthcare = decimal.NewNullDecimal(v)
		},
	},
	{
		name: "vision", benefit: true,
		get: func(in PaycheckInput) string { return in.Vision },
		set: func(tx *domain.Transaction, v decimal.Decimal) {
			tx.Vision = decimal.NewNullDecimal(v)
		},
	},
	{
		name: "dental", benefit: true,
		get: func(in PaycheckInput) string { return in.Dental },
		set: func(tx *domain.Transaction, v decimal.Decimal) {
			tx.Dental = decimal.NewNullDecimal(v)
		},
	},
	{
		name: "401k", benefit: true,
		get: func(in PaycheckInput) string { return in.K401 },
		set: func(tx *domain.Transaction, v decimal.Decimal) {
			tx.K401 = decimal.NewNullDecimal(v)
		},
	},
	{
		name: "hsa", benefit: true,
		get: func(in PaycheckInput) string { return in.HSA },
		set: func(tx *domain.Transaction, v decimal.Decimal) {
			tx.HSA = decimal.NewNullDecimal(v)
		},
	},
	{
		name: "rothIRA", benefit: true,
		get: func(in PaycheckInput) string { return in.RothIRA },
		set: func(tx *domain.Transaction, v decimal.Decimal) {
			tx.RothIRA = decimal.NewNullDecimal(v)
		},
	},
}

// applyPaycheck validates the paycheck sub-fields onto tx and derives the
// employer contribution:
//
//	employerContribution = taxes + benefits + take-home amount - gross
//
// i.e. whatever gross pay did not cover of the withholdings plus the net
// deposit is what the employer effectively contributed. Rounded to 2
// decimal places.
func applyPaycheck(tx *domain.Transaction, in PaycheckInput) error {
	var gross, taxes, benefits decimal.Decimal
	for _, field := range paycheckFields {
		raw := field.get(in)
		if raw == "" && !field.required {
			continue
		}
		value, ok := utils.ParseMoney(raw)
		if !ok {
			return errs.Invalidf("paycheck field %s %q", field.name, raw)
		}
		field.set(tx, value)

		switch {
		case field.benefit:
			benefits = benefits.Add(value)
		case field.tax:
			taxes = taxes.Add(value)
		default:
			gross = gross.Add(value)
		}
	}

	contribution := benefits.Add(taxes).Add(tx.Amount).Sub(gross).Round(2)
	tx.EmployerContribution = decimal.NewNullDecimal(contribution)
	return nil
}
