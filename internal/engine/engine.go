// Package engine validates and persists transactions, orchestrating the
// compensating balance and mattress adjustments that keep the three stores
// mutually consistent across create, edit and delete.
package engine

import (
	"strings"      // Input trimming
	"time"         // Date range queries
	"unicode/utf8" // Description length in characters

	"mattress_money/internal/domain" // Entity records
	"mattress_money/internal/errs"   // Error taxonomy
	"mattress_money/internal/utils"  // Validation helpers

	"github.com/shopspring/decimal" // Exact money amounts
	"github.com/sirupsen/logrus"    // Logging library
)

// maxDescriptionLength caps free-form descriptions; anything longer is
// dropped rather than rejected
const maxDescriptionLength = 200

// AccountLedger is the slice of the account ledger the engine needs
type AccountLedger interface {
	Get(username, name, institution string) (*domain.Account, error)
	IncrementBalance(username, name, institution string, delta decimal.Decimal) (*domain.Account, error)
}

// MattressLedger is the slice of the mattress ledger the engine needs
type MattressLedger interface {
	Get(username, name string) (*domain.Mattress, error)
	IncrementAmount(username, name string, delta decimal.Decimal) (*domain.Mattress, error)
	AllowsNegative() bool
}

// TransactionStore is the slice of the transaction store the engine needs
type TransactionStore interface {
	Create(tx *domain.Transaction) error
	Get(id uint, username string) (*domain.Transaction, error)
	Update(id uint, username string, fields map[string]any) (int64, error)
	Delete(id uint, username string) (int64, error)
	List(username string) ([]domain.Transaction, error)
	ListWithinRange(username string, start, end time.Time) ([]domain.Transaction, error)
	Distinct(username, field string) ([]string, error)
}

// Service is the transaction engine
type Service struct {
	accounts     AccountLedger
	mattresses   MattressLedger
	transactions TransactionStore
}

// NewService creates the transaction engine
func NewService(accounts AccountLedger, mattresses MattressLedger, transactions TransactionStore) *Service {
	return &Service{accounts: accounts, mattresses: mattresses, transactions: transactions}
}

// CreateInput is the raw transaction form. All money and date fields arrive
// as strings and are validated here.
type CreateInput struct {
	Date                   string        `json:"date"`
	Location               string        `json:"location"`
	SourceAccount          string        `json:"sourceAccount"`
	SourceInstitution      string        `json:"sourceInstitution"`
	DestinationAccount     string        `json:"destinationAccount"`
	DestinationInstitution string        `json:"destinationInstitution"`
	Tag                    string        `json:"tag"`
	Amount                 string        `json:"amount"`
	Description            string        `json:"description"`
	Mattress               string        `json:"mattress"`
	IsPaycheck             bool          `json:"isPaycheck"`
	Paycheck               PaycheckInput `json:"paycheck"`
}

// validateCreate builds a transaction record from the raw form, enforcing
// every field rule before anything touches a store
func validateCreate(username string, in CreateInput) (*domain.Transaction, error) {
	tx := &domain.Transaction{Username: username}

	if !utils.ValidNonEmpty(in.Location) {
		return nil, errs.Invalidf("location %q", in.Location)
	}
	tx.Location = strings.TrimSpace(in.Location)

	if !utils.ValidNonEmpty(in.SourceAccount) {
		return nil, errs.Invalidf("source account %q", in.SourceAccount)
	}
	tx.SourceAccount = strings.TrimSpace(in.SourceAccount)

	if domain.IsOutside(tx.SourceAccount) {
		tx.SourceInstitution = domain.OutsideName
	} else {
		if !utils.ValidNonEmpty(in.SourceInstitution) {
			return nil, errs.Invalidf("source institution %q", in.SourceInstitution)
		}
		tx.SourceInstitution = strings.TrimSpace(in.SourceInstitution)
	}

	if !utils.ValidNonEmpty(in.DestinationAccount) {
		return nil, errs.Invalidf("destination account %q", in.DestinationAccount)
	}
	tx.DestinationAccount = strings.TrimSpace(in.DestinationAccount)

	if domain.IsOutside(tx.DestinationAccount) {
		// Money has to come from or go to somewhere tracked.
		if domain.IsOutside(tx.SourceAccount) {
			return nil, errs.Invalidf("source and destination cannot both be Outside")
		}
		tx.DestinationInstitution = domain.OutsideName
	} else {
		if !utils.ValidNonEmpty(in.DestinationInstitution) {
			return nil, errs.Invalidf("destination institution %q", in.DestinationInstitution)
		}
		tx.DestinationInstitution = strings.TrimSpace(in.DestinationInstitution)
	}

	if !utils.ValidNonEmpty(in.Tag) {
		return nil, errs.Invalidf("tag %q", in.Tag)
	}
	tx.Tag = strings.TrimSpace(in.Tag)

	date, ok := utils.ParseDateUTC(in.Date)
	if !ok {
		return nil, errs.Invalidf("date %q", in.Date)
	}
	tx.Date = date

	amount, ok := utils.ParseMoney(in.Amount)
	if !ok {
		return nil, errs.Invalidf("amount %q", in.Amount)
	}
	tx.Amount = amount

	if in.IsPaycheck {
		tx.IsPaycheck = true
		if err := applyPaycheck(tx, in.Paycheck); err != nil {
			return nil, err
		}
	}

	// An over-long description is dropped, not rejected. Counted in
	// characters, not bytes, so multibyte text is not penalized.
	if in.Description != "" && utf8.RuneCountInString(in.Description) < maxDescriptionLength {
		tx.Description = strings.TrimSpace(in.Description)
	}

	if utils.ValidNonEmpty(in.Mattress) {
		name := strings.TrimSpace(in.Mattress)
		// The virtual mattress has no stored record to adjust.
		if domain.IsUnallocated(name) {
			return nil, errs.Invalidf("mattress %q", in.Mattress)
		}
		tx.Mattress = name
	}

	return tx, nil
}

// mattressEffect is the allocation adjustment a transaction applies to its
// attached mattress: income from Outside is earmarked into the mattress,
// anything else is spending drawn from it.
func mattressEffect(tx *domain.Transaction) decimal.Decimal {
	if domain.IsOutside(tx.SourceAccount) {
		return tx.Amount
	}
	return tx.Amount.Neg()
}

// Create validates in, persists the transaction and applies the balance and
// mattress adjustments as one compensated sequence
func (s *Service) Create(username string, in CreateInput) (*domain.Transaction, error) {
	tx, err := validateCreate(username, in)
	if err != nil {
		return nil, err
	}

	srcOutside := domain.IsOutside(tx.SourceAccount)
	dstOutside := domain.IsOutside(tx.DestinationAccount)

	// Every referenced account and mattress must exist before any write.
	if !srcOutside {
		if err := s.resolveAccount(username, tx.SourceAccount, tx.SourceInstitution); err != nil {
			return nil, err
		}
	}
	if !dstOutside {
		if err := s.resolveAccount(username, tx.DestinationAccount, tx.DestinationInstitution); err != nil {
			return nil, err
		}
	}
	if tx.Mattress != "" {
		if err := s.resolveMattress(username, tx.Mattress, mattressEffect(tx)); err != nil {
			return nil, err
		}
	}

	steps := []step{s.persistStep(tx)}
	if !srcOutside {
		steps = append(steps, s.balanceStep("debit source account",
			username, tx.SourceAccount, tx.SourceInstitution, tx.Amount.Neg()))
	}
	if !dstOutside {
		steps = append(steps, s.balanceStep("credit destination account",
			username, tx.DestinationAccount, tx.DestinationInstitution, tx.Amount))
	}
	if tx.Mattress != "" {
		steps = append(steps, s.mattressStep("adjust mattress",
			username, tx.Mattress, mattressEffect(tx)))
	}

	if err := runSaga(steps); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"username":    username,
		"location":    tx.Location,
		"source":      tx.SourceInstitution + "/" + tx.SourceAccount,
		"destination": tx.DestinationInstitution + "/" + tx.DestinationAccount,
		"amount":      tx.Amount.String(),
		"date":        tx.Date.Format("2006-01-02"),
		"tag":         tx.Tag,
		"is_paycheck": tx.IsPaycheck,
	}).Info("Created transaction")
	return tx, nil
}

// Delete reverses a transaction's balance and mattress effects, then removes
// the document. Removal is the last saga step so a failed delete re-applies
// the reversals instead of leaving a live ledger entry with undone balances.
func (s *Service) Delete(username string, id uint) error {
	if id == 0 {
		return errs.ErrMissingData
	}
	tx, err := s.transactions.Get(id, username)
	if err != nil {
		return errs.Databasef("loading transaction: %v", err)
	}
	if tx == nil {
		return errs.ErrMissingData
	}

	srcOutside := domain.IsOutside(tx.SourceAccount)
	dstOutside := domain.IsOutside(tx.DestinationAccount)

	var steps []step
	if !srcOutside {
		steps = append(steps, s.balanceStep("restore source balance",
			username, tx.SourceAccount, tx.SourceInstitution, tx.Amount))
	}
	if !dstOutside {
		steps = append(steps, s.balanceStep("withdraw destination balance",
			username, tx.DestinationAccount, tx.DestinationInstitution, tx.Amount.Neg()))
	}
	if tx.Mattress != "" {
		steps = append(steps, s.mattressStep("reverse mattress adjustment",
			username, tx.Mattress, mattressEffect(tx).Neg()))
	}
	steps = append(steps, step{
		name: "delete transaction",
		forward: func() error {
			deleted, err := s.transactions.Delete(id, username)
			if err != nil {
				return errs.Databasef("deleting transaction: %v", err)
			}
			if deleted != 1 {
				return errs.ErrMissingData
			}
			return nil
		},
	})

	if err := runSaga(steps); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"username":       username,
		"transaction_id": id,
		"amount":         tx.Amount.String(),
	}).Info("Deleted transaction")
	return nil
}

// EditInput is the sparse transaction patch; nil fields keep their original
// values
type EditInput struct {
	Date                   *string `json:"date"`
	Location               *string `json:"location"`
	SourceAccount          *string `json:"sourceAccount"`
	SourceInstitution      *string `json:"sourceInstitution"`
	DestinationAccount     *string `json:"destinationAccount"`
	DestinationInstitution *string `json:"destinationInstitution"`
	Tag                    *string `json:"tag"`
	Amount                 *string `json:"amount"`
	Description            *string `json:"description"`
	Mattress               *string `json:"mattress"`
}

// Edit applies a sparse field patch to a transaction and adjusts balances by
// the net difference between the original and edited values, so an
// amount-only change never double-counts an unchanged account. The patch
// commits first; balance adjustments follow as compensated steps, with the
// patch itself reverted if they cannot complete.
func (s *Service) Edit(username string, id uint, in EditInput) (*domain.Transaction, error) {
	if id == 0 {
		return nil, errs.ErrMissingData
	}
	orig, err := s.transactions.Get(id, username)
	if err != nil {
		return nil, errs.Databasef("loading transaction: %v", err)
	}
	if orig == nil {
		return nil, errs.ErrMissingData
	}

	updated := *orig
	fields := map[string]any{}

	if in.Location != nil {
		if !utils.ValidNonEmpty(*in.Location) {
			return nil, errs.Invalidf("location %q", *in.Location)
		}
		updated.Location = strings.TrimSpace(*in.Location)
		fields["location"] = updated.Location
	}

	if in.SourceAccount != nil {
		if !utils.ValidNonEmpty(*in.SourceAccount) {
			return nil, errs.Invalidf("source account %q", *in.SourceAccount)
		}
		updated.SourceAccount = strings.TrimSpace(*in.SourceAccount)
	}
	if domain.IsOutside(updated.SourceAccount) {
		updated.SourceInstitution = domain.OutsideName
	} else if in.SourceInstitution != nil {
		if !utils.ValidNonEmpty(*in.SourceInstitution) {
			return nil, errs.Invalidf("source institution %q", *in.SourceInstitution)
		}
		updated.SourceInstitution = strings.TrimSpace(*in.SourceInstitution)
	} else if domain.IsOutside(updated.SourceInstitution) {
		// The account moved off Outside but no real institution came with it.
		return nil, errs.Invalidf("source institution required")
	}

	if in.DestinationAccount != nil {
		if !utils.ValidNonEmpty(*in.DestinationAccount) {
			return nil, errs.Invalidf("destination account %q", *in.DestinationAccount)
		}
		updated.DestinationAccount = strings.TrimSpace(*in.DestinationAccount)
	}
	if domain.IsOutside(updated.DestinationAccount) {
		if domain.IsOutside(updated.SourceAccount) {
			return nil, errs.Invalidf("source and destination cannot both be Outside")
		}
		updated.DestinationInstitution = domain.OutsideName
	} else if in.DestinationInstitution != nil {
		if !utils.ValidNonEmpty(*in.DestinationInstitution) {
			return nil, errs.Invalidf("destination institution %q", *in.DestinationInstitution)
		}
		updated.DestinationInstitution = strings.TrimSpace(*in.DestinationInstitution)
	} else if domain.IsOutside(updated.DestinationInstitution) {
		return nil, errs.Invalidf("destination institution required")
	}

	if updated.SourceAccount != orig.SourceAccount || updated.SourceInstitution != orig.SourceInstitution {
		fields["source_account"] = updated.SourceAccount
		fields["source_institution"] = updated.SourceInstitution
	}
	if updated.DestinationAccount != orig.DestinationAccount || updated.DestinationInstitution != orig.DestinationInstitution {
		fields["destination_account"] = updated.DestinationAccount
		fields["destination_institution"] = updated.DestinationInstitution
	}

	if in.Tag != nil {
		if !utils.ValidNonEmpty(*in.Tag) {
			return nil, errs.Invalidf("tag %q", *in.Tag)
		}
		updated.Tag = strings.TrimSpace(*in.Tag)
		fields["tag"] = updated.Tag
	}

	if in.Date != nil {
		date, ok := utils.ParseDateUTC(*in.Date)
		if !ok {
			return nil, errs.Invalidf("date %q", *in.Date)
		}
		updated.Date = date
		fields["date"] = date
	}

	if in.Amount != nil {
		amount, ok := utils.ParseMoney(*in.Amount)
		if !ok {
			return nil, errs.Invalidf("amount %q", *in.Amount)
		}
		updated.Amount = amount
		fields["amount"] = amount
	}

	if in.Description != nil {
		updated.Description = ""
		if *in.Description != "" && utf8.RuneCountInString(*in.Description) < maxDescriptionLength {
			updated.Description = strings.TrimSpace(*in.Description)
		}
		fields["description"] = updated.Description
	}

	if in.Mattress != nil {
		name := strings.TrimSpace(*in.Mattress)
		if name != "" && domain.IsUnallocated(name) {
			return nil, errs.Invalidf("mattress %q", *in.Mattress)
		}
		updated.Mattress = name
		fields["mattress"] = name
	}

	if len(fields) == 0 {
		return nil, errs.ErrMissingData
	}

	srcOutside := domain.IsOutside(updated.SourceAccount)
	dstOutside := domain.IsOutside(updated.DestinationAccount)
	if !srcOutside {
		if err := s.resolveAccount(username, updated.SourceAccount, updated.SourceInstitution); err != nil {
			return nil, err
		}
	}
	if !dstOutside {
		if err := s.resolveAccount(username, updated.DestinationAccount, updated.DestinationInstitution); err != nil {
			return nil, err
		}
	}
	// Net balance adjustments: reverse the original values, apply the new
	// ones, then merge per account so unchanged sides cancel to zero.
	var accountDeltas []accountDelta
	if !domain.IsOutside(orig.SourceAccount) {
		accountDeltas = addAccountDelta(accountDeltas, orig.SourceAccount, orig.SourceInstitution, orig.Amount)
	}
	if !domain.IsOutside(orig.DestinationAccount) {
		accountDeltas = addAccountDelta(accountDeltas, orig.DestinationAccount, orig.DestinationInstitution, orig.Amount.Neg())
	}
	if !srcOutside {
		accountDeltas = addAccountDelta(accountDeltas, updated.SourceAccount, updated.SourceInstitution, updated.Amount.Neg())
	}
	if !dstOutside {
		accountDeltas = addAccountDelta(accountDeltas, updated.DestinationAccount, updated.DestinationInstitution, updated.Amount)
	}

	var mattressDeltas []mattressDelta
	if orig.Mattress != "" {
		mattressDeltas = addMattressDelta(mattressDeltas, orig.Mattress, mattressEffect(orig).Neg())
	}
	if updated.Mattress != "" {
		mattressDeltas = addMattressDelta(mattressDeltas, updated.Mattress, mattressEffect(&updated))
	}

	// Every net mattress delta faces the same existence and overdraw checks
	// as a fresh transaction before anything is written, an unchanged
	// mattress included.
	for _, d := range mattressDeltas {
		if d.delta.IsZero() {
			continue
		}
		if err := s.resolveMattress(username, d.name, d.delta); err != nil {
			return nil, err
		}
	}

	// Original values for the patched columns, for the compensation path.
	origFields := map[string]any{
		"location":                orig.Location,
		"source_account":          orig.SourceAccount,
		"source_institution":      orig.SourceInstitution,
		"destination_account":     orig.DestinationAccount,
		"destination_institution": orig.DestinationInstitution,
		"tag":                     orig.Tag,
		"date":                    orig.Date,
		"amount":                  orig.Amount,
		"description":             orig.Description,
		"mattress":                orig.Mattress,
	}
	revert := map[string]any{}
	for column := range fields {
		revert[column] = origFields[column]
	}

	steps := []step{{
		name: "patch transaction",
		forward: func() error {
			if _, err := s.transactions.Update(id, username, fields); err != nil {
				return errs.Databasef("patching transaction: %v", err)
			}
			return nil
		},
		compensate: func() error {
			_, err := s.transactions.Update(id, username, revert)
			return err
		},
	}}
	for _, d := range accountDeltas {
		if d.delta.IsZero() {
			continue
		}
		steps = append(steps, s.balanceStep("adjust balance of "+d.institution+"/"+d.name,
			username, d.name, d.institution, d.delta))
	}
	for _, d := range mattressDeltas {
		if d.delta.IsZero() {
			continue
		}
		steps = append(steps, s.mattressStep("adjust mattress "+d.name,
			username, d.name, d.delta))
	}

	if err := runSaga(steps); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"username":       username,
		"transaction_id": id,
		"patched_fields": len(fields),
	}).Info("Edited transaction")
	return &updated, nil
}

// List returns all of a user's transactions
func (s *Service) List(username string) ([]domain.Transaction, error) {
	return s.transactions.List(username)
}

// ListWithinRange returns the user's transactions between start and end
// inclusive
func (s *Service) ListWithinRange(username string, start, end time.Time) ([]domain.Transaction, error) {
	return s.transactions.ListWithinRange(username, start, end)
}

// DistinctTags returns the distinct tags across the user's transactions
func (s *Service) DistinctTags(username string) ([]string, error) {
	return s.transactions.Distinct(username, "tag")
}

// DistinctLocations returns the distinct locations across the user's
// transactions
func (s *Service) DistinctLocations(username string) ([]string, error) {
	return s.transactions.Distinct(username, "location")
}
