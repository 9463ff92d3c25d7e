// Package mattress is the allocation ledger for named sub-allocations
// ("mattresses") of already-deposited funds, including transfers between
// them and the computed virtual unallocated mattress.
package mattress

import (
	"errors"  // Error inspection
	"strings" // Input trimming

	"mattress_money/internal/domain" // Entity records
	"mattress_money/internal/errs"   // Error taxonomy
	"mattress_money/internal/store"  // Duplicate detection
	"mattress_money/internal/utils"  // Money parsing

	"github.com/shopspring/decimal" // Exact money amounts
	"github.com/sirupsen/logrus"    // Logging library
)

// MattressStore is the slice of the mattress store the ledger needs
type MattressStore interface {
	Get(username, name string) (*domain.Mattress, error)
	List(username string) ([]domain.Mattress, error)
	Create(mattress *domain.Mattress) error
	IncrementAmount(username, name string, delta decimal.Decimal) (*domain.Mattress, error)
	Update(id uint, username string, fields map[string]any) (int64, error)
	Delete(id uint, username string) (int64, error)
	SumAmounts(username string) (decimal.Decimal, error)
}

// BalanceSummer provides the user's total account balance, needed to compute
// the virtual unallocated mattress
type BalanceSummer interface {
	SumBalances(username string) (decimal.Decimal, error)
}

// TransferResult is the outcome of a transfer between mattresses
type TransferResult int

// Transfer outcomes
const (
	TransferOK TransferResult = iota
	TransferSourceNotFound
	TransferDestinationNotFound
	TransferUpdateFailed
)

// Service is the mattress allocation ledger
type Service struct {
	mattresses    MattressStore
	balances      BalanceSummer
	allowNegative bool
}

// NewService creates the mattress ledger. allowNegative selects the overdraw
// policy: when true (the default configuration), a transfer or spend may
// drive a real mattress's amount below zero — soft allocation tracking
// rather than a hard reservation.
func NewService(mattresses MattressStore, balances BalanceSummer, allowNegative bool) *Service {
	return &Service{mattresses: mattresses, balances: balances, allowNegative: allowNegative}
}

// CreateInput is the raw mattress creation form
type CreateInput struct {
	Name      string // Mattress name
	MaxAmount string // Target ceiling
	Amount    string // Initial earmarked amount
}

// Create validates and persists a new mattress. The reserved unallocated
// name is rejected; it only ever exists as a computed value.
func (s *Service) Create(username string, in CreateInput) (*domain.Mattress, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || domain.IsUnallocated(name) {
		return nil, errs.Invalidf("mattress name %q", in.Name)
	}

	maxAmount, ok := utils.ParseMoney(in.MaxAmount)
	if !ok {
		return nil, errs.Invalidf("max amount %q", in.MaxAmount)
	}
	amount, ok := utils.ParseMoney(in.Amount)
	if !ok {
		return nil, errs.Invalidf("amount %q", in.Amount)
	}

	mattress := &domain.Mattress{
		Username:  username,
		Name:      name,
		MaxAmount: maxAmount,
		Amount:    amount,
	}

	logrus.WithFields(logrus.Fields{
		"username":   username,
		"name":       name,
		"max_amount": maxAmount.String(),
		"amount":     amount.String(),
	}).Info("Creating mattress")

	if err := s.mattresses.Create(mattress); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, errs.ErrItemExists
		}
		return nil, errs.Databasef("creating mattress: %v", err)
	}
	return mattress, nil
}

// Get returns the named mattress, or nil. The virtual unallocated name
// resolves through Unallocated instead.
func (s *Service) Get(username, name string) (*domain.Mattress, error) {
	if domain.IsUnallocated(name) {
		return s.Unallocated(username)
	}
	return s.mattresses.Get(username, name)
}

// List returns all of a user's stored mattresses
func (s *Service) List(username string) ([]domain.Mattress, error) {
	return s.mattresses.List(username)
}

// Names returns the names of the user's stored mattresses
func (s *Service) Names(username string) ([]string, error) {
	mattresses, err := s.mattresses.List(username)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(mattresses))
	for _, m := range mattresses {
		names = append(names, m.Name)
	}
	return names, nil
}

// Unallocated computes the virtual mattress: total account balance minus the
// sum of all named mattress amounts. Never persisted.
func (s *Service) Unallocated(username string) (*domain.Mattress, error) {
	totalBalance, err := s.balances.SumBalances(username)
	if err != nil {
		return nil, err
	}
	allocated, err := s.mattresses.SumAmounts(username)
	if err != nil {
		return nil, err
	}
	return &domain.Mattress{
		Username: username,
		Name:     domain.UnallocatedName,
		Amount:   totalBalance.Sub(allocated),
	}, nil
}

// IncrementAmount applies delta to a mattress amount atomically and returns
// the updated mattress, or nil when the mattress does not exist
func (s *Service) IncrementAmount(username, name string, delta decimal.Decimal) (*domain.Mattress, error) {
	return s.mattresses.IncrementAmount(username, name, delta)
}

// AllowsNegative reports the configured overdraw policy
func (s *Service) AllowsNegative() bool {
	return s.allowNegative
}

// Transfer moves amount from the source mattress to the destination. Either
// side may be the virtual unallocated mattress, which has no stored record
// to decrement or increment — moving money out of "unallocated" is just
// incrementing the real destination.
func (s *Service) Transfer(username, source, destination string, amount decimal.Decimal) (TransferResult, error) {
	srcVirtual := domain.IsUnallocated(source)
	dstVirtual := domain.IsUnallocated(destination)

	var src *domain.Mattress
	if !srcVirtual {
		found, err := s.mattresses.Get(username, source)
		if err != nil {
			return TransferUpdateFailed, errs.Databasef("resolving source mattress: %v", err)
		}
		if found == nil {
			return TransferSourceNotFound, nil
		}
		src = found
	}

	if !dstVirtual {
		found, err := s.mattresses.Get(username, destination)
		if err != nil {
			return TransferUpdateFailed, errs.Databasef("resolving destination mattress: %v", err)
		}
		if found == nil {
			return TransferDestinationNotFound, nil
		}
	}

	// Same-name transfer is a no-op once both sides are known to exist.
	if strings.EqualFold(strings.TrimSpace(source), strings.TrimSpace(destination)) {
		return TransferOK, nil
	}

	// Overdraw policy. Enforced before any write so a rejected transfer
	// leaves nothing to undo.
	if !s.allowNegative {
		if srcVirtual {
			unallocated, err := s.Unallocated(username)
			if err != nil {
				return TransferUpdateFailed, errs.Databasef("computing unallocated: %v", err)
			}
			if unallocated.Amount.LessThan(amount) {
				return TransferUpdateFailed, errs.Invalidf("transfer would overdraw unallocated")
			}
		} else if src.Amount.LessThan(amount) {
			return TransferUpdateFailed, errs.Invalidf("transfer would overdraw mattress %q", source)
		}
	}

	logrus.WithFields(logrus.Fields{
		"username":    username,
		"source":      source,
		"destination": destination,
		"amount":      amount.String(),
	}).Info("Transferring between mattresses")

	if !srcVirtual {
		updated, err := s.mattresses.IncrementAmount(username, source, amount.Neg())
		if err != nil || updated == nil {
			return TransferUpdateFailed, errs.Databasef("decrementing source mattress: %v", err)
		}
	}

	if !dstVirtual {
		updated, err := s.mattresses.IncrementAmount(username, destination, amount)
		if err != nil || updated == nil {
			// Put the source side back before reporting failure.
			if !srcVirtual {
				if _, cerr := s.mattresses.IncrementAmount(username, source, amount); cerr != nil {
					return TransferUpdateFailed, &errs.PartialFailureError{
						Step:         "increment destination mattress",
						Cause:        errs.Databasef("incrementing destination mattress: %v", err),
						Compensation: cerr,
					}
				}
			}
			return TransferUpdateFailed, errs.Databasef("incrementing destination mattress: %v", err)
		}
	}

	return TransferOK, nil
}

// EditInput is the sparse mattress edit form; nil fields keep their values
type EditInput struct {
	Name      *string // New name
	MaxAmount *string // New ceiling
	Amount    *string // New earmarked amount
}

// Edit applies a sparse field patch to a mattress, scoped to the owning user
func (s *Service) Edit(username string, id uint, in EditInput) error {
	if id == 0 {
		return errs.ErrMissingData
	}

	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || domain.IsUnallocated(name) {
			return errs.Invalidf("mattress name %q", *in.Name)
		}
		fields["name"] = name
	}
	if in.MaxAmount != nil {
		maxAmount, ok := utils.ParseMoney(*in.MaxAmount)
		if !ok {
			return errs.Invalidf("max amount %q", *in.MaxAmount)
		}
		fields["max_amount"] = maxAmount
	}
	if in.Amount != nil {
		amount, ok := utils.ParseMoney(*in.Amount)
		if !ok {
			return errs.Invalidf("amount %q", *in.Amount)
		}
		fields["amount"] = amount
	}
	if len(fields) == 0 {
		return errs.ErrMissingData
	}

	updated, err := s.mattresses.Update(id, username, fields)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return errs.ErrItemExists
		}
		return errs.Databasef("editing mattress: %v", err)
	}
	if updated == 0 {
		return errs.ErrMissingData
	}
	return nil
}

// Delete removes a mattress by id, scoped to the owning user
func (s *Service) Delete(username string, id uint) error {
	if id == 0 {
		return errs.ErrMissingData
	}
	deleted, err := s.mattresses.Delete(id, username)
	if err != nil {
		return errs.Databasef("deleting mattress: %v", err)
	}
	if deleted == 0 {
		return errs.ErrMissingData
	}
	logrus.WithFields(logrus.Fields{
		"username":    username,
		"mattress_id": id,
	}).Info("Deleted mattress")
	return nil
}
