// Package ledger is the account balance ledger: account creation with
// validation, lookup, and the single sanctioned balance mutation path
// (atomic delta increments).
package ledger

import (
	"errors"  // Error inspection
	"strings" // Input trimming

	"mattress_money/internal/domain" // Entity records
	"mattress_money/internal/errs"   // Error taxonomy
	"mattress_money/internal/store"  // Duplicate detection

	"github.com/shopspring/decimal" // Exact money amounts
	"github.com/sirupsen/logrus"    // Logging library
)

// AccountStore is the slice of the account store the ledger needs
type AccountStore interface {
	Get(username, name, institution string) (*domain.Account, error)
	List(username string) ([]domain.Account, error)
	Create(account *domain.Account) error
	IncrementBalance(username, name, institution string, delta decimal.Decimal) (*domain.Account, error)
	SumBalances(username string) (decimal.Decimal, error)
}

// Service is the account balance ledger
type Service struct {
	accounts AccountStore
}

// NewService creates the account ledger
func NewService(accounts AccountStore) *Service {
	return &Service{accounts: accounts}
}

// CreateInput is the raw account creation form
type CreateInput struct {
	Name            string // Account name
	Institution     string // Institution name
	StartingBalance string // Initial balance (may be negative, e.g. a loan)
	Type            string // One of domain.ValidAccountTypes
}

// Create validates and persists a new account. The reserved Outside name is
// rejected for both the account and institution fields.
func (s *Service) Create(username string, in CreateInput) (*domain.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || domain.IsOutside(name) {
		return nil, errs.Invalidf("account name %q", in.Name)
	}

	institution := strings.TrimSpace(in.Institution)
	if institution == "" || domain.IsOutside(institution) {
		return nil, errs.Invalidf("institution %q", in.Institution)
	}

	// Starting balances may legitimately be negative (credit cards, loans),
	// so this is the plain decimal parse, not the non-negative money rule.
	balance, err := decimal.NewFromString(strings.TrimSpace(in.StartingBalance))
	if err != nil {
		return nil, errs.Invalidf("starting balance %q", in.StartingBalance)
	}

	if !domain.IsValidAccountType(in.Type) {
		return nil, errs.Invalidf("account type %q", in.Type)
	}

	account := &domain.Account{
		Username:    username,
		Name:        name,
		Institution: institution,
		Balance:     balance,
		Type:        in.Type,
	}

	logrus.WithFields(logrus.Fields{
		"username":    username,
		"name":        name,
		"institution": institution,
		"balance":     balance.String(),
		"type":        in.Type,
	}).Info("Creating account")

	if err := s.accounts.Create(account); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, errs.ErrItemExists
		}
		return nil, errs.Databasef("creating account: %v", err)
	}
	return account, nil
}

// Get returns the account matching (username, name, institution), or nil
func (s *Service) Get(username, name, institution string) (*domain.Account, error) {
	return s.accounts.Get(username, name, institution)
}

// List returns all of a user's accounts
func (s *Service) List(username string) ([]domain.Account, error) {
	return s.accounts.List(username)
}

// IncrementBalance applies delta to an account balance atomically and
// returns the updated account, or nil when the account does not exist
func (s *Service) IncrementBalance(username, name, institution string, delta decimal.Decimal) (*domain.Account, error) {
	return s.accounts.IncrementBalance(username, name, institution, delta)
}

// SumBalances returns the user's total balance across all accounts
func (s *Service) SumBalances(username string) (decimal.Decimal, error) {
	return s.accounts.SumBalances(username)
}
