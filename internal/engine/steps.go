package engine

import (
	"mattress_money/internal/domain" // Entity records
	"mattress_money/internal/errs"   // Error taxonomy

	"github.com/shopspring/decimal" // Exact money amounts
)

// resolveAccount fails validation when the referenced account does not exist
func (s *Service) resolveAccount(username, name, institution string) error {
	account, err := s.accounts.Get(username, name, institution)
	if err != nil {
		return errs.Databasef("resolving account %s/%s: %v", institution, name, err)
	}
	if account == nil {
		return errs.Invalidf("unknown account %s/%s", institution, name)
	}
	return nil
}

// resolveMattress fails validation when the referenced mattress does not
// exist, or when the adjustment would overdraw it under a forbid-negative
// policy
func (s *Service) resolveMattress(username, name string, effect decimal.Decimal) error {
	mattress, err := s.mattresses.Get(username, name)
	if err != nil {
		return errs.Databasef("resolving mattress %s: %v", name, err)
	}
	if mattress == nil {
		return errs.Invalidf("unknown mattress %s", name)
	}
	if !s.mattresses.AllowsNegative() && mattress.Amount.Add(effect).IsNegative() {
		return errs.Invalidf("transaction would overdraw mattress %s", name)
	}
	return nil
}

// persistStep inserts the transaction document; its compensation removes the
// row again so a failed balance adjustment never leaves an orphaned entry
func (s *Service) persistStep(tx *domain.Transaction) step {
	return step{
		name: "persist transaction",
		forward: func() error {
			if err := s.transactions.Create(tx); err != nil {
				return errs.Databasef("persisting transaction: %v", err)
			}
			return nil
		},
		compensate: func() error {
			deleted, err := s.transactions.Delete(tx.ID, tx.Username)
			if err != nil {
				return err
			}
			if deleted != 1 {
				return errs.Databasef("transaction row not removed")
			}
			return nil
		},
	}
}

// balanceStep applies delta to an account balance; its compensation applies
// the inverse
func (s *Service) balanceStep(name, username, account, institution string, delta decimal.Decimal) step {
	apply := func(d decimal.Decimal) error {
		updated, err := s.accounts.IncrementBalance(username, account, institution, d)
		if err != nil {
			return errs.Databasef("%s: %v", name, err)
		}
		if updated == nil {
			return errs.Databasef("%s: account %s/%s missing", name, institution, account)
		}
		return nil
	}
	return step{
		name:       name,
		forward:    func() error { return apply(delta) },
		compensate: func() error { return apply(delta.Neg()) },
	}
}

// mattressStep applies delta to a mattress amount; its compensation applies
// the inverse
func (s *Service) mattressStep(name, username, mattress string, delta decimal.Decimal) step {
	apply := func(d decimal.Decimal) error {
		updated, err := s.mattresses.IncrementAmount(username, mattress, d)
		if err != nil {
			return errs.Databasef("%s: %v", name, err)
		}
		if updated == nil {
			return errs.Databasef("%s: mattress %s missing", name, mattress)
		}
		return nil
	}
	return step{
		name:       name,
		forward:    func() error { return apply(delta) },
		compensate: func() error { return apply(delta.Neg()) },
	}
}

// accountDelta is a pending net balance adjustment for one account
type accountDelta struct {
	name        string
	institution string
	delta       decimal.Decimal
}

// addAccountDelta merges d into an existing entry for the same account, or
// appends a new one, preserving first-seen order
func addAccountDelta(deltas []accountDelta, name, institution string, d decimal.Decimal) []accountDelta {
	for i := range deltas {
		if deltas[i].name == name && deltas[i].institution == institution {
			deltas[i].delta = deltas[i].delta.Add(d)
			return deltas
		}
	}
	return append(deltas, accountDelta{name: name, institution: institution, delta: d})
}

// mattressDelta is a pending net allocation adjustment for one mattress
type mattressDelta struct {
	name  string
	delta decimal.Decimal
}

// addMattressDelta merges d into an existing entry for the same mattress, or
// appends a new one, preserving first-seen order
func addMattressDelta(deltas []mattressDelta, name string, d decimal.Decimal) []mattressDelta {
	for i := range deltas {
		if deltas[i].name == name {
			deltas[i].delta = deltas[i].delta.Add(d)
			return deltas
		}
	}
	return append(deltas, mattressDelta{name: name, delta: d})
}
