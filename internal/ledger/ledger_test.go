package ledger

import (
	"errors"
	"testing"

	"mattress_money/internal/domain"
	"mattress_money/internal/errs"
	"mattress_money/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountStore struct {
	accounts []domain.Account
	err      error
}

func (f *fakeAccountStore) key(a domain.Account) string {
	return a.Username + "/" + a.Name + "/" + a.Institution
}

func (f *fakeAccountStore) Get(username, name, institution string) (*domain.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.accounts {
		a := f.accounts[i]
		if a.Username == username && a.Name == name && a.Institution == institution {
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountStore) List(username string) ([]domain.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Account
	for _, a := range f.accounts {
		if a.Username == username {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccountStore) Create(account *domain.Account) error {
	if f.err != nil {
		return f.err
	}
	for _, a := range f.accounts {
		if f.key(a) == f.key(*account) {
			return store.ErrDuplicate
		}
	}
	account.ID = uint(len(f.accounts) + 1)
	f.accounts = append(f.accounts, *account)
	return nil
}

func (f *fakeAccountStore) IncrementBalance(username, name, institution string, delta decimal.Decimal) (*domain.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.accounts {
		a := &f.accounts[i]
		if a.Username == username && a.Name == name && a.Institution == institution {
			a.Balance = a.Balance.Add(delta)
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountStore) SumBalances(username string) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	total := decimal.Zero
	for _, a := range f.accounts {
		if a.Username == username {
			total = total.Add(a.Balance)
		}
	}
	return total, nil
}

func TestCreateAccount(t *testing.T) {
	svc := NewService(&fakeAccountStore{})

	account, err := svc.Create("alice", CreateInput{
		Name:            "  Everyday Checking ",
		Institution:     "First National",
		StartingBalance: "250.75",
		Type:            "Checking",
	})
	require.NoError(t, err)
	assert.Equal(t, "Everyday Checking", account.Name)
	assert.Equal(t, "First National", account.Institution)
	assert.Equal(t, "250.75", account.Balance.String())

	got, err := svc.Get("alice", "Everyday Checking", "First National")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "250.75", got.Balance.String())
}

func TestCreateAccountNegativeStartingBalance(t *testing.T) {
	// A loan or credit card legitimately starts below zero.
	svc := NewService(&fakeAccountStore{})
	account, err := svc.Create("alice", CreateInput{
		Name:            "Car Loan",
		Institution:     "First National",
		StartingBalance: "-12000.00",
		Type:            "Loan",
	})
	require.NoError(t, err)
	assert.Equal(t, "-12000", account.Balance.String())
}

func TestCreateAccountValidation(t *testing.T) {
	svc := NewService(&fakeAccountStore{})
	cases := []CreateInput{
		{Name: "", Institution: "Bank", StartingBalance: "10", Type: "Checking"},
		{Name: "outside", Institution: "Bank", StartingBalance: "10", Type: "Checking"},
		{Name: "Savings", Institution: "OUTSIDE", StartingBalance: "10", Type: "Savings"},
		{Name: "Savings", Institution: "   ", StartingBalance: "10", Type: "Savings"},
		{Name: "Savings", Institution: "Bank", StartingBalance: "ten", Type: "Savings"},
		{Name: "Savings", Institution: "Bank", StartingBalance: "10", Type: "Offshore"},
	}
	for _, in := range cases {
		_, err := svc.Create("alice", in)
		assert.ErrorIs(t, err, errs.ErrInvalidFormData, "input %+v", in)
	}
}

func TestCreateAccountDuplicate(t *testing.T) {
	svc := NewService(&fakeAccountStore{})
	in := CreateInput{Name: "Savings", Institution: "Bank", StartingBalance: "10", Type: "Savings"}
	_, err := svc.Create("alice", in)
	require.NoError(t, err)
	_, err = svc.Create("alice", in)
	assert.ErrorIs(t, err, errs.ErrItemExists)
}

func TestCreateAccountStoreFailure(t *testing.T) {
	svc := NewService(&fakeAccountStore{err: errors.New("down")})
	_, err := svc.Create("alice", CreateInput{Name: "Savings", Institution: "Bank", StartingBalance: "10", Type: "Savings"})
	assert.ErrorIs(t, err, errs.ErrDatabase)
}

func TestIncrementBalance(t *testing.T) {
	fake := &fakeAccountStore{}
	svc := NewService(fake)
	_, err := svc.Create("alice", CreateInput{Name: "Savings", Institution: "Bank", StartingBalance: "100", Type: "Savings"})
	require.NoError(t, err)

	updated, err := svc.IncrementBalance("alice", "Savings", "Bank", decimal.RequireFromString("-25.50"))
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "74.5", updated.Balance.String())

	// Unknown accounts report nil, not an error.
	missing, err := svc.IncrementBalance("alice", "Nope", "Bank", decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Nil(t, missing)
}
