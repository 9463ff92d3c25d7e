package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"mattress_money/internal/domain"
	"mattress_money/internal/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWorld backs all three engine dependencies with in-memory state and
// injectable failures
type fakeWorld struct {
	accounts      map[string]*domain.Account  // keyed institution/name
	mattresses    map[string]*domain.Mattress // keyed by name
	transactions  []domain.Transaction
	nextID        uint
	allowNegative bool

	failBalanceFor  string // institution/name whose increment fails
	failMattressFor string // mattress name whose increment fails
	failCreate      bool
	failDelete      bool
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		accounts:      map[string]*domain.Account{},
		mattresses:    map[string]*domain.Mattress{},
		allowNegative: true,
	}
}

func (w *fakeWorld) addAccount(name, institution, balance string) {
	w.accounts[institution+"/"+name] = &domain.Account{
		Username:    "alice",
		Name:        name,
		Institution: institution,
		Balance:     decimal.RequireFromString(balance),
	}
}

func (w *fakeWorld) addMattress(name, amount string) {
	w.mattresses[name] = &domain.Mattress{
		Username: "alice",
		Name:     name,
		Amount:   decimal.RequireFromString(amount),
	}
}

func (w *fakeWorld) balance(name, institution string) string {
	return w.accounts[institution+"/"+name].Balance.String()
}

// AccountLedger

func (w *fakeWorld) Get(username, name, institution string) (*domain.Account, error) {
	a, ok := w.accounts[institution+"/"+name]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (w *fakeWorld) IncrementBalance(username, name, institution string, delta decimal.Decimal) (*domain.Account, error) {
	key := institution + "/" + name
	if w.failBalanceFor == key {
		return nil, errors.New("store down")
	}
	a, ok := w.accounts[key]
	if !ok {
		return nil, nil
	}
	a.Balance = a.Balance.Add(delta)
	copied := *a
	return &copied, nil
}

// MattressLedger

type fakeMattresses struct{ w *fakeWorld }

func (f fakeMattresses) Get(username, name string) (*domain.Mattress, error) {
	m, ok := f.w.mattresses[name]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (f fakeMattresses) IncrementAmount(username, name string, delta decimal.Decimal) (*domain.Mattress, error) {
	if f.w.failMattressFor == name {
		return nil, errors.New("store down")
	}
	m, ok := f.w.mattresses[name]
	if !ok {
		return nil, nil
	}
	m.Amount = m.Amount.Add(delta)
	copied := *m
	return &copied, nil
}

func (f fakeMattresses) AllowsNegative() bool { return f.w.allowNegative }

// TransactionStore

type fakeTransactions struct{ w *fakeWorld }

func (f fakeTransactions) Create(tx *domain.Transaction) error {
	if f.w.failCreate {
		return errors.New("insert failed")
	}
	f.w.nextID++
	tx.ID = f.w.nextID
	f.w.transactions = append(f.w.transactions, *tx)
	return nil
}

func (f fakeTransactions) Get(id uint, username string) (*domain.Transaction, error) {
	for i := range f.w.transactions {
		if f.w.transactions[i].ID == id && f.w.transactions[i].Username == username {
			copied := f.w.transactions[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (f fakeTransactions) Update(id uint, username string, fields map[string]any) (int64, error) {
	for i := range f.w.transactions {
		tx := &f.w.transactions[i]
		if tx.ID != id || tx.Username != username {
			continue
		}
		for column, value := range fields {
			switch column {
			case "location":
				tx.Location = value.(string)
			case "source_account":
				tx.SourceAccount = value.(string)
			case "source_institution":
				tx.SourceInstitution = value.(string)
			case "destination_account":
				tx.DestinationAccount = value.(string)
			case "destination_institution":
				tx.DestinationInstitution = value.(string)
			case "tag":
				tx.Tag = value.(string)
			case "date":
				tx.Date = value.(time.Time)
			case "amount":
				tx.Amount = value.(decimal.Decimal)
			case "description":
				tx.Description = value.(string)
			case "mattress":
				tx.Mattress = value.(string)
			}
		}
		return 1, nil
	}
	return 0, nil
}

func (f fakeTransactions) Delete(id uint, username string) (int64, error) {
	if f.w.failDelete {
		return 0, errors.New("delete failed")
	}
	for i := range f.w.transactions {
		if f.w.transactions[i].ID == id && f.w.transactions[i].Username == username {
			f.w.transactions = append(f.w.transactions[:i], f.w.transactions[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f fakeTransactions) List(username string) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, len(f.w.transactions))
	copy(out, f.w.transactions)
	return out, nil
}

func (f fakeTransactions) ListWithinRange(username string, start, end time.Time) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range f.w.transactions {
		if !tx.Date.Before(start) && !tx.Date.After(end) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f fakeTransactions) Distinct(username, field string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, tx := range f.w.transactions {
		value := tx.Tag
		if field == "location" {
			value = tx.Location
		}
		if !seen[value] {
			seen[value] = true
			out = append(out, value)
		}
	}
	return out, nil
}

func newTestEngine(w *fakeWorld) *Service {
	return NewService(w, fakeMattresses{w}, fakeTransactions{w})
}

func validInput() CreateInput {
	return CreateInput{
		Date:                   "2024-03-15",
		Location:               "Employer Inc",
		SourceAccount:          "Outside",
		DestinationAccount:     "Checking",
		DestinationInstitution: "Bank",
		Tag:                    "income",
		Amount:                 "100.00",
	}
}

func TestCreateIncomeFromOutside(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "50")
	svc := newTestEngine(w)

	tx, err := svc.Create("alice", validInput())
	require.NoError(t, err)
	assert.Equal(t, domain.OutsideName, tx.SourceInstitution, "Outside source forces Outside institution")
	assert.Equal(t, "150", w.balance("Checking", "Bank"))
	assert.Len(t, w.transactions, 1)
}

func TestCreateSpendToOutside(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "150")
	svc := newTestEngine(w)

	in := validInput()
	in.SourceAccount = "Checking"
	in.SourceInstitution = "Bank"
	in.DestinationAccount = "outside" // case-insensitive
	in.DestinationInstitution = ""
	in.Tag = "groceries"
	in.Amount = "40.25"
	_, err := svc.Create("alice", in)
	require.NoError(t, err)
	assert.Equal(t, "109.75", w.balance("Checking", "Bank"))
}

func TestCreateInternalTransfer(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "100")
	w.addAccount("Savings", "Bank", "10")
	svc := newTestEngine(w)

	in := validInput()
	in.SourceAccount = "Checking"
	in.SourceInstitution = "Bank"
	in.DestinationAccount = "Savings"
	in.DestinationInstitution = "Bank"
	in.Tag = "transfer"
	in.Amount = "25"
	_, err := svc.Create("alice", in)
	require.NoError(t, err)
	assert.Equal(t, "75", w.balance("Checking", "Bank"))
	assert.Equal(t, "35", w.balance("Savings", "Bank"))
}

func TestCreateRejectsBothSidesOutside(t *testing.T) {
	w := newFakeWorld()
	svc := newTestEngine(w)

	in := validInput()
	in.DestinationAccount = "Outside"
	in.DestinationInstitution = ""
	_, err := svc.Create("alice", in)
	assert.ErrorIs(t, err, errs.ErrInvalidFormData)
	assert.Empty(t, w.transactions)
}

func TestCreateValidation(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "50")
	svc := newTestEngine(w)

	mutations := []func(*CreateInput){
		func(in *CreateInput) { in.Location = " " },
		func(in *CreateInput) { in.SourceAccount = "" },
		func(in *CreateInput) { in.DestinationAccount = "" },
		func(in *CreateInput) { in.DestinationInstitution = "" },
		func(in *CreateInput) { in.Tag = "" },
		func(in *CreateInput) { in.Date = "03/15/2024" },
		func(in *CreateInput) { in.Amount = "-5" },
		func(in *CreateInput) { in.Amount = "5.123" },
		func(in *CreateInput) { in.Mattress = "unallocated" },
		func(in *CreateInput) { in.DestinationAccount = "Nope" },
	}
	for i, mutate := range mutations {
		in := validInput()
		mutate(&in)
		_, err := svc.Create("alice", in)
		assert.ErrorIs(t, err, errs.ErrInvalidFormData, "case %d", i)
	}
	assert.Empty(t, w.transactions)
}

func TestCreateDropsOverlongDescription(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "50")
	svc := newTestEngine(w)

	in := validInput()
	for len(in.Description) < 250 {
		in.Description += "very long description "
	}
	tx, err := svc.Create("alice", in)
	require.NoError(t, err)
	assert.Empty(t, tx.Description)
}

func TestCreateKeepsMultibyteDescription(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "50")
	svc := newTestEngine(w)

	// 190 characters but 570 bytes; the cap counts characters.
	in := validInput()
	in.Description = strings.Repeat("日", 190)
	tx, err := svc.Create("alice", in)
	require.NoError(t, err)
	assert.Equal(t, in.Description, tx.Description)
}

func TestCreateAdjustsMattress(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "50")
	w.addMattress("Vacation", "20")
	svc := newTestEngine(w)

	// Income from Outside earmarks into the mattress.
	in := validInput()
	in.Mattress = "Vacation"
	_, err := svc.Create("alice", in)
	require.NoError(t, err)
	assert.Equal(t, "120", w.mattresses["Vacation"].Amount.String())

	// Spending out of a tracked account draws from it.
	spend := validInput()
	spend.SourceAccount = "Checking"
	spend.SourceInstitution = "Bank"
	spend.DestinationAccount = "Outside"
	spend.DestinationInstitution = ""
	spend.Amount = "30"
	spend.Mattress = "Vacation"
	_, err = svc.Create("alice", spend)
	require.NoError(t, err)
	assert.Equal(t, "90", w.mattresses["Vacation"].Amount.String())
}

func TestCreateMattressOverdrawForbidden(t *testing.T) {
	w := newFakeWorld()
	w.allowNegative = false
	w.addAccount("Checking", "Bank", "500")
	w.addMattress("Vacation", "20")
	svc := newTestEngine(w)

	in := validInput()
	in.SourceAccount = "Checking"
	in.SourceInstitution = "Bank"
	in.DestinationAccount = "Outside"
	in.DestinationInstitution = ""
	in.Amount = "30"
	in.Mattress = "Vacation"
	_, err := svc.Create("alice", in)
	assert.ErrorIs(t, err, errs.ErrInvalidFormData)
	assert.Equal(t, "20", w.mattresses["Vacation"].Amount.String())
	assert.Equal(t, "500", w.balance("Checking", "Bank"))
}

func TestEditMattressOverdrawForbidden(t *testing.T) {
	w := newFakeWorld()
	w.allowNegative = false
	w.addAccount("Checking", "Bank", "500")
	w.addMattress("Vacation", "20")
	svc := newTestEngine(w)

	in := validInput()
	in.SourceAccount = "Checking"
	in.SourceInstitution = "Bank"
	in.DestinationAccount = "Outside"
	in.DestinationInstitution = ""
	in.Amount = "10"
	in.Mattress = "Vacation"
	tx, err := svc.Create("alice", in)
	require.NoError(t, err)
	assert.Equal(t, "10", w.mattresses["Vacation"].Amount.String())

	// Raising the spend past the remaining allocation is refused before any
	// write, even though the attached mattress itself did not change.
	newAmount := "100"
	_, err = svc.Edit("alice", tx.ID, EditInput{Amount: &newAmount})
	assert.ErrorIs(t, err, errs.ErrInvalidFormData)
	assert.Equal(t, "10", w.mattresses["Vacation"].Amount.String())
	assert.Equal(t, "490", w.balance("Checking", "Bank"))
	assert.Equal(t, "10", w.transactions[0].Amount.String())
}

func TestCreatePaycheckDerivesEmployerContribution(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "0")
	svc := newTestEngine(w)

	in := validInput()
	in.Amount = "1500.00"
	in.IsPaycheck = true
	in.Paycheck = PaycheckInput{
		Earnings:     "2000.00",
		StateTaxes:   "100.00",
		FederalTaxes: "300.00",
		Healthcare:   "50.00",
		K401:         "120.00",
	}
	tx, err := svc.Create("alice", in)
	require.NoError(t, err)
	require.True(t, tx.EmployerContribution.Valid)
	// 100 + 300 + 50 + 120 + 1500 - 2000
	assert.Equal(t, "70", tx.EmployerContribution.Decimal.String())
	assert.True(t, tx.IsPaycheck)
}

func TestCreatePaycheckValidation(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "0")
	svc := newTestEngine(w)

	in := validInput()
	in.IsPaycheck = true
	in.Paycheck = PaycheckInput{} // missing required earnings
	_, err := svc.Create("alice", in)
	assert.ErrorIs(t, err, errs.ErrInvalidFormData)

	in.Paycheck = PaycheckInput{Earnings: "2000", Healthcare: "bad"}
	_, err = svc.Create("alice", in)
	assert.ErrorIs(t, err, errs.ErrInvalidFormData)
}

func TestCreateCompensatesOnBalanceFailure(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "100")
	w.addAccount("Savings", "Bank", "10")
	w.failBalanceFor = "Bank/Savings"
	svc := newTestEngine(w)

	in := validInput()
	in.SourceAccount = "Checking"
	in.SourceInstitution = "Bank"
	in.DestinationAccount = "Savings"
	in.DestinationInstitution = "Bank"
	in.Amount = "25"
	_, err := svc.Create("alice", in)
	require.Error(t, err)

	// The debit was rolled back and the document removed.
	assert.Equal(t, "100", w.balance("Checking", "Bank"))
	assert.Equal(t, "10", w.balance("Savings", "Bank"))
	assert.Empty(t, w.transactions)
}

func TestDeleteRestoresBalances(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "100")
	w.addMattress("Vacation", "0")
	svc := newTestEngine(w)

	in := validInput()
	in.Mattress = "Vacation"
	tx, err := svc.Create("alice", in)
	require.NoError(t, err)
	assert.Equal(t, "200", w.balance("Checking", "Bank"))
	assert.Equal(t, "100", w.mattresses["Vacation"].Amount.String())

	require.NoError(t, svc.Delete("alice", tx.ID))
	assert.Equal(t, "100", w.balance("Checking", "Bank"))
	assert.Equal(t, "0", w.mattresses["Vacation"].Amount.String())
	assert.Empty(t, w.transactions)
}

func TestDeleteMissingTransaction(t *testing.T) {
	w := newFakeWorld()
	svc := newTestEngine(w)
	assert.ErrorIs(t, svc.Delete("alice", 42), errs.ErrMissingData)
	assert.ErrorIs(t, svc.Delete("alice", 0), errs.ErrMissingData)
}

func TestDeleteCompensatesWhenRemovalFails(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "100")
	svc := newTestEngine(w)

	tx, err := svc.Create("alice", validInput())
	require.NoError(t, err)
	assert.Equal(t, "200", w.balance("Checking", "Bank"))

	w.failDelete = true
	err = svc.Delete("alice", tx.ID)
	require.Error(t, err)

	// The reversal was undone; the live entry still matches the balances.
	assert.Equal(t, "200", w.balance("Checking", "Bank"))
	assert.Len(t, w.transactions, 1)
}

func TestEditAmountOnlyAppliesNetDelta(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "0")
	svc := newTestEngine(w)

	tx, err := svc.Create("alice", validInput()) // +100 income
	require.NoError(t, err)
	assert.Equal(t, "100", w.balance("Checking", "Bank"))

	newAmount := "150.00"
	updated, err := svc.Edit("alice", tx.ID, EditInput{Amount: &newAmount})
	require.NoError(t, err)
	assert.Equal(t, "150", updated.Amount.String())
	// Net effect is +50, not -100/+150 applied to different reads.
	assert.Equal(t, "150", w.balance("Checking", "Bank"))
	assert.Equal(t, "150", w.transactions[0].Amount.String())
}

func TestEditMovesDestinationAccount(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "0")
	w.addAccount("Savings", "Bank", "0")
	svc := newTestEngine(w)

	tx, err := svc.Create("alice", validInput()) // +100 into Checking
	require.NoError(t, err)

	newDst := "Savings"
	_, err = svc.Edit("alice", tx.ID, EditInput{DestinationAccount: &newDst})
	require.NoError(t, err)
	assert.Equal(t, "0", w.balance("Checking", "Bank"))
	assert.Equal(t, "100", w.balance("Savings", "Bank"))
}

func TestEditMovesMattressAllocation(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "0")
	w.addMattress("Vacation", "0")
	w.addMattress("Emergency", "0")
	svc := newTestEngine(w)

	in := validInput()
	in.Mattress = "Vacation"
	tx, err := svc.Create("alice", in)
	require.NoError(t, err)
	assert.Equal(t, "100", w.mattresses["Vacation"].Amount.String())

	newMattress := "Emergency"
	_, err = svc.Edit("alice", tx.ID, EditInput{Mattress: &newMattress})
	require.NoError(t, err)
	assert.Equal(t, "0", w.mattresses["Vacation"].Amount.String())
	assert.Equal(t, "100", w.mattresses["Emergency"].Amount.String())
}

func TestEditRequiresInstitutionWhenLeavingOutside(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "0")
	w.addAccount("Savings", "Bank", "0")
	svc := newTestEngine(w)

	tx, err := svc.Create("alice", validInput()) // source is Outside
	require.NoError(t, err)

	newSrc := "Savings"
	_, err = svc.Edit("alice", tx.ID, EditInput{SourceAccount: &newSrc})
	assert.ErrorIs(t, err, errs.ErrInvalidFormData)

	inst := "Bank"
	_, err = svc.Edit("alice", tx.ID, EditInput{SourceAccount: &newSrc, SourceInstitution: &inst})
	require.NoError(t, err)
	assert.Equal(t, "-100", w.balance("Savings", "Bank"))
}

func TestEditNoFields(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "0")
	svc := newTestEngine(w)
	tx, err := svc.Create("alice", validInput())
	require.NoError(t, err)

	_, err = svc.Edit("alice", tx.ID, EditInput{})
	assert.ErrorIs(t, err, errs.ErrMissingData)
	_, err = svc.Edit("alice", 0, EditInput{})
	assert.ErrorIs(t, err, errs.ErrMissingData)
	_, err = svc.Edit("alice", 999, EditInput{})
	assert.ErrorIs(t, err, errs.ErrMissingData)
}

func TestEditCompensatesOnBalanceFailure(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "0")
	svc := newTestEngine(w)

	tx, err := svc.Create("alice", validInput())
	require.NoError(t, err)
	assert.Equal(t, "100", w.balance("Checking", "Bank"))

	w.failBalanceFor = "Bank/Checking"
	newAmount := "150.00"
	_, err = svc.Edit("alice", tx.ID, EditInput{Amount: &newAmount})
	require.Error(t, err)

	// The patch was reverted along with the failed adjustment.
	assert.Equal(t, "100", w.transactions[0].Amount.String())
	assert.Equal(t, "100", w.balance("Checking", "Bank"))
}

func TestDistinctValues(t *testing.T) {
	w := newFakeWorld()
	w.addAccount("Checking", "Bank", "0")
	svc := newTestEngine(w)

	for _, pair := range [][2]string{{"income", "Employer Inc"}, {"groceries", "Market"}, {"income", "Employer Inc"}} {
		in := validInput()
		in.Tag = pair[0]
		in.Location = pair[1]
		_, err := svc.Create("alice", in)
		require.NoError(t, err)
	}

	tags, err := svc.DistinctTags("alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"income", "groceries"}, tags)

	locations, err := svc.DistinctLocations("alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Employer Inc", "Market"}, locations)
}
