// Package budget resolves a requested date to a recurring budget instance,
// lazily materializing one from the user's template when the period has not
// been seen before, and aggregates matching transactions against line items.
package budget

import (
	"errors"  // Error inspection
	"strings" // Input trimming
	"time"    // Period bounds

	"mattress_money/internal/domain" // Entity records
	"mattress_money/internal/errs"   // Error taxonomy
	"mattress_money/internal/store"  // Duplicate detection
	"mattress_money/internal/utils"  // Validation helpers

	"github.com/shopspring/decimal" // Exact money amounts
	"github.com/sirupsen/logrus"    // Logging library
)

// BudgetStore is the slice of the budget store the resolver needs
type BudgetStore interface {
	CreateTemplate(template *domain.BudgetTemplate) error
	TemplateByName(username, budgetName string) (*domain.BudgetTemplate, error)
	TemplateNames(username string) ([]string, error)
	InstanceContaining(username, budgetName string, date time.Time) (*domain.BudgetInstance, error)
	CreateInstance(instance *domain.BudgetInstance) error
}

// TransactionLister fetches the transactions that fall inside a period
type TransactionLister interface {
	ListWithinRange(username string, start, end time.Time) ([]domain.Transaction, error)
}

// Service is the budget period resolver
type Service struct {
	budgets      BudgetStore
	transactions TransactionLister
}

// NewService creates the budget resolver
func NewService(budgets BudgetStore, transactions TransactionLister) *Service {
	return &Service{budgets: budgets, transactions: transactions}
}

// PeriodBounds computes the first and last day of the recurrence period
// containing date: the calendar month for monthly budgets, Jan 1 through
// Dec 31 for yearly ones. All UTC calendar days.
func PeriodBounds(recurrence string, date time.Time) (time.Time, time.Time) {
	date = utils.DateToUTCDay(date)
	switch recurrence {
	case domain.RecurrenceYearly:
		start := time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(date.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		return start, end
	default:
		start := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
		// Day zero of the next month is the last day of this one.
		end := time.Date(date.Year(), date.Month()+1, 0, 0, 0, 0, 0, time.UTC)
		return start, end
	}
}

// LineItemInput is one raw budget line from the template form
type LineItemInput struct {
	Tag    string `json:"tag"`    // Transaction tag to budget against
	Amount string `json:"amount"` // Per-period amount
}

// TemplateInput is the raw budget template form
type TemplateInput struct {
	BudgetName string          `json:"budgetName"`
	Recurrence string          `json:"recurrence"`
	LineItems  []LineItemInput `json:"lineItems"`
}

// CreateTemplate validates and persists a new budget template
func (s *Service) CreateTemplate(username string, in TemplateInput) (*domain.BudgetTemplate, error) {
	name := strings.TrimSpace(in.BudgetName)
	if name == "" {
		return nil, errs.Invalidf("budget name %q", in.BudgetName)
	}

	recurrence := strings.TrimSpace(in.Recurrence)
	if !domain.IsValidRecurrence(recurrence) {
		return nil, errs.Invalidf("recurrence %q", in.Recurrence)
	}

	if len(in.LineItems) == 0 {
		return nil, errs.Invalidf("budget needs at least one line item")
	}
	lineItems := make(domain.LineItems, 0, len(in.LineItems))
	for _, item := range in.LineItems {
		tag := strings.TrimSpace(item.Tag)
		amount, ok := utils.ParseMoney(item.Amount)
		if tag == "" || !ok {
			return nil, errs.Invalidf("line item (%q, %q)", item.Tag, item.Amount)
		}
		lineItems = append(lineItems, domain.LineItem{Tag: tag, Amount: amount})
	}

	template := &domain.BudgetTemplate{
		Username:   username,
		BudgetName: name,
		Recurrence: recurrence,
		LineItems:  lineItems,
	}

	logrus.WithFields(logrus.Fields{
		"username":    username,
		"budget_name": name,
		"recurrence":  recurrence,
		"line_items":  len(lineItems),
	}).Info("Creating budget template")

	if err := s.budgets.CreateTemplate(template); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, errs.ErrItemExists
		}
		return nil, errs.Databasef("creating budget template: %v", err)
	}
	return template, nil
}

// TemplateNames returns the names of all of the user's budget templates
func (s *Service) TemplateNames(username string) ([]string, error) {
	return s.budgets.TemplateNames(username)
}

// Get resolves the budget instance containing date, materializing one from
// the template on first request for that period, and returns it with the
// transactions falling inside the period. Requesting the same (name, date)
// twice returns the same instance.
func (s *Service) Get(username, budgetName string, date time.Time) (*domain.BudgetInstance, []domain.Transaction, error) {
	date = utils.DateToUTCDay(date)

	instance, err := s.budgets.InstanceContaining(username, budgetName, date)
	if err != nil {
		return nil, nil, errs.Databasef("looking up budget instance: %v", err)
	}

	if instance == nil {
		template, err := s.budgets.TemplateByName(username, budgetName)
		if err != nil {
			return nil, nil, errs.Databasef("looking up budget template: %v", err)
		}
		if template == nil {
			return nil, nil, errs.ErrBudgetDoesNotExist
		}

		start, end := PeriodBounds(template.Recurrence, date)
		instance = &domain.BudgetInstance{
			Username:   username,
			BudgetName: budgetName,
			Recurrence: template.Recurrence,
			StartDate:  start,
			EndDate:    end,
			LineItems:  template.LineItems,
		}
		if err := s.budgets.CreateInstance(instance); err != nil {
			return nil, nil, errs.Databasef("materializing budget instance: %v", err)
		}
		logrus.WithFields(logrus.Fields{
			"username":    username,
			"budget_name": budgetName,
			"start_date":  start.Format("2006-01-02"),
			"end_date":    end.Format("2006-01-02"),
		}).Info("Materialized budget instance")
	}

	start, end := PeriodBounds(instance.Recurrence, date)
	transactions, err := s.transactions.ListWithinRange(username, start, end)
	if err != nil {
		return nil, nil, errs.Databasef("loading period transactions: %v", err)
	}
	return instance, transactions, nil
}

// LineSummary is one budget line aggregated against the period's spending
type LineSummary struct {
	Tag       string          `json:"tag"`       // Budget line tag
	Budgeted  decimal.Decimal `json:"budgeted"`  // Per-period amount
	Spent     decimal.Decimal `json:"spent"`     // Sum of matching transactions
	Remaining decimal.Decimal `json:"remaining"` // Budgeted minus spent
}

// Summarize aggregates transactions against the instance's line items: each
// transaction's amount counts toward the line whose tag it matches.
// Transactions with no matching line are ignored here but still live in the
// raw ledger.
func Summarize(instance *domain.BudgetInstance, transactions []domain.Transaction) []LineSummary {
	summaries := make([]LineSummary, len(instance.LineItems))
	for i, item := range instance.LineItems {
		spent := decimal.Zero
		for _, tx := range transactions {
			if tx.Tag == item.Tag {
				spent = spent.Add(tx.Amount)
			}
		}
		summaries[i] = LineSummary{
			Tag:       item.Tag,
			Budgeted:  item.Amount,
			Spent:     spent,
			Remaining: item.Amount.Sub(spent),
		}
	}
	return summaries
}
