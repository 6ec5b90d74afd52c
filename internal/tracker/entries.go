package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finance-tracker/internal/events"
	"finance-tracker/internal/logging"
	"finance-tracker/internal/models"
)

// ExpenseInput is the add-expense form.
type ExpenseInput struct {
	Amount        string `json:"amount" validate:"required"`
	Category      string `json:"category" validate:"required,max=100"`
	Date          string `json:"date" validate:"required"`
	Note          string `json:"note" validate:"max=500"`
	PaymentMethod string `json:"payment_method" validate:"max=50"`
}

// IncomeInput is the add-income form.
type IncomeInput struct {
	Amount string `json:"amount" validate:"required"`
	Source string `json:"source" validate:"required,max=100"`
	Date   string `json:"date" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}

// BudgetStatus compares a user's total income with total expenses.
type BudgetStatus struct {
	TotalIncome  models.Money `json:"total_income"`
	TotalExpense models.Money `json:"total_expense"`
	Balance      models.Money `json:"balance"`
	Overspent    bool         `json:"overspent"`
}

// StatusFromTotals derives the status; overspent means expenses strictly
// exceed income.
func StatusFromTotals(t models.Totals) BudgetStatus {
	return BudgetStatus{
		TotalIncome:  t.Income,
		TotalExpense: t.Expense,
		Balance:      t.Income - t.Expense,
		Overspent:    t.Expense > t.Income,
	}
}

// parseEntry validates the struct tags plus the amount and date strings.
func (s *Service) parseEntry(in any, amount, date string) (models.Money, time.Time, error) {
	verr := &ValidationError{}
	if err := fromValidator(s.validate.Struct(in), verr); err != nil {
		return 0, time.Time{}, err
	}

	var m models.Money
	if strings.TrimSpace(amount) != "" {
		var err error
		if m, err = models.ParseMoney(amount); err != nil {
			verr.add("amount", "must be a positive number with at most two decimals")
		}
	}
	var d time.Time
	if strings.TrimSpace(date) != "" {
		var err error
		if d, err = models.ParseDate(date); err != nil {
			verr.add("date", "must be a date in YYYY-MM-DD format")
		}
	}
	return m, d, verr.orNil()
}

// AddExpense records an expense and returns it with the updated status.
// The status is nil when the row was stored but the totals could not be
// reloaded.
func (s *Service) AddExpense(ctx context.Context, userID int64, in ExpenseInput) (*models.Expense, *BudgetStatus, error) {
	in.Category = strings.TrimSpace(in.Category)
	in.Note = strings.TrimSpace(in.Note)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)

	amount, date, err := s.parseEntry(in, in.Amount, in.Date)
	if err != nil {
		return nil, nil, err
	}
	e := &models.Expense{
		UserID:        userID,
		Amount:        amount,
		Category:      in.Category,
		Date:          date,
		Note:          in.Note,
		PaymentMethod: in.PaymentMethod,
	}
	if err := s.store.CreateExpense(ctx, e); err != nil {
		return nil, nil, fmt.Errorf("create expense: %w", err)
	}

	status := s.statusAfterInsert(ctx, userID)
	s.publish(ctx, events.Event{
		Type: events.TypeExpenseRecorded, UserID: userID, Amount: e.Amount, Category: e.Category,
	}, status)
	return e, status, nil
}

// AddIncome records income and returns it with the updated status.
func (s *Service) AddIncome(ctx context.Context, userID int64, in IncomeInput) (*models.Income, *BudgetStatus, error) {
	in.Source = strings.TrimSpace(in.Source)
	in.Note = strings.TrimSpace(in.Note)

	amount, date, err := s.parseEntry(in, in.Amount, in.Date)
	if err != nil {
		return nil, nil, err
	}
	inc := &models.Income{
		UserID: userID,
		Amount: amount,
		Source: in.Source,
		Date:   date,
		Note:   in.Note,
	}
	if err := s.store.CreateIncome(ctx, inc); err != nil {
		return nil, nil, fmt.Errorf("create income: %w", err)
	}

	status := s.statusAfterInsert(ctx, userID)
	s.publish(ctx, events.Event{
		Type: events.TypeIncomeRecorded, UserID: userID, Amount: inc.Amount, Category: inc.Source,
	}, status)
	return inc, status, nil
}

// statusAfterInsert reloads the totals once a row is committed. A failure
// here must not fail the insert, so it is logged and reported as nil.
func (s *Service) statusAfterInsert(ctx context.Context, userID int64) *BudgetStatus {
	status, err := s.BudgetStatus(ctx, userID)
	if err != nil {
		s.log.WarnContext(ctx, "reload budget status after insert failed",
			logging.FieldUserID, userID, logging.FieldError, err)
		return nil
	}
	return &status
}

// publish sends e and, when the user is overspent, an alert. Broker
// failures are logged and never surface to the caller. A nil status sends
// e without totals.
func (s *Service) publish(ctx context.Context, e events.Event, status *BudgetStatus) {
	if status == nil {
		status = &BudgetStatus{}
	}
	e.TotalIncome = status.TotalIncome
	e.TotalExpense = status.TotalExpense
	e.OccurredAt = s.now().UTC()

	batch := []events.Event{e}
	if status.Overspent {
		alert := e
		alert.Type = events.TypeBudgetOverspent
		batch = append(batch, alert)
	}
	for _, ev := range batch {
		if err := s.pub.Publish(ctx, ev); err != nil {
			s.log.WarnContext(ctx, "publish event failed",
				"type", ev.Type, logging.FieldUserID, ev.UserID, logging.FieldError, err)
		}
	}
}

// BudgetStatus returns the user's all-time totals.
func (s *Service) BudgetStatus(ctx context.Context, userID int64) (BudgetStatus, error) {
	t, err := s.store.Totals(ctx, userID)
	if err != nil {
		return BudgetStatus{}, fmt.Errorf("load totals: %w", err)
	}
	return StatusFromTotals(t), nil
}

// Expenses lists a user's expenses within r, newest first.
func (s *Service) Expenses(ctx context.Context, userID int64, r models.DateRange) ([]models.Expense, error) {
	return s.store.ListExpenses(ctx, userID, r)
}

// Income lists a user's income within r, newest first.
func (s *Service) Income(ctx context.Context, userID int64, r models.DateRange) ([]models.Income, error) {
	return s.store.ListIncome(ctx, userID, r)
}
