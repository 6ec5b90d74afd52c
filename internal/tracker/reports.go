package tracker

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"finance-tracker/internal/export"
	"finance-tracker/internal/models"

	"golang.org/x/sync/errgroup"
)

// Breakdown groups expenses within r by category, largest first, with each
// category's percentage of the total. Ties sort by category name.
func (s *Service) Breakdown(ctx context.Context, userID int64, r models.DateRange) ([]models.CategoryShare, error) {
	totals, err := s.store.CategoryTotals(ctx, userID, r)
	if err != nil {
		return nil, fmt.Errorf("load category totals: %w", err)
	}
	return Shares(totals), nil
}

// Shares converts category totals into sorted percentage rows.
func Shares(totals []models.CategoryTotal) []models.CategoryShare {
	var sum models.Money
	for _, t := range totals {
		sum += t.Total
	}
	out := make([]models.CategoryShare, 0, len(totals))
	for _, t := range totals {
		out = append(out, models.CategoryShare{
			Category: t.Category,
			Total:    t.Total,
			Count:    t.Count,
			Percent:  t.Total.Percent(sum),
		})
	}
	slices.SortStableFunc(out, func(a, b models.CategoryShare) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// GoalInput is the set-budget-goal form.
type GoalInput struct {
	Category string `json:"category" validate:"required,max=100"`
	Amount   string `json:"amount" validate:"required"`
}

// SetBudgetGoal creates or replaces the user's goal for a category.
func (s *Service) SetBudgetGoal(ctx context.Context, userID int64, in GoalInput) (*models.BudgetGoal, error) {
	in.Category = strings.TrimSpace(in.Category)

	verr := &ValidationError{}
	if err := fromValidator(s.validate.Struct(in), verr); err != nil {
		return nil, err
	}
	var amount models.Money
	if strings.TrimSpace(in.Amount) != "" {
		var err error
		if amount, err = models.ParseMoney(in.Amount); err != nil {
			verr.add("amount", "must be a positive number with at most two decimals")
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	// Reuse an existing goal's spelling so "food" and "Food" stay one goal.
	goals, err := s.store.ListBudgetGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load budget goals: %w", err)
	}
	for _, g := range goals {
		if strings.EqualFold(g.Category, in.Category) {
			in.Category = g.Category
			break
		}
	}

	goal, err := s.store.UpsertBudgetGoal(ctx, userID, in.Category, amount)
	if err != nil {
		return nil, fmt.Errorf("save budget goal: %w", err)
	}
	return goal, nil
}

// GoalStatus is a goal compared with spending in its category.
type GoalStatus struct {
	Goal      models.BudgetGoal `json:"goal"`
	Spent     models.Money      `json:"spent"`
	Remaining models.Money      `json:"remaining"`
	Percent   float64           `json:"percent"`
	Exceeded  bool              `json:"exceeded"`
}

// GoalProgress reports each goal against spending within r.
func (s *Service) GoalProgress(ctx context.Context, userID int64, r models.DateRange) ([]GoalStatus, error) {
	goals, err := s.store.ListBudgetGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load budget goals: %w", err)
	}
	if len(goals) == 0 {
		return nil, nil
	}
	totals, err := s.store.CategoryTotals(ctx, userID, r)
	if err != nil {
		return nil, fmt.Errorf("load category totals: %w", err)
	}

	spent := make(map[string]models.Money, len(totals))
	for _, t := range totals {
		spent[strings.ToLower(t.Category)] += t.Total
	}
	out := make([]GoalStatus, 0, len(goals))
	for _, g := range goals {
		sp := spent[strings.ToLower(g.Category)]
		out = append(out, GoalStatus{
			Goal:      g,
			Spent:     sp,
			Remaining: g.Amount - sp,
			Percent:   sp.Percent(g.Amount),
			Exceeded:  sp > g.Amount,
		})
	}
	return out, nil
}

// Overview is everything the dashboard shows at once.
type Overview struct {
	Status    BudgetStatus           `json:"status"`
	Breakdown []models.CategoryShare `json:"breakdown"`
	Goals     []GoalStatus           `json:"goals"`
}

// Overview loads status, breakdown within r and goal progress within r concurrently.
func (s *Service) Overview(ctx context.Context, userID int64, r models.DateRange) (*Overview, error) {
	var ov Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ov.Status, err = s.BudgetStatus(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		ov.Breakdown, err = s.Breakdown(ctx, userID, r)
		return err
	})
	g.Go(func() error {
		var err error
		ov.Goals, err = s.GoalProgress(ctx, userID, r)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ov, nil
}

func (s *Service) allEntries(ctx context.Context, userID int64) ([]models.Expense, []models.Income, error) {
	var expenses []models.Expense
	var incomes []models.Income
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpenses(ctx, userID, models.DateRange{})
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = s.store.ListIncome(ctx, userID, models.DateRange{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("load entries: %w", err)
	}
	return expenses, incomes, nil
}

// ExportCSV writes the user's expenses and income as two CSV documents.
func (s *Service) ExportCSV(ctx context.Context, userID int64, expensesW, incomeW io.Writer) error {
	expenses, incomes, err := s.allEntries(ctx, userID)
	if err != nil {
		return err
	}
	if err := export.WriteExpensesCSV(expensesW, expenses); err != nil {
		return fmt.Errorf("write expenses: %w", err)
	}
	if err := export.WriteIncomeCSV(incomeW, incomes); err != nil {
		return fmt.Errorf("write income: %w", err)
	}
	return nil
}

// ExportFiles writes expenses.csv and income.csv into dir.
func (s *Service) ExportFiles(ctx context.Context, userID int64, dir string) ([]string, error) {
	expenses, incomes, err := s.allEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return export.WriteFiles(dir, expenses, incomes)
}

// ExportWorkbook writes both tables to an XLSX workbook.
func (s *Service) ExportWorkbook(ctx context.Context, userID int64, w io.Writer) error {
	expenses, incomes, err := s.allEntries(ctx, userID)
	if err != nil {
		return err
	}
	return export.WriteWorkbook(w, expenses, incomes)
}
