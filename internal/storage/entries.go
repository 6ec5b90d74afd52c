package storage

import (
	"context"
	"strings"

	"finance-tracker/internal/models"
)

// rangeFilter appends date bounds for a non-zero range.
func rangeFilter(q *strings.Builder, args []any, r models.DateRange) []any {
	if !r.From.IsZero() {
		q.WriteString(" AND date >= ?")
		args = append(args, models.DateOnly(r.From))
	}
	if !r.To.IsZero() {
		q.WriteString(" AND date < ?")
		args = append(args, models.DateOnly(r.To))
	}
	return args
}

// CreateExpense inserts an expense and fills in its ID.
func (db *DB) CreateExpense(ctx context.Context, e *models.Expense) error {
	result, err := db.conn.ExecContext(ctx,
		"INSERT INTO expense (user_id, amount_cents, category, date, note, payment_method) VALUES (?, ?, ?, ?, ?, ?)",
		e.UserID, int64(e.Amount), e.Category, models.DateOnly(e.Date), e.Note, e.PaymentMethod,
	)
	if err != nil {
		return mapError(err)
	}
	e.ID, err = result.LastInsertId()
	return err
}

// ListExpenses returns a user's expenses within r, newest first.
func (db *DB) ListExpenses(ctx context.Context, userID int64, r models.DateRange) ([]models.Expense, error) {
	var q strings.Builder
	q.WriteString("SELECT expense_id, user_id, amount_cents, category, date, note, payment_method FROM expense WHERE user_id = ?")
	args := rangeFilter(&q, []any{userID}, r)
	q.WriteString(" ORDER BY date DESC, expense_id DESC")

	rows, err := db.conn.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var cents int64
		if err := rows.Scan(&e.ID, &e.UserID, &cents, &e.Category, &e.Date, &e.Note, &e.PaymentMethod); err != nil {
			return nil, err
		}
		e.Amount = models.Money(cents)
		e.Date = models.DateOnly(e.Date)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// CreateIncome inserts an income row and fills in its ID.
func (db *DB) CreateIncome(ctx context.Context, in *models.Income) error {
	result, err := db.conn.ExecContext(ctx,
		"INSERT INTO income (user_id, amount_cents, source, date, note) VALUES (?, ?, ?, ?, ?)",
		in.UserID, int64(in.Amount), in.Source, models.DateOnly(in.Date), in.Note,
	)
	if err != nil {
		return mapError(err)
	}
	in.ID, err = result.LastInsertId()
	return err
}

// ListIncome returns a user's income within r, newest first.
func (db *DB) ListIncome(ctx context.Context, userID int64, r models.DateRange) ([]models.Income, error) {
	var q strings.Builder
	q.WriteString("SELECT income_id, user_id, amount_cents, source, date, note FROM income WHERE user_id = ?")
	args := rangeFilter(&q, []any{userID}, r)
	q.WriteString(" ORDER BY date DESC, income_id DESC")

	rows, err := db.conn.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incomes []models.Income
	for rows.Next() {
		var in models.Income
		var cents int64
		if err := rows.Scan(&in.ID, &in.UserID, &cents, &in.Source, &in.Date, &in.Note); err != nil {
			return nil, err
		}
		in.Amount = models.Money(cents)
		in.Date = models.DateOnly(in.Date)
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

// Totals sums a user's income and expenses in one statement.
func (db *DB) Totals(ctx context.Context, userID int64) (models.Totals, error) {
	var income, expense int64
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COALESCE(SUM(amount_cents), 0) FROM income WHERE user_id = ?),
			(SELECT COALESCE(SUM(amount_cents), 0) FROM expense WHERE user_id = ?)
	`, userID, userID).Scan(&income, &expense)
	if err != nil {
		return models.Totals{}, err
	}
	return models.Totals{Income: models.Money(income), Expense: models.Money(expense)}, nil
}

// CategoryTotals groups a user's expenses within r by category, largest first.
// Categories differing only in case are one group, shown under the
// alphabetically first spelling.
func (db *DB) CategoryTotals(ctx context.Context, userID int64, r models.DateRange) ([]models.CategoryTotal, error) {
	var q strings.Builder
	q.WriteString("SELECT MIN(category) AS name, COALESCE(SUM(amount_cents), 0) AS total, COUNT(*) FROM expense WHERE user_id = ?")
	args := rangeFilter(&q, []any{userID}, r)
	q.WriteString(" GROUP BY LOWER(category) ORDER BY total DESC, name ASC")

	rows, err := db.conn.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []models.CategoryTotal
	for rows.Next() {
		var ct models.CategoryTotal
		var cents int64
		if err := rows.Scan(&ct.Category, &cents, &ct.Count); err != nil {
			return nil, err
		}
		ct.Total = models.Money(cents)
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}
