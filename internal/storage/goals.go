package storage

import (
	"context"
	"time"

	"finance-tracker/internal/models"
)

var upsertGoalSQL = map[string]string{
	DriverSQLite: `INSERT INTO budget_goals (user_id, category, amount_cents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category) DO UPDATE SET
			amount_cents = excluded.amount_cents,
			updated_at = excluded.updated_at`,
	DriverMySQL: `INSERT INTO budget_goals (user_id, category, amount_cents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			amount_cents = VALUES(amount_cents),
			updated_at = VALUES(updated_at)`,
}

const goalColumns = "goal_id, user_id, category, amount_cents, created_at, updated_at"

func scanGoal(row rowScanner) (*models.BudgetGoal, error) {
	var g models.BudgetGoal
	var cents int64
	if err := row.Scan(&g.ID, &g.UserID, &g.Category, &cents, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	g.Amount = models.Money(cents)
	return &g, nil
}

// UpsertBudgetGoal sets the goal for (userID, category), replacing any earlier amount.
func (db *DB) UpsertBudgetGoal(ctx context.Context, userID int64, category string, amount models.Money) (*models.BudgetGoal, error) {
	now := time.Now().UTC()
	if _, err := db.conn.ExecContext(ctx, upsertGoalSQL[db.driver],
		userID, category, int64(amount), now, now,
	); err != nil {
		return nil, mapError(err)
	}
	return scanGoal(db.conn.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM budget_goals WHERE user_id = ? AND category = ?",
		userID, category))
}

// ListBudgetGoals returns a user's goals ordered by category.
func (db *DB) ListBudgetGoals(ctx context.Context, userID int64) ([]models.BudgetGoal, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+goalColumns+" FROM budget_goals WHERE user_id = ? ORDER BY category", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.BudgetGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}
