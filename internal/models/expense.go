package models

import "time"

// Expense represents money leaving a user's pocket.
type Expense struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Amount        Money     `json:"amount"`
	Category      string    `json:"category"`
	Date          time.Time `json:"date"`
	Note          string    `json:"note,omitempty"`
	PaymentMethod string    `json:"payment_method,omitempty"`
}

// Income represents money coming in from a source.
type Income struct {
	ID     int64     `json:"id"`
	UserID int64     `json:"user_id"`
	Amount Money     `json:"amount"`
	Source string    `json:"source"`
	Date   time.Time `json:"date"`
	Note   string    `json:"note,omitempty"`
}

// BudgetGoal is a per-category amount a user wants to stay under.
type BudgetGoal struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Category  string    `json:"category"`
	Amount    Money     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User represents a user account.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Session represents a user session.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CategoryTotal is the summed expense amount for one category.
type CategoryTotal struct {
	Category string
	Total    Money
	Count    int
}

// CategoryShare is a category total with its share of all expenses.
type CategoryShare struct {
	Category string  `json:"category"`
	Total    Money   `json:"total"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// Totals holds the summed income and expense amounts for a user.
type Totals struct {
	Income  Money
	Expense Money
}

// DateRange bounds a query by calendar date. Zero values leave the side open.
type DateRange struct {
	From time.Time
	To   time.Time // exclusive
}

// MonthRange returns the range covering the given calendar month.
func MonthRange(year int, month time.Month) DateRange {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{From: from, To: from.AddDate(0, 1, 0)}
}

// IsZero reports whether the range is unbounded on both sides.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}
