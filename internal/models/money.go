package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format accepted from forms, the CLI and CSV files.
const DateLayout = "2006-01-02"

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrAmountTooLarge = errors.New("amount too large")
	ErrInvalidDate    = errors.New("invalid date, use YYYY-MM-DD")
)

// MaxMoney mirrors the DECIMAL(10,2) column the schema was designed around.
var MaxMoney = Money(9_999_999_999)

// Money is an amount in minor units (two decimal places).
type Money int64

// ParseMoney parses a positive decimal amount such as "12", "12.5" or "12,50".
// More than two fractional digits are rounded half away from zero.
func ParseMoney(s string) (Money, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	return FromDecimal(d)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FromDecimal converts d to Money, rejecting non-positive and oversized values.
func FromDecimal(d decimal.Decimal) (Money, error) {
	d = d.Round(2)
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	if d.GreaterThan(MaxMoney.Decimal()) {
		return 0, ErrAmountTooLarge
	}
	return Money(d.Shift(2).IntPart()), nil
}

// Decimal returns m as a decimal with two places.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String renders m with exactly two decimals, e.g. "1234.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float returns m in major units for display math only.
func (m Money) Float() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// Percent returns m as a percentage of total, or zero when total is not positive.
func (m Money) Percent(total Money) float64 {
	if total <= 0 {
		return 0
	}
	p, _ := decimal.NewFromInt(int64(m)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Float64()
	return p
}

// MarshalJSON encodes m as a fixed two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a JSON string or number. Zero and negative
// values are allowed since balances can be either.
func (m *Money) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("amount: %w", ErrInvalidAmount)
		}
		s = n.String()
	}
	d, err := parseDecimal(s)
	if err != nil {
		return err
	}
	*m = Money(d.Round(2).Shift(2).IntPart())
	return nil
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
