// Package events publishes tracker activity to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finance-tracker/internal/models"
)

// Routing keys on the topic exchange.
const (
	TypeExpenseRecorded = "entry.expense"
	TypeIncomeRecorded  = "entry.income"
	TypeBudgetOverspent = "budget.overspent"
)

// Event is the JSON body of every published message.
type Event struct {
	Type         string       `json:"type"`
	UserID       int64        `json:"user_id"`
	Username     string       `json:"username,omitempty"`
	Amount       models.Money `json:"amount,omitempty"`
	Category     string       `json:"category,omitempty"`
	TotalIncome  models.Money `json:"total_income"`
	TotalExpense models.Money `json:"total_expense"`
	OccurredAt   time.Time    `json:"occurred_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (e Event) marshal() ([]byte, error) {
	return json.Marshal(e)
}

func decode(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return Event{}, fmt.Errorf("decode event: missing type")
	}
	return e, nil
}
