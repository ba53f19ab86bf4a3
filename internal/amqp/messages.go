package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetAlertMessage is published when a new expense pushes a budget into the
// warning or exceeded band. Consumers must treat it as advisory.
type BudgetAlertMessage struct {
	UserID     uuid.UUID       `json:"user_id"`
	ExpenseID  uuid.UUID       `json:"expense_id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Type       string          `json:"type"`
	Message    string          `json:"message"`
	Spent      decimal.Decimal `json:"spent"`
	Limit      decimal.Decimal `json:"limit"`
	Percentage int64           `json:"percentage,omitempty"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	Timestamp  time.Time       `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON creates a message from JSON bytes
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
