package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown payment status: %s", s)
	}
}

// Ledger transitions are one-directional; refunded is reachable only from
// completed.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusCompleted: true, StatusFailed: true},
	StatusCompleted: {StatusRefunded: true},
	StatusFailed:    {},
	StatusRefunded:  {},
}

func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

// Record is one row of the admin payment ledger.
type Record struct {
	ID        string          `json:"id"`
	BookingID string          `json:"bookingId,omitempty"`
	Reference string          `json:"reference"`
	Purpose   string          `json:"purpose"`
	Amount    decimal.Decimal `json:"amount"`
	Fee       decimal.Decimal `json:"fee"`
	Currency  string          `json:"currency"`
	Status    Status          `json:"status"`
	Payer     string          `json:"payer"`
	Recipient string          `json:"recipient"`
	Method    string          `json:"method"`

	// CheckoutURL is kept so a repeated payment request returns the same
	// hosted page instead of opening a second session.
	CheckoutURL string `json:"checkoutUrl,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
