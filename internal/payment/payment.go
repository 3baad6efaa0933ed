// Package payment defines the provider-neutral contract the order pipeline
// uses to take gateway payments.
package payment

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Customer struct {
	Name  string
	Email string
	Phone string
}

type InitiateRequest struct {
	OrderID           string
	Token             string
	Amount            decimal.Decimal
	ReturnURL         string
	WebsiteURL        string
	PurchaseOrderName string
	Customer          Customer
}

// Session is an accepted payment: redirect the buyer to PaymentURL, track
// the payment by Pidx.
type Session struct {
	PaymentURL string
	Pidx       string
	ExpiresAt  string
}

type State int

const (
	Completed State = iota + 1
	NotCompleted
	ProviderFailure
)

func (s State) String() string {
	switch s {
	case Completed:
		return "completed"
	case NotCompleted:
		return "not_completed"
	case ProviderFailure:
		return "provider_error"
	}
	return "unknown"
}

// Outcome of a verification. Only Completed may finalize an order.
type Outcome struct {
	State         State
	Status        string
	TransactionID string
	TotalAmount   int64
	Err           *ProviderError
}

// ProviderError carries the gateway's own code and message.
type ProviderError struct {
	StatusCode int
	Key        string
	Detail     string
	Raw        []byte
}

func (e *ProviderError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("payment provider: %d %s: %s", e.StatusCode, e.Key, e.Detail)
	}
	return fmt.Sprintf("payment provider: %d: %s", e.StatusCode, e.Detail)
}

// MinorUnits converts a rupee amount to paisa.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
