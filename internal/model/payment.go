package model

import (
	"fmt"
	"time"
)

// PaymentStatus is the local state of a round's collection payment.
type PaymentStatus string

// Payment states. Initial is before any gateway call; Succeeded, Failed and
// Cancelled are terminal for the collection attempt; ActionRequired can still
// move to any terminal state via a later webhook or manual refresh.
const (
	PaymentInitial        PaymentStatus = "initial"
	PaymentProcessing     PaymentStatus = "processing"
	PaymentSucceeded      PaymentStatus = "succeeded"
	PaymentFailed         PaymentStatus = "failed"
	PaymentCancelled      PaymentStatus = "cancelled"
	PaymentActionRequired PaymentStatus = "action_required"
)

// ParsePaymentStatus rejects unknown status values at the persistence boundary.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentInitial, PaymentProcessing, PaymentSucceeded,
		PaymentFailed, PaymentCancelled, PaymentActionRequired:
		return PaymentStatus(s), nil
	default:
		return "", fmt.Errorf("unknown payment status: %q", s)
	}
}

// Terminal reports whether the status ends the collection attempt.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentSucceeded, PaymentFailed, PaymentCancelled:
		return true
	case PaymentInitial, PaymentProcessing, PaymentActionRequired:
		return false
	}
	return false
}

// Payment represents the company-side funds collection for one round (1:1).
// Amount and Fee are integer cents. GatewayIntentID is globally unique once set.
type Payment struct {
	ID              string        `json:"id"`
	RoundID         string        `json:"roundId"`
	Amount          int64         `json:"amount"`
	Fee             *int64        `json:"fee,omitempty"`
	Status          PaymentStatus `json:"status"`
	GatewayIntentID string        `json:"gatewayIntentId,omitempty"`
	FailureReason   string        `json:"failureReason,omitempty"`
	SucceededAt     *time.Time    `json:"succeededAt,omitempty"`
	FailedAt        *time.Time    `json:"failedAt,omitempty"`
	CancelledAt     *time.Time    `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// BalanceTransaction is an append-only ledger row recording the gross amount
// collected when a payment succeeds. Created exactly once per succeeded payment
// and never mutated or deleted.
type BalanceTransaction struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"companyId"`
	PaymentID   string    `json:"paymentId"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
