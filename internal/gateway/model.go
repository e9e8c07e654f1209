package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
)

// Intent is the gateway's representation of a payment intent, as returned by
// both the create and fetch endpoints.
type Intent struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Fee       int64  `json:"fee"`
	LastError string `json:"last_error,omitempty"`
}

// CreateIntentRequest is the payload for creating an ACH debit intent.
// Confirm is always true here: the intent is confirmed immediately against the
// company's stored payment method and mandate.
type CreateIntentRequest struct {
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
	CustomerID      string            `json:"customer"`
	PaymentMethodID string            `json:"payment_method"`
	MandateID       string            `json:"mandate"`
	Confirm         bool              `json:"confirm"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// EventKind is the closed set of webhook event kinds this service reacts to.
// Anything else decodes to EventUnhandled and is deliberately ignored.
type EventKind int

const (
	EventUnhandled EventKind = iota
	EventIntentSucceeded
	EventIntentFailed
	EventIntentCancelled
	EventIntentProcessing
)

// Event is the decoded webhook envelope: a kind plus the intent object it
// refers to.
type Event struct {
	Kind   EventKind
	Object Intent
}

// rawEvent mirrors the wire shape {kind, object}.
type rawEvent struct {
	Kind   string `json:"kind"`
	Object Intent `json:"object"`
}

// ParseEvent decodes a webhook payload into a closed event variant.
// Unrecognized kinds map to EventUnhandled rather than an error: the gateway
// sends many event types outside this domain.
func ParseEvent(body []byte) (Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return Event{}, fmt.Errorf("failed to decode webhook payload: %w", err)
	}

	kind := EventUnhandled
	switch raw.Kind {
	case "payment_intent.succeeded":
		kind = EventIntentSucceeded
	case "payment_intent.payment_failed":
		kind = EventIntentFailed
	case "payment_intent.canceled":
		kind = EventIntentCancelled
	case "payment_intent.processing":
		kind = EventIntentProcessing
	}

	return Event{Kind: kind, Object: raw.Object}, nil
}

// LocalStatus maps a gateway intent status onto the local payment status enum.
// Anything outside the known set maps to failed.
func LocalStatus(gatewayStatus string) model.PaymentStatus {
	switch gatewayStatus {
	case "succeeded":
		return model.PaymentSucceeded
	case "processing":
		return model.PaymentProcessing
	case "canceled":
		return model.PaymentCancelled
	case "requires_payment_method", "requires_confirmation", "requires_action":
		return model.PaymentActionRequired
	default:
		return model.PaymentFailed
	}
}
