package model

import (
	"fmt"
	"time"
)

// NotificationKind identifies an outbound notice tied to a round.
type NotificationKind string

const (
	NotifyIssued            NotificationKind = "issued"
	NotifySanctionedCountry NotificationKind = "sanctioned_country"
	NotifyBelowThreshold    NotificationKind = "below_threshold"
	NotifyPaymentFailed     NotificationKind = "payment_failed"
)

// ParseNotificationKind rejects unknown kinds at the persistence boundary.
func ParseNotificationKind(s string) (NotificationKind, error) {
	switch NotificationKind(s) {
	case NotifyIssued, NotifySanctionedCountry, NotifyBelowThreshold, NotifyPaymentFailed:
		return NotificationKind(s), nil
	default:
		return "", fmt.Errorf("unknown notification kind: %q", s)
	}
}

// Notification is the tracking record that makes dispatch idempotent: at most
// one row per (recipient, round, kind).
type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipientId"`
	RoundID     string           `json:"roundId"`
	Kind        NotificationKind `json:"kind"`
	CreatedAt   time.Time        `json:"createdAt"`
}
