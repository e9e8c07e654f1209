package model

import (
	"fmt"
	"time"
)

// DividendStatus is the retention outcome for one investor's dividend.
type DividendStatus string

// Dividend statuses. PendingSignup means the investor has not completed
// onboarding; Retained means the full amount is withheld from payout for a
// policy reason; Issued means the dividend will be paid out net of withholding.
const (
	DividendPendingSignup DividendStatus = "pending_signup"
	DividendIssued        DividendStatus = "issued"
	DividendRetained      DividendStatus = "retained"
)

// ParseDividendStatus rejects unknown status values at the persistence boundary.
func ParseDividendStatus(s string) (DividendStatus, error) {
	switch DividendStatus(s) {
	case DividendPendingSignup, DividendIssued, DividendRetained:
		return DividendStatus(s), nil
	default:
		return "", fmt.Errorf("unknown dividend status: %q", s)
	}
}

// RetainedReason says why a retained dividend was held back. Present only when
// the status is retained.
type RetainedReason string

const (
	RetainedSanctionedCountry RetainedReason = "sanctioned_country"
	RetainedBelowThreshold    RetainedReason = "below_threshold"
)

// ParseRetainedReason rejects unknown reason values at the persistence boundary.
func ParseRetainedReason(s string) (RetainedReason, error) {
	switch RetainedReason(s) {
	case RetainedSanctionedCountry, RetainedBelowThreshold:
		return RetainedReason(s), nil
	default:
		return "", fmt.Errorf("unknown retained reason: %q", s)
	}
}

// Dividend represents one investor's obligation within a round.
// All amounts are integer cents. The three withholding fields are all nil or
// all set, never partially set.
type Dividend struct {
	ID                    string          `json:"id"`
	RoundID               string          `json:"roundId"`
	InvestorID            string          `json:"investorId"`
	TotalAmount           int64           `json:"totalAmount"`
	QualifiedAmount       int64           `json:"qualifiedAmount"`
	NumberOfShares        float64         `json:"numberOfShares"`
	Status                DividendStatus  `json:"status"`
	RetainedReason        *RetainedReason `json:"retainedReason,omitempty"`
	WithholdingPercentage *float64        `json:"withholdingPercentage,omitempty"`
	WithheldAmount        *int64          `json:"withheldAmount,omitempty"`
	NetAmount             *int64          `json:"netAmount,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
}
