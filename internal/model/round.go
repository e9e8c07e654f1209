package model

import (
	"fmt"
	"time"
)

// RoundStatus is the lifecycle state of a distribution round.
type RoundStatus string

// Round lifecycle states. A round is Issued at creation and becomes Paid only
// when the company-side collection payment succeeds.
const (
	RoundIssued RoundStatus = "issued"
	RoundPaid   RoundStatus = "paid"
)

// ParseRoundStatus rejects unknown status values at the persistence boundary.
func ParseRoundStatus(s string) (RoundStatus, error) {
	switch RoundStatus(s) {
	case RoundIssued, RoundPaid:
		return RoundStatus(s), nil
	default:
		return "", fmt.Errorf("unknown round status: %q", s)
	}
}

// Round represents one dividend or return-of-capital distribution event for a company.
// Amounts are integer cents.
type Round struct {
	ID                   string      `json:"id"`
	CompanyID            string      `json:"companyId"`
	IssuedAt             time.Time   `json:"issuedAt"`
	TotalAmount          int64       `json:"totalAmount"`
	NumberOfShares       float64     `json:"numberOfShares"`
	NumberOfShareholders int         `json:"numberOfShareholders"`
	Status               RoundStatus `json:"status"`
	ReadyForPayment      bool        `json:"readyForPayment"`
	ReturnOfCapital      bool        `json:"returnOfCapital"`
	PaidAt               *time.Time  `json:"paidAt,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
}

// RoundSummary aggregates the outcome of retention evaluation across a round's dividends.
type RoundSummary struct {
	Issued            int   `json:"issued"`
	PendingSignup     int   `json:"pendingSignup"`
	RetainedSanction  int   `json:"retainedSanction"`
	RetainedThreshold int   `json:"retainedThreshold"`
	TotalWithheld     int64 `json:"totalWithheld"`
	TotalNet          int64 `json:"totalNet"`
	TotalRetained     int64 `json:"totalRetained"`
}

// RoundResult is what round creation returns: the persisted round plus its
// retention summary, or the accumulated error messages when creation failed.
type RoundResult struct {
	Round   *Round       `json:"round,omitempty"`
	Summary RoundSummary `json:"summary"`
	Errors  []string     `json:"errors,omitempty"`
}

// OK reports whether round creation succeeded.
func (r RoundResult) OK() bool {
	return len(r.Errors) == 0 && r.Round != nil
}
