package model

import "time"

// Investor represents a shareholder entitled to dividends.
type Investor struct {
	ID                   string     `json:"id"`
	CompanyID            string     `json:"companyId"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	Country              string     `json:"country"`
	OnboardedAt          *time.Time `json:"onboardedAt,omitempty"`
	TaxCertified         bool       `json:"taxCertified"`
	MinimumPaymentAmount int64      `json:"minimumPaymentAmount"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// Onboarded reports whether the investor has completed onboarding.
func (i Investor) Onboarded() bool {
	return i.OnboardedAt != nil
}

// EntityHolding is one underlying investor position inside a pass-through
// entity. Allocation rows addressed to the entity are split across its
// holdings in proportion to InvestmentAmount.
type EntityHolding struct {
	ID               string    `json:"id"`
	CompanyID        string    `json:"companyId"`
	EntityName       string    `json:"entityName"`
	InvestorID       string    `json:"investorId"`
	InvestmentAmount int64     `json:"investmentAmount"`
	CreatedAt        time.Time `json:"createdAt"`
}
