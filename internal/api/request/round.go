package request

// CreateRoundRequest represents the request body for creating a distribution round
// from an allocation computation. Amounts are USD dollars; conversion to cents
// happens once, inside the service layer.
type CreateRoundRequest struct {
	CompanyID       string              `json:"companyId"`
	TotalAmount     float64             `json:"totalAmount"`
	IssuedAt        string              `json:"issuedAt"`
	ReturnOfCapital bool                `json:"returnOfCapital,omitempty"`
	Allocations     []AllocationRequest `json:"allocations"`
}

// AllocationRequest is one computed allocation row. Exactly one of investorId
// and entityName must be set; entity rows are expanded into per-holder
// dividends at import time.
type AllocationRequest struct {
	InvestorID      string  `json:"investorId,omitempty"`
	EntityName      string  `json:"entityName,omitempty"`
	Shares          float64 `json:"shares"`
	GrossAmount     float64 `json:"grossAmount"`
	QualifiedAmount float64 `json:"qualifiedAmount,omitempty"`
}
