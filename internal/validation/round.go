package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/api/request"
)

// ValidateCreateRound validates a round creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - companyId: Must be a valid UUID
//   - totalAmount: Must be positive
//   - issuedAt: Must be in YYYY-MM-DD format
//   - allocations: Must be non-empty; each row must carry exactly one of
//     investorId / entityName, positive shares and a non-negative gross amount
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateRound(req request.CreateRoundRequest) error {
	companyErr := ValidateUUID(req.CompanyID)
	if companyErr != nil {
		return companyErr
	}

	errors := make(map[string]string)

	if req.TotalAmount <= 0.0 {
		errors["totalAmount"] = "totalAmount must be positive"
	}

	if strings.TrimSpace(req.IssuedAt) == "" {
		errors["issuedAt"] = "date is required"
	}
	_, err := time.Parse("2006-01-02", req.IssuedAt)
	if err != nil {
		errors["issuedAt"] = err.Error()
	}

	if len(req.Allocations) == 0 {
		errors["allocations"] = "at least one allocation row is required"
	}

	for i, row := range req.Allocations {
		field := fmt.Sprintf("allocations[%d]", i)

		hasInvestor := strings.TrimSpace(row.InvestorID) != ""
		hasEntity := strings.TrimSpace(row.EntityName) != ""
		switch {
		case hasInvestor == hasEntity:
			errors[field] = "exactly one of investorId and entityName must be set"
		case hasInvestor:
			if err := ValidateUUID(row.InvestorID); err != nil {
				errors[field] = err.Error()
			}
		}

		if row.Shares <= 0.0 {
			errors[field+".shares"] = "shares must be positive"
		}
		if row.GrossAmount < 0.0 {
			errors[field+".grossAmount"] = "grossAmount must not be negative"
		}
		if row.QualifiedAmount < 0.0 || row.QualifiedAmount > row.GrossAmount {
			errors[field+".qualifiedAmount"] = "qualifiedAmount must be between 0 and grossAmount"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
