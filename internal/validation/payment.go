package validation

import (
	"strings"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/api/request"
)

// ValidateCreatePaymentSource validates a payment source registration request.
//
// Required fields:
//   - paymentMethodId: Must be non-empty
//   - mandateId: Must be non-empty
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreatePaymentSource(req request.CreatePaymentSourceRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.PaymentMethodID) == "" {
		errors["paymentMethodId"] = "paymentMethodId is required"
	}

	if strings.TrimSpace(req.MandateID) == "" {
		errors["mandateId"] = "mandateId is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
