package request

// CreatePaymentSourceRequest represents the request body for registering a
// company's ACH debit authorization. The mandate id is encrypted before it
// is persisted and is never returned by the API.
type CreatePaymentSourceRequest struct {
	PaymentMethodID string `json:"paymentMethodId"`
	MandateID       string `json:"mandateId"`
	Ready           bool   `json:"ready"`
}
