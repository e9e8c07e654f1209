package model

import "time"

// Company represents the issuing company distributing dividends.
type Company struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	GatewayCustomerID string    `json:"gatewayCustomerId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Administrator is a company contact notified about collection failures.
type Administrator struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// PaymentSource is a company's stored ACH debit authorization: a gateway
// payment-method id plus the mandate under which funds may be pulled.
// MandateID is stored encrypted at rest.
type PaymentSource struct {
	ID              string    `json:"id"`
	CompanyID       string    `json:"companyId"`
	PaymentMethodID string    `json:"paymentMethodId"`
	MandateID       string    `json:"-"`
	Alive           bool      `json:"alive"`
	Ready           bool      `json:"ready"`
	CreatedAt       time.Time `json:"createdAt"`
}
