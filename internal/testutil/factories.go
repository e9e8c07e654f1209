package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/crypto"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/repository"
)

// CompanyBuilder provides a fluent interface for creating test companies.
//
// Example usage:
//
//	// Simple creation with defaults
//	company := testutil.NewCompany().Build(t, db)
//
//	// Customized company
//	company := testutil.NewCompany().
//	    WithName("Acme Holdings").
//	    WithGatewayCustomerID("cus_123").
//	    Build(t, db)
type CompanyBuilder struct {
	ID                string
	Name              string
	GatewayCustomerID string
}

// NewCompany creates a CompanyBuilder with sensible defaults.
func NewCompany() *CompanyBuilder {
	return &CompanyBuilder{
		ID:   MakeID(),
		Name: "Test Company",
	}
}

// WithID sets a custom ID.
func (b *CompanyBuilder) WithID(id string) *CompanyBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *CompanyBuilder) WithName(name string) *CompanyBuilder {
	b.Name = name
	return b
}

// WithGatewayCustomerID sets an existing gateway customer registration.
func (b *CompanyBuilder) WithGatewayCustomerID(customerID string) *CompanyBuilder {
	b.GatewayCustomerID = customerID
	return b
}

// Build creates the company in the database and returns it.
func (b *CompanyBuilder) Build(t *testing.T, db *sql.DB) model.Company {
	t.Helper()

	var customerID any
	if b.GatewayCustomerID != "" {
		customerID = b.GatewayCustomerID
	}

	query := `
		INSERT INTO company (id, name, gateway_customer_id)
		VALUES (?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, customerID)
	if err != nil {
		t.Fatalf("Failed to create test company: %v", err)
	}

	return model.Company{
		ID:                b.ID,
		Name:              b.Name,
		GatewayCustomerID: b.GatewayCustomerID,
	}
}

// AdministratorBuilder provides a fluent interface for creating test
// administrator contacts.
type AdministratorBuilder struct {
	ID        string
	CompanyID string
	Name      string
	Email     string
}

// NewAdministrator creates an AdministratorBuilder for the given company.
func NewAdministrator(companyID string) *AdministratorBuilder {
	id := MakeID()
	return &AdministratorBuilder{
		ID:        id,
		CompanyID: companyID,
		Name:      "Test Administrator",
		Email:     "admin-" + id[:8] + "@example.com",
	}
}

// WithEmail sets a custom email address.
func (b *AdministratorBuilder) WithEmail(email string) *AdministratorBuilder {
	b.Email = email
	return b
}

// Build creates the administrator in the database and returns it.
func (b *AdministratorBuilder) Build(t *testing.T, db *sql.DB) model.Administrator {
	t.Helper()

	query := `
		INSERT INTO administrator (id, company_id, name, email)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.CompanyID, b.Name, b.Email)
	if err != nil {
		t.Fatalf("Failed to create test administrator: %v", err)
	}

	return model.Administrator{
		ID:        b.ID,
		CompanyID: b.CompanyID,
		Name:      b.Name,
		Email:     b.Email,
	}
}

// PaymentSourceBuilder provides a fluent interface for creating test payment
// sources. The mandate id goes through the repository so it is stored
// encrypted, exactly as production rows are.
type PaymentSourceBuilder struct {
	ID              string
	CompanyID       string
	PaymentMethodID string
	MandateID       string
	Alive           bool
	Ready           bool
}

// NewPaymentSource creates a PaymentSourceBuilder for the given company.
// The source defaults to alive and ready.
func NewPaymentSource(companyID string) *PaymentSourceBuilder {
	return &PaymentSourceBuilder{
		ID:              MakeID(),
		CompanyID:       companyID,
		PaymentMethodID: "pm_test_" + MakeID()[:8],
		MandateID:       "mandate_test_" + MakeID()[:8],
		Alive:           true,
		Ready:           true,
	}
}

// NotReady marks the source as not yet usable for collection.
func (b *PaymentSourceBuilder) NotReady() *PaymentSourceBuilder {
	b.Ready = false
	return b
}

// Dead marks the source as no longer alive.
func (b *PaymentSourceBuilder) Dead() *PaymentSourceBuilder {
	b.Alive = false
	return b
}

// Build creates the payment source in the database and returns it.
func (b *PaymentSourceBuilder) Build(t *testing.T, db *sql.DB, encryptor *crypto.Encryptor) model.PaymentSource {
	t.Helper()

	ps := model.PaymentSource{
		ID:              b.ID,
		CompanyID:       b.CompanyID,
		PaymentMethodID: b.PaymentMethodID,
		MandateID:       b.MandateID,
		Alive:           b.Alive,
		Ready:           b.Ready,
	}

	repo := repository.NewCompanyRepository(db, encryptor)
	if err := repo.InsertPaymentSource(context.Background(), &ps); err != nil {
		t.Fatalf("Failed to create test payment source: %v", err)
	}

	return ps
}

// InvestorBuilder provides a fluent interface for creating test investors.
//
// Example usage:
//
//	investor := testutil.NewInvestor(company.ID).
//	    WithCountry("IR").
//	    NotOnboarded().
//	    Build(t, db)
type InvestorBuilder struct {
	ID                   string
	CompanyID            string
	Name                 string
	Email                string
	Country              string
	OnboardedAt          *time.Time
	TaxCertified         bool
	MinimumPaymentAmount int64
}

// NewInvestor creates an InvestorBuilder with sensible defaults:
// onboarded, tax certified, US resident, no minimum payment threshold.
func NewInvestor(companyID string) *InvestorBuilder {
	id := MakeID()
	onboarded := time.Now().UTC().Add(-24 * time.Hour)
	return &InvestorBuilder{
		ID:           id,
		CompanyID:    companyID,
		Name:         "Test Investor",
		Email:        "investor-" + id[:8] + "@example.com",
		Country:      "US",
		OnboardedAt:  &onboarded,
		TaxCertified: true,
	}
}

// WithID sets a custom ID.
func (b *InvestorBuilder) WithID(id string) *InvestorBuilder {
	b.ID = id
	return b
}

// WithCountry sets the investor's country of residence.
func (b *InvestorBuilder) WithCountry(code string) *InvestorBuilder {
	b.Country = code
	return b
}

// NotOnboarded clears the onboarding timestamp.
func (b *InvestorBuilder) NotOnboarded() *InvestorBuilder {
	b.OnboardedAt = nil
	return b
}

// WithoutTaxCertification marks the investor as subject to backup withholding.
func (b *InvestorBuilder) WithoutTaxCertification() *InvestorBuilder {
	b.TaxCertified = false
	return b
}

// WithMinimumPayment sets the investor's minimum payment threshold in cents.
func (b *InvestorBuilder) WithMinimumPayment(cents int64) *InvestorBuilder {
	b.MinimumPaymentAmount = cents
	return b
}

// Build creates the investor in the database and returns it.
func (b *InvestorBuilder) Build(t *testing.T, db *sql.DB) model.Investor {
	t.Helper()

	var onboardedAt any
	if b.OnboardedAt != nil {
		onboardedAt = b.OnboardedAt.Format(time.RFC3339)
	}

	query := `
		INSERT INTO investor (id, company_id, name, email, country, onboarded_at, tax_certified, minimum_payment_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.CompanyID, b.Name, b.Email, b.Country,
		onboardedAt, b.TaxCertified, b.MinimumPaymentAmount)
	if err != nil {
		t.Fatalf("Failed to create test investor: %v", err)
	}

	return model.Investor{
		ID:                   b.ID,
		CompanyID:            b.CompanyID,
		Name:                 b.Name,
		Email:                b.Email,
		Country:              b.Country,
		OnboardedAt:          b.OnboardedAt,
		TaxCertified:         b.TaxCertified,
		MinimumPaymentAmount: b.MinimumPaymentAmount,
	}
}

// CreateEntityHolding creates one underlying investor position inside a
// pass-through entity.
func CreateEntityHolding(t *testing.T, db *sql.DB, companyID, entityName, investorID string, investmentAmount int64) model.EntityHolding {
	t.Helper()

	holding := model.EntityHolding{
		ID:               MakeID(),
		CompanyID:        companyID,
		EntityName:       entityName,
		InvestorID:       investorID,
		InvestmentAmount: investmentAmount,
	}

	query := `
		INSERT INTO entity_holding (id, company_id, entity_name, investor_id, investment_amount)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, holding.ID, holding.CompanyID, holding.EntityName,
		holding.InvestorID, holding.InvestmentAmount)
	if err != nil {
		t.Fatalf("Failed to create test entity holding: %v", err)
	}

	return holding
}

// RoundBuilder provides a fluent interface for creating test rounds directly,
// bypassing the orchestrator. Amounts are integer cents.
type RoundBuilder struct {
	ID                   string
	CompanyID            string
	IssuedAt             time.Time
	TotalAmount          int64
	NumberOfShares       float64
	NumberOfShareholders int
	Status               model.RoundStatus
	ReadyForPayment      bool
	ReturnOfCapital      bool
	PaidAt               *time.Time
}

// NewRound creates a RoundBuilder with sensible defaults.
func NewRound(companyID string) *RoundBuilder {
	return &RoundBuilder{
		ID:                   MakeID(),
		CompanyID:            companyID,
		IssuedAt:             time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:          600000,
		NumberOfShares:       1000,
		NumberOfShareholders: 1,
		Status:               model.RoundIssued,
	}
}

// WithIssuedAt sets the issue date.
func (b *RoundBuilder) WithIssuedAt(issuedAt time.Time) *RoundBuilder {
	b.IssuedAt = issuedAt
	return b
}

// WithTotalAmount sets the total amount in cents.
func (b *RoundBuilder) WithTotalAmount(cents int64) *RoundBuilder {
	b.TotalAmount = cents
	return b
}

// Ready marks the round as ready for payment.
func (b *RoundBuilder) Ready() *RoundBuilder {
	b.ReadyForPayment = true
	return b
}

// Paid marks the round as already paid.
func (b *RoundBuilder) Paid() *RoundBuilder {
	paidAt := time.Now().UTC()
	b.Status = model.RoundPaid
	b.ReadyForPayment = true
	b.PaidAt = &paidAt
	return b
}

// Build creates the round in the database and returns it.
func (b *RoundBuilder) Build(t *testing.T, db *sql.DB) model.Round {
	t.Helper()

	var paidAt any
	if b.PaidAt != nil {
		paidAt = b.PaidAt.Format(time.RFC3339)
	}

	query := `
		INSERT INTO round (id, company_id, issued_at, total_amount, number_of_shares,
			number_of_shareholders, status, ready_for_payment, return_of_capital, paid_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.CompanyID, b.IssuedAt.Format("2006-01-02"),
		b.TotalAmount, b.NumberOfShares, b.NumberOfShareholders,
		string(b.Status), b.ReadyForPayment, b.ReturnOfCapital, paidAt)
	if err != nil {
		t.Fatalf("Failed to create test round: %v", err)
	}

	return model.Round{
		ID:                   b.ID,
		CompanyID:            b.CompanyID,
		IssuedAt:             b.IssuedAt,
		TotalAmount:          b.TotalAmount,
		NumberOfShares:       b.NumberOfShares,
		NumberOfShareholders: b.NumberOfShareholders,
		Status:               b.Status,
		ReadyForPayment:      b.ReadyForPayment,
		ReturnOfCapital:      b.ReturnOfCapital,
		PaidAt:               b.PaidAt,
	}
}

// PaymentBuilder provides a fluent interface for creating test payments
// directly, bypassing the collector.
type PaymentBuilder struct {
	ID              string
	RoundID         string
	Amount          int64
	Status          model.PaymentStatus
	GatewayIntentID string
}

// NewPayment creates a PaymentBuilder with sensible defaults.
func NewPayment(roundID string) *PaymentBuilder {
	return &PaymentBuilder{
		ID:      MakeID(),
		RoundID: roundID,
		Amount:  600000,
		Status:  model.PaymentInitial,
	}
}

// WithAmount sets the amount in cents.
func (b *PaymentBuilder) WithAmount(cents int64) *PaymentBuilder {
	b.Amount = cents
	return b
}

// WithStatus sets the payment status.
func (b *PaymentBuilder) WithStatus(status model.PaymentStatus) *PaymentBuilder {
	b.Status = status
	return b
}

// WithIntent sets the gateway intent id.
func (b *PaymentBuilder) WithIntent(intentID string) *PaymentBuilder {
	b.GatewayIntentID = intentID
	return b
}

// Build creates the payment in the database and returns it.
func (b *PaymentBuilder) Build(t *testing.T, db *sql.DB) model.Payment {
	t.Helper()

	var intentID any
	if b.GatewayIntentID != "" {
		intentID = b.GatewayIntentID
	}

	query := `
		INSERT INTO payment (id, round_id, amount, status, gateway_intent_id)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.RoundID, b.Amount, string(b.Status), intentID)
	if err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}

	return model.Payment{
		ID:              b.ID,
		RoundID:         b.RoundID,
		Amount:          b.Amount,
		Status:          b.Status,
		GatewayIntentID: b.GatewayIntentID,
	}
}
