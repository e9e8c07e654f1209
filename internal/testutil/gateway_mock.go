package testutil

import (
	"context"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/gateway"
)

// MockGatewayClient is a mock implementation of gateway.Client for testing.
// It returns predefined intents instead of calling the real gateway and
// records every call for assertions.
type MockGatewayClient struct {
	// MockIntent is the intent returned by CreateIntent and GetIntent.
	MockIntent gateway.Intent
	// MockError is the error returned by CreateIntent and GetIntent.
	MockError error

	// CreateIntentCalls counts CreateIntent invocations.
	CreateIntentCalls int
	// GetIntentCalls counts GetIntent invocations.
	GetIntentCalls int
	// CreateCustomerCalls counts CreateCustomer invocations.
	CreateCustomerCalls int

	// LastCreateRequest is the payload of the most recent CreateIntent call.
	LastCreateRequest gateway.CreateIntentRequest
	// LastIdempotencyKey is the idempotency key of the most recent CreateIntent call.
	LastIdempotencyKey string
}

// NewMockGatewayClient creates a mock gateway returning a processing intent.
func NewMockGatewayClient() *MockGatewayClient {
	return &MockGatewayClient{
		MockIntent: gateway.Intent{
			ID:     "pi_test_" + MakeID()[:8],
			Status: "processing",
		},
	}
}

// WithIntent configures the mock to return the specified intent.
func (m *MockGatewayClient) WithIntent(intent gateway.Intent) *MockGatewayClient {
	m.MockIntent = intent
	return m
}

// WithError configures the mock to return the specified error.
func (m *MockGatewayClient) WithError(err error) *MockGatewayClient {
	m.MockError = err
	return m
}

// CreateIntent records the call and returns the configured intent or error.
func (m *MockGatewayClient) CreateIntent(_ context.Context, req gateway.CreateIntentRequest, idempotencyKey string) (gateway.Intent, error) {
	m.CreateIntentCalls++
	m.LastCreateRequest = req
	m.LastIdempotencyKey = idempotencyKey
	if m.MockError != nil {
		return gateway.Intent{}, m.MockError
	}

	intent := m.MockIntent
	intent.Amount = req.Amount
	return intent, nil
}

// GetIntent records the call and returns the configured intent or error.
func (m *MockGatewayClient) GetIntent(_ context.Context, intentID string) (gateway.Intent, error) {
	m.GetIntentCalls++
	if m.MockError != nil {
		return gateway.Intent{}, m.MockError
	}

	intent := m.MockIntent
	intent.ID = intentID
	return intent, nil
}

// CreateCustomer records the call and returns a deterministic customer id.
func (m *MockGatewayClient) CreateCustomer(_ context.Context, companyID, _ string) (string, error) {
	m.CreateCustomerCalls++
	if m.MockError != nil {
		return "", m.MockError
	}
	return "cus_test_" + companyID[:8], nil
}
