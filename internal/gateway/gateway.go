// Package gateway is the adapter boundary to the external ACH payment
// provider. The rest of the system talks to the Client interface; the HTTP
// implementation here targets the provider's REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the payment gateway surface consumed by the payment service.
type Client interface {
	// CreateIntent creates and immediately confirms an ACH debit intent.
	// The idempotency key guards against duplicate charges from client retries.
	CreateIntent(ctx context.Context, req CreateIntentRequest, idempotencyKey string) (Intent, error)

	// GetIntent fetches the authoritative state of an existing intent.
	GetIntent(ctx context.Context, intentID string) (Intent, error)

	// CreateCustomer registers the company with the gateway and returns its
	// customer id. Called once per company, on first collection.
	CreateCustomer(ctx context.Context, companyID, name string) (string, error)
}

// HTTPClient talks to the gateway's REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates a gateway client with default HTTP settings.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateIntent creates and confirms a payment intent.
// POST {base}/payment_intents with an Idempotency-Key header.
func (c *HTTPClient) CreateIntent(ctx context.Context, req CreateIntentRequest, idempotencyKey string) (Intent, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Intent{}, fmt.Errorf("failed to encode intent request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment_intents", bytes.NewReader(body))
	if err != nil {
		return Intent{}, fmt.Errorf("failed to build intent request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Idempotency-Key", idempotencyKey)

	return c.do(httpReq)
}

// GetIntent fetches an intent by id.
// GET {base}/payment_intents/{id}.
func (c *HTTPClient) GetIntent(ctx context.Context, intentID string) (Intent, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payment_intents/"+intentID, nil)
	if err != nil {
		return Intent{}, fmt.Errorf("failed to build intent request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(httpReq)
}

// CreateCustomer registers a customer record with the gateway.
// POST {base}/customers.
func (c *HTTPClient) CreateCustomer(ctx context.Context, companyID, name string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"name":      name,
		"reference": companyID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode customer request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/customers", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build customer request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("gateway returned %d creating customer", resp.StatusCode)
	}

	var customer struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &customer); err != nil {
		return "", fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return customer.ID, nil
}

// errorResponse is the gateway's error envelope.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *HTTPClient) do(req *http.Request) (Intent, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Intent{}, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Intent{}, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return Intent{}, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, errResp.Error.Message)
		}
		return Intent{}, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	var intent Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return Intent{}, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return intent, nil
}
