package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/testutil"
)

func TestWebhookHandler_GatewayWebhook(t *testing.T) {
	t.Run("acknowledges a succeeded event and finalizes the payment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		encryptor := testutil.NewTestEncryptor(t)
		ps, queue, _ := testutil.NewTestPaymentService(t, db, testutil.NewMockGatewayClient(), encryptor)
		handler := NewWebhookHandler(ps)
		company := testutil.NewCompany().Build(t, db)
		round := testutil.NewRound(company.ID).Ready().Build(t, db)
		seeded := testutil.NewPayment(round.ID).
			WithAmount(round.TotalAmount).
			WithStatus(model.PaymentProcessing).
			WithIntent("pi_wh_1").
			Build(t, db)

		body := `{"kind":"payment_intent.succeeded","object":{"id":"pi_wh_1","status":"succeeded","fee":420}}`
		req := httptest.NewRequest(http.MethodPost, "/api/webhook/gateway", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.GatewayWebhook(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		payment, err := ps.GetPayment(seeded.ID)
		if err != nil {
			t.Fatalf("GetPayment() returned unexpected error: %v", err)
		}
		if payment.Status != model.PaymentSucceeded {
			t.Errorf("Expected succeeded status, got %s", payment.Status)
		}
		if queue.Enqueued != 1 {
			t.Errorf("Expected 1 payout enqueue, got %d", queue.Enqueued)
		}
	})

	t.Run("acknowledges events for unknown intents", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		encryptor := testutil.NewTestEncryptor(t)
		ps, _, _ := testutil.NewTestPaymentService(t, db, testutil.NewMockGatewayClient(), encryptor)
		handler := NewWebhookHandler(ps)

		body := `{"kind":"payment_intent.succeeded","object":{"id":"pi_unknown","status":"succeeded"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/webhook/gateway", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.GatewayWebhook(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects a malformed payload", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		encryptor := testutil.NewTestEncryptor(t)
		ps, _, _ := testutil.NewTestPaymentService(t, db, testutil.NewMockGatewayClient(), encryptor)
		handler := NewWebhookHandler(ps)

		req := httptest.NewRequest(http.MethodPost, "/api/webhook/gateway", strings.NewReader(`{"kind":`))
		w := httptest.NewRecorder()

		handler.GatewayWebhook(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
