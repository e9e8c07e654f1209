package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/api/request"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/crypto"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/testutil"
)

func TestCompanyHandler_CreatePaymentSource(t *testing.T) {
	setupHandler := func(t *testing.T) (*CompanyHandler, *sql.DB, *crypto.Encryptor) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		encryptor := testutil.NewTestEncryptor(t)
		ps, _, _ := testutil.NewTestPaymentService(t, db, testutil.NewMockGatewayClient(), encryptor)
		return NewCompanyHandler(ps), db, encryptor
	}

	t.Run("registers a payment source", func(t *testing.T) {
		handler, db, _ := setupHandler(t)
		company := testutil.NewCompany().Build(t, db)

		body := request.CreatePaymentSourceRequest{
			PaymentMethodID: "pm_bank_1",
			MandateID:       "mandate_secret_1",
			Ready:           true,
		}
		req := testutil.NewRequestWithJSONBody(t, http.MethodPost,
			"/api/company/"+company.ID+"/payment-source", body,
			map[string]string{"uuid": company.ID})
		w := httptest.NewRecorder()

		handler.CreatePaymentSource(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var source model.PaymentSource
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&source)

		if source.CompanyID != company.ID {
			t.Errorf("Expected source for company %s, got %s", company.ID, source.CompanyID)
		}
		if !source.Ready {
			t.Error("Expected source to be ready")
		}
	})

	t.Run("rejects missing fields with 400", func(t *testing.T) {
		handler, db, _ := setupHandler(t)
		company := testutil.NewCompany().Build(t, db)

		body := request.CreatePaymentSourceRequest{PaymentMethodID: "pm_bank_1"}
		req := testutil.NewRequestWithJSONBody(t, http.MethodPost,
			"/api/company/"+company.ID+"/payment-source", body,
			map[string]string{"uuid": company.ID})
		w := httptest.NewRecorder()

		handler.CreatePaymentSource(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for unknown company", func(t *testing.T) {
		handler, _, _ := setupHandler(t)
		unknownID := testutil.MakeID()

		body := request.CreatePaymentSourceRequest{
			PaymentMethodID: "pm_bank_1",
			MandateID:       "mandate_secret_1",
		}
		req := testutil.NewRequestWithJSONBody(t, http.MethodPost,
			"/api/company/"+unknownID+"/payment-source", body,
			map[string]string{"uuid": unknownID})
		w := httptest.NewRecorder()

		handler.CreatePaymentSource(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestCompanyHandler_BalanceTransactions(t *testing.T) {
	t.Run("returns empty array for a company without collections", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		encryptor := testutil.NewTestEncryptor(t)
		ps, _, _ := testutil.NewTestPaymentService(t, db, testutil.NewMockGatewayClient(), encryptor)
		handler := NewCompanyHandler(ps)
		company := testutil.NewCompany().Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/company/"+company.ID+"/balance-transactions",
			map[string]string{"uuid": company.ID},
		)
		w := httptest.NewRecorder()

		handler.BalanceTransactions(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var transactions []model.BalanceTransaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&transactions)

		if len(transactions) != 0 {
			t.Errorf("Expected empty ledger, got %d rows", len(transactions))
		}
	})

	t.Run("returns 404 for unknown company", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		encryptor := testutil.NewTestEncryptor(t)
		ps, _, _ := testutil.NewTestPaymentService(t, db, testutil.NewMockGatewayClient(), encryptor)
		handler := NewCompanyHandler(ps)
		unknownID := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/company/"+unknownID+"/balance-transactions",
			map[string]string{"uuid": unknownID},
		)
		w := httptest.NewRecorder()

		handler.BalanceTransactions(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
