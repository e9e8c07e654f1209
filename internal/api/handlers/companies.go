package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/api/request"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/api/response"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/service"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/validation"
)

// CompanyHandler handles HTTP requests for company-scoped endpoints: the
// collection ledger and payment source registration.
type CompanyHandler struct {
	paymentService *service.PaymentService
}

// NewCompanyHandler creates a new CompanyHandler with the provided service dependency.
func NewCompanyHandler(paymentService *service.PaymentService) *CompanyHandler {
	return &CompanyHandler{
		paymentService: paymentService,
	}
}

// BalanceTransactions handles GET requests to retrieve a company's collection
// ledger, newest first.
//
// Endpoint: GET /api/company/{uuid}/balance-transactions
// Response: 200 OK with array of BalanceTransaction
// Error: 400 Bad Request if company ID is invalid (validated by middleware)
// Error: 404 Not Found if company not found
// Error: 500 Internal Server Error if retrieval fails
func (h *CompanyHandler) BalanceTransactions(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "uuid")

	transactions, err := h.paymentService.GetBalanceTransactions(companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCompanyNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrCompanyNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveLedger.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// CreatePaymentSource handles POST requests to register a company's ACH debit
// authorization. The mandate id is encrypted at rest and never echoed back.
//
// Endpoint: POST /api/company/{uuid}/payment-source
// Request Body: CreatePaymentSourceRequest (paymentMethodId, mandateId, ready)
// Response: 201 Created with PaymentSource (mandate id omitted)
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if company not found
// Error: 500 Internal Server Error if creation fails
func (h *CompanyHandler) CreatePaymentSource(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.CreatePaymentSourceRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePaymentSource(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	source, err := h.paymentService.RegisterPaymentSource(r.Context(), companyID, req.PaymentMethodID, req.MandateID, req.Ready)
	if err != nil {
		if errors.Is(err, apperrors.ErrCompanyNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrCompanyNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to create payment source", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, source)
}
