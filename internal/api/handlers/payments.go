package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/api/response"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/service"
)

// PaymentHandler handles HTTP requests for collection payment endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the paymentService.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler with the provided service dependency.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreatePayment handles POST requests to create the gateway payment intent
// collecting a round's total from the company. Repeat calls for the same
// round return the existing payment unchanged.
//
// Endpoint: POST /api/round/{uuid}/payment
// Response: 201 Created with Payment
// Error: 400 Bad Request if round ID is invalid (validated by middleware)
// Error: 404 Not Found if round not found
// Error: 422 Unprocessable Entity if a prerequisite fails (round not ready,
// already paid, or no alive and ready payment source)
// Error: 502 Bad Gateway if the gateway rejects the intent
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	roundID := chi.URLParam(r, "uuid")

	payment, err := h.paymentService.CreatePaymentIntent(r.Context(), roundID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRoundNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrRoundNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrRoundAlreadyPaid),
			errors.Is(err, apperrors.ErrRoundNotReady),
			errors.Is(err, apperrors.ErrNoPaymentSource):
			response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrFailedToCreatePayment.Error(), err.Error())
		case errors.Is(err, apperrors.ErrGateway):
			response.RespondError(w, http.StatusBadGateway, apperrors.ErrGateway.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCreatePayment.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, payment)
}

// GetPayment handles GET requests to retrieve a payment.
//
// Endpoint: GET /api/payment/{uuid}
// Response: 200 OK with Payment
// Error: 400 Bad Request if payment ID is invalid (validated by middleware)
// Error: 404 Not Found if payment not found
// Error: 500 Internal Server Error if retrieval fails
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "uuid")

	payment, err := h.paymentService.GetPayment(paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPaymentNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPaymentNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePayment.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, payment)
}

// RefreshPayment handles POST requests to pull a payment's current status from
// the gateway, covering missed webhooks. A refresh that lands on succeeded
// runs the same finalization as the webhook path.
//
// Endpoint: POST /api/payment/{uuid}/refresh
// Response: 200 OK with the refreshed Payment
// Error: 400 Bad Request if payment ID is invalid (validated by middleware)
// Error: 404 Not Found if payment not found
// Error: 502 Bad Gateway if the gateway lookup fails
// Error: 500 Internal Server Error if the local update fails
func (h *PaymentHandler) RefreshPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "uuid")

	payment, err := h.paymentService.UpdatePaymentStatus(r.Context(), paymentID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPaymentNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPaymentNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrGateway):
			response.RespondError(w, http.StatusBadGateway, apperrors.ErrGateway.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRefreshPayment.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, payment)
}
