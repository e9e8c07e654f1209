package handlers

import (
	"io"
	"net/http"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/api/response"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/gateway"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/service"
)

// WebhookHandler receives gateway webhook events and feeds them into the
// payment reconciliation path.
type WebhookHandler struct {
	paymentService *service.PaymentService
}

// NewWebhookHandler creates a new WebhookHandler with the provided service dependency.
func NewWebhookHandler(paymentService *service.PaymentService) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
	}
}

// GatewayWebhook handles POST requests from the payment gateway. Events
// outside the handled set, and events for intents this service never created,
// are acknowledged without local effect so the gateway stops redelivering
// them.
//
// Endpoint: POST /api/webhook/gateway
// Request Body: gateway event envelope {kind, object}
// Response: 200 OK once the event is processed or deliberately ignored
// Error: 400 Bad Request if the payload cannot be decoded
// Error: 500 Internal Server Error if local processing fails (the gateway
// retries delivery)
func (h *WebhookHandler) GatewayWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "failed to read request body", err.Error())
		return
	}

	event, err := gateway.ParseEvent(body)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid webhook payload", err.Error())
		return
	}

	if err := h.paymentService.ProcessWebhook(r.Context(), event); err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToProcessWebhook.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
