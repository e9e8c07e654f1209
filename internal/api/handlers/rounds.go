package handlers

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/api/request"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/api/response"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/service"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/validation"
)

// RoundHandler handles HTTP requests for distribution round endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the roundService.
type RoundHandler struct {
	roundService *service.RoundService
}

// NewRoundHandler creates a new RoundHandler with the provided service dependency.
func NewRoundHandler(roundService *service.RoundService) *RoundHandler {
	return &RoundHandler{
		roundService: roundService,
	}
}

// CreateRound handles POST requests to create a distribution round from an
// allocation computation.
//
// Endpoint: POST /api/round
// Request Body: CreateRoundRequest (companyId, totalAmount, issuedAt, allocations)
// Response: 201 Created with RoundResult (round plus retention summary)
// Error: 400 Bad Request if validation fails or the computation is rejected
// Error: 409 Conflict if the company already has a round on or after issuedAt
func (h *RoundHandler) CreateRound(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateRoundRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateRound(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	comp, err := toComputation(req)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result := h.roundService.CreateRound(r.Context(), req.CompanyID, comp)
	if !result.OK() {
		if slices.Contains(result.Errors, apperrors.ErrRoundConflict.Error()) {
			response.RespondJSON(w, http.StatusConflict, result)
			return
		}
		response.RespondJSON(w, http.StatusBadRequest, result)
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

// GetRounds handles GET requests to retrieve all rounds for a company.
//
// Endpoint: GET /api/round?companyId={uuid}
// Response: 200 OK with array of Round
// Error: 400 Bad Request if companyId is missing or invalid
// Error: 500 Internal Server Error if retrieval fails
func (h *RoundHandler) GetRounds(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("companyId")
	if err := validation.ValidateUUID(companyID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid companyId", err.Error())
		return
	}

	rounds, err := h.roundService.GetRoundsByCompany(companyID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveRounds.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, rounds)
}

// GetRound handles GET requests to retrieve a single round.
//
// Endpoint: GET /api/round/{uuid}
// Response: 200 OK with Round
// Error: 400 Bad Request if round ID is invalid (validated by middleware)
// Error: 404 Not Found if round not found
// Error: 500 Internal Server Error if retrieval fails
func (h *RoundHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	roundID := chi.URLParam(r, "uuid")

	round, err := h.roundService.GetRound(roundID)
	if err != nil {
		if errors.Is(err, apperrors.ErrRoundNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrRoundNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveRound.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, round)
}

// RoundDividends handles GET requests to retrieve all dividends of a round.
//
// Endpoint: GET /api/round/{uuid}/dividend
// Response: 200 OK with array of Dividend
// Error: 400 Bad Request if round ID is invalid (validated by middleware)
// Error: 404 Not Found if round not found
// Error: 500 Internal Server Error if retrieval fails
func (h *RoundHandler) RoundDividends(w http.ResponseWriter, r *http.Request) {
	roundID := chi.URLParam(r, "uuid")

	dividends, err := h.roundService.GetDividendsByRound(roundID)
	if err != nil {
		if errors.Is(err, apperrors.ErrRoundNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrRoundNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDividends.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, dividends)
}

// MarkReady handles POST requests to flip a round's ready-for-payment flag,
// the prerequisite for creating its collection payment.
//
// Endpoint: POST /api/round/{uuid}/ready
// Response: 200 OK with no body
// Error: 400 Bad Request if round ID is invalid (validated by middleware)
// Error: 404 Not Found if round not found
// Error: 500 Internal Server Error if the update fails
func (h *RoundHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	roundID := chi.URLParam(r, "uuid")

	if err := h.roundService.MarkReadyForPayment(r.Context(), roundID); err != nil {
		if errors.Is(err, apperrors.ErrRoundNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrRoundNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to mark round ready", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, nil)
}

// toComputation maps the request body onto the computation input consumed by
// the round orchestrator. Amounts stay in dollars here; the service owns the
// single conversion to cents.
func toComputation(req request.CreateRoundRequest) (model.Computation, error) {
	issuedAt, err := time.Parse("2006-01-02", req.IssuedAt)
	if err != nil {
		return model.Computation{}, err
	}

	rows := make([]model.AllocationRow, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		rows = append(rows, model.AllocationRow{
			InvestorID:   a.InvestorID,
			EntityName:   a.EntityName,
			Shares:       a.Shares,
			GrossUSD:     a.GrossAmount,
			QualifiedUSD: a.QualifiedAmount,
		})
	}

	return model.Computation{
		TotalUSD:        req.TotalAmount,
		IssuedAt:        issuedAt,
		ReturnOfCapital: req.ReturnOfCapital,
		Rows:            rows,
	}, nil
}
