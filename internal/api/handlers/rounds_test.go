package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/api/request"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/testutil"
)

func TestRoundHandler_CreateRound(t *testing.T) {
	setupHandler := func(t *testing.T) (*RoundHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		rs, _ := testutil.NewTestRoundService(t, db)
		return NewRoundHandler(rs), db
	}

	validBody := func(companyID, investorID string) request.CreateRoundRequest {
		return request.CreateRoundRequest{
			CompanyID:   companyID,
			TotalAmount: 5000,
			IssuedAt:    "2026-03-15",
			Allocations: []request.AllocationRequest{
				{InvestorID: investorID, Shares: 100, GrossAmount: 5000, QualifiedAmount: 5000},
			},
		}
	}

	t.Run("creates a round and returns the retention summary", func(t *testing.T) {
		handler, db := setupHandler(t)
		company := testutil.NewCompany().Build(t, db)
		investor := testutil.NewInvestor(company.ID).Build(t, db)

		req := testutil.NewRequestWithJSONBody(t, http.MethodPost, "/api/round",
			validBody(company.ID, investor.ID), nil)
		w := httptest.NewRecorder()

		handler.CreateRound(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var result model.RoundResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&result)

		if result.Round == nil {
			t.Fatal("Expected round in response")
		}
		if result.Round.TotalAmount != 500000 {
			t.Errorf("Expected total amount 500000 cents, got %d", result.Round.TotalAmount)
		}
		if result.Summary.Issued != 1 {
			t.Errorf("Expected 1 issued dividend, got %d", result.Summary.Issued)
		}
	})

	t.Run("rejects invalid body with 400", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/round", nil)
		w := httptest.NewRecorder()

		handler.CreateRound(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects validation failures with 400", func(t *testing.T) {
		handler, db := setupHandler(t)
		company := testutil.NewCompany().Build(t, db)

		body := request.CreateRoundRequest{
			CompanyID:   company.ID,
			TotalAmount: -1,
			IssuedAt:    "2026-03-15",
		}
		req := testutil.NewRequestWithJSONBody(t, http.MethodPost, "/api/round", body, nil)
		w := httptest.NewRecorder()

		handler.CreateRound(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 409 when a round already exists in the window", func(t *testing.T) {
		handler, db := setupHandler(t)
		company := testutil.NewCompany().Build(t, db)
		investor := testutil.NewInvestor(company.ID).Build(t, db)

		req := testutil.NewRequestWithJSONBody(t, http.MethodPost, "/api/round",
			validBody(company.ID, investor.ID), nil)
		w := httptest.NewRecorder()
		handler.CreateRound(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected first round to be created, got %d: %s", w.Code, w.Body.String())
		}

		req = testutil.NewRequestWithJSONBody(t, http.MethodPost, "/api/round",
			validBody(company.ID, investor.ID), nil)
		w = httptest.NewRecorder()
		handler.CreateRound(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestRoundHandler_GetRound(t *testing.T) {
	setupHandler := func(t *testing.T) (*RoundHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		rs, _ := testutil.NewTestRoundService(t, db)
		return NewRoundHandler(rs), db
	}

	t.Run("returns the round", func(t *testing.T) {
		handler, db := setupHandler(t)
		company := testutil.NewCompany().Build(t, db)
		round := testutil.NewRound(company.ID).Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/round/"+round.ID,
			map[string]string{"uuid": round.ID},
		)
		w := httptest.NewRecorder()

		handler.GetRound(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var got model.Round
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&got)

		if got.ID != round.ID {
			t.Errorf("Expected round %s, got %s", round.ID, got.ID)
		}
	})

	t.Run("returns 404 for unknown round", func(t *testing.T) {
		handler, _ := setupHandler(t)
		unknownID := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/round/"+unknownID,
			map[string]string{"uuid": unknownID},
		)
		w := httptest.NewRecorder()

		handler.GetRound(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestRoundHandler_GetRounds(t *testing.T) {
	t.Run("requires a valid companyId query parameter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		rs, _ := testutil.NewTestRoundService(t, db)
		handler := NewRoundHandler(rs)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/round",
			map[string]string{"companyId": "not-a-uuid"})
		w := httptest.NewRecorder()

		handler.GetRounds(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("lists a company's rounds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		rs, _ := testutil.NewTestRoundService(t, db)
		handler := NewRoundHandler(rs)
		company := testutil.NewCompany().Build(t, db)
		testutil.NewRound(company.ID).Build(t, db)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/round",
			map[string]string{"companyId": company.ID})
		w := httptest.NewRecorder()

		handler.GetRounds(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var rounds []model.Round
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&rounds)

		if len(rounds) != 1 {
			t.Errorf("Expected 1 round, got %d", len(rounds))
		}
	})
}

func TestRoundHandler_MarkReady(t *testing.T) {
	t.Run("flips the ready flag", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		rs, _ := testutil.NewTestRoundService(t, db)
		handler := NewRoundHandler(rs)
		company := testutil.NewCompany().Build(t, db)
		round := testutil.NewRound(company.ID).Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodPost,
			"/api/round/"+round.ID+"/ready",
			map[string]string{"uuid": round.ID},
		)
		w := httptest.NewRecorder()

		handler.MarkReady(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for unknown round", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		rs, _ := testutil.NewTestRoundService(t, db)
		handler := NewRoundHandler(rs)
		unknownID := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(
			http.MethodPost,
			"/api/round/"+unknownID+"/ready",
			map[string]string{"uuid": unknownID},
		)
		w := httptest.NewRecorder()

		handler.MarkReady(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
