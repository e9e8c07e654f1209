package validation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/api/request"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/validation"
)

func TestValidateCreateRound(t *testing.T) {
	validRequest := func() request.CreateRoundRequest {
		return request.CreateRoundRequest{
			CompanyID:   "550e8400-e29b-41d4-a716-446655440000",
			TotalAmount: 6000,
			IssuedAt:    "2026-03-15",
			Allocations: []request.AllocationRequest{
				{
					InvestorID:      "650e8400-e29b-41d4-a716-446655440000",
					Shares:          100,
					GrossAmount:     6000,
					QualifiedAmount: 6000,
				},
			},
		}
	}

	t.Run("accepts a valid request", func(t *testing.T) {
		if err := validation.ValidateCreateRound(validRequest()); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("accepts an entity allocation row", func(t *testing.T) {
		req := validRequest()
		req.Allocations[0].InvestorID = ""
		req.Allocations[0].EntityName = "Fund I LP"

		if err := validation.ValidateCreateRound(req); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("rejects invalid company id", func(t *testing.T) {
		req := validRequest()
		req.CompanyID = "not-a-uuid"

		if err := validation.ValidateCreateRound(req); err == nil {
			t.Error("Expected error for invalid company id, got nil")
		}
	})

	t.Run("collects field errors", func(t *testing.T) {
		req := validRequest()
		req.TotalAmount = 0
		req.IssuedAt = "15-03-2026"

		err := validation.ValidateCreateRound(req)
		if err == nil {
			t.Fatal("Expected validation error, got nil")
		}

		var vErr *validation.Error
		if !errors.As(err, &vErr) {
			t.Fatalf("Expected *validation.Error, got %T", err)
		}
		if _, ok := vErr.Fields["totalAmount"]; !ok {
			t.Error("Expected totalAmount error")
		}
		if _, ok := vErr.Fields["issuedAt"]; !ok {
			t.Error("Expected issuedAt error")
		}

		// The rendered message lists fields in sorted order, so the same
		// invalid request always reads the same.
		if !strings.HasPrefix(vErr.Error(), "issuedAt:") {
			t.Errorf("Expected issuedAt listed first, got %q", vErr.Error())
		}
	})

	t.Run("rejects empty allocations", func(t *testing.T) {
		req := validRequest()
		req.Allocations = nil

		if err := validation.ValidateCreateRound(req); err == nil {
			t.Error("Expected error for empty allocations, got nil")
		}
	})

	t.Run("rejects a row naming both investor and entity", func(t *testing.T) {
		req := validRequest()
		req.Allocations[0].EntityName = "Fund I LP"

		err := validation.ValidateCreateRound(req)
		if err == nil {
			t.Fatal("Expected validation error, got nil")
		}

		var vErr *validation.Error
		if !errors.As(err, &vErr) {
			t.Fatalf("Expected *validation.Error, got %T", err)
		}
		if _, ok := vErr.Fields["allocations[0]"]; !ok {
			t.Errorf("Expected allocations[0] error, got %v", vErr.Fields)
		}
	})

	t.Run("rejects qualified amount above gross", func(t *testing.T) {
		req := validRequest()
		req.Allocations[0].QualifiedAmount = req.Allocations[0].GrossAmount + 1

		if err := validation.ValidateCreateRound(req); err == nil {
			t.Error("Expected error for qualified above gross, got nil")
		}
	})

	t.Run("rejects non-positive shares", func(t *testing.T) {
		req := validRequest()
		req.Allocations[0].Shares = 0

		if err := validation.ValidateCreateRound(req); err == nil {
			t.Error("Expected error for zero shares, got nil")
		}
	})
}

func TestValidateUUID(t *testing.T) {
	if err := validation.ValidateUUID("550e8400-e29b-41d4-a716-446655440000"); err != nil {
		t.Errorf("Expected no error for valid UUID, got %v", err)
	}
	if err := validation.ValidateUUID("xyz"); err == nil {
		t.Error("Expected error for invalid UUID, got nil")
	}
	if err := validation.ValidateUUID(""); err == nil {
		t.Error("Expected error for empty UUID, got nil")
	}
}
