package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/repository"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/testutil"
)

func issueDate() time.Time {
	return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
}

// TestRoundService_CreateRound tests round creation from a computation.
//
// WHY: Round creation is the entry point of the whole distribution flow: it
// converts dollars to cents exactly once, fans allocation rows out into
// dividends, and runs retention. Mistakes here propagate into every payment
// and notice downstream.
func TestRoundService_CreateRound(t *testing.T) {
	t.Run("creates round with dividends and summary for onboarded investor", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc, sender := testutil.NewTestRoundService(t, db)
		company := testutil.NewCompany().Build(t, db)
		investor := testutil.NewInvestor(company.ID).WithoutTaxCertification().Build(t, db)

		comp := model.Computation{
			TotalUSD: 6000,
			IssuedAt: issueDate(),
			Rows: []model.AllocationRow{
				{InvestorID: investor.ID, Shares: 100, GrossUSD: 6000, QualifiedUSD: 6000},
			},
		}

		// Execute
		result := svc.CreateRound(context.Background(), company.ID, comp)

		// Assert
		if !result.OK() {
			t.Fatalf("CreateRound() failed: %v", result.Errors)
		}

		round := result.Round
		if round.TotalAmount != 600000 {
			t.Errorf("Expected 600000 cents, got %d", round.TotalAmount)
		}
		if round.Status != model.RoundIssued {
			t.Errorf("Expected issued status, got %s", round.Status)
		}
		if round.ReadyForPayment {
			t.Error("Expected new round not ready for payment")
		}
		if round.NumberOfShares != 100 {
			t.Errorf("Expected 100 shares, got %f", round.NumberOfShares)
		}
		if round.NumberOfShareholders != 1 {
			t.Errorf("Expected 1 shareholder, got %d", round.NumberOfShareholders)
		}

		dividends, err := svc.GetDividendsByRound(round.ID)
		if err != nil {
			t.Fatalf("GetDividendsByRound() returned unexpected error: %v", err)
		}
		if len(dividends) != 1 {
			t.Fatalf("Expected 1 dividend, got %d", len(dividends))
		}

		// Uncertified investor: 24% backup withholding on 600000 cents
		d := dividends[0]
		if d.Status != model.DividendIssued {
			t.Errorf("Expected issued dividend, got %s", d.Status)
		}
		if d.WithheldAmount == nil || *d.WithheldAmount != 144000 {
			t.Errorf("Expected 144000 withheld, got %v", d.WithheldAmount)
		}
		if d.NetAmount == nil || *d.NetAmount != 456000 {
			t.Errorf("Expected 456000 net, got %v", d.NetAmount)
		}

		if result.Summary.Issued != 1 {
			t.Errorf("Expected 1 issued in summary, got %d", result.Summary.Issued)
		}
		if result.Summary.TotalWithheld != 144000 {
			t.Errorf("Expected 144000 total withheld, got %d", result.Summary.TotalWithheld)
		}
		if result.Summary.TotalNet != 456000 {
			t.Errorf("Expected 456000 total net, got %d", result.Summary.TotalNet)
		}

		// One issuance notice to the investor
		if len(sender.Sent) != 1 {
			t.Fatalf("Expected 1 notice, got %d", len(sender.Sent))
		}
		if sender.Sent[0].Kind != model.NotifyIssued {
			t.Errorf("Expected issued notice, got %s", sender.Sent[0].Kind)
		}
		if sender.Sent[0].RecipientEmail != investor.Email {
			t.Errorf("Expected notice to %s, got %s", investor.Email, sender.Sent[0].RecipientEmail)
		}
	})

	t.Run("investor without onboarding gets pending signup and no amounts", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc, sender := testutil.NewTestRoundService(t, db)
		company := testutil.NewCompany().Build(t, db)
		investor := testutil.NewInvestor(company.ID).NotOnboarded().Build(t, db)

		comp := model.Computation{
			TotalUSD: 1000,
			IssuedAt: issueDate(),
			Rows: []model.AllocationRow{
				{InvestorID: investor.ID, Shares: 10, GrossUSD: 1000, QualifiedUSD: 0},
			},
		}

		// Execute
		result := svc.CreateRound(context.Background(), company.ID, comp)

		// Assert
		if !result.OK() {
			t.Fatalf("CreateRound() failed: %v", result.Errors)
		}

		dividends, err := svc.GetDividendsByRound(result.Round.ID)
		if err != nil {
			t.Fatalf("GetDividendsByRound() returned unexpected error: %v", err)
		}
		d := dividends[0]
		if d.Status != model.DividendPendingSignup {
			t.Errorf("Expected pending_signup, got %s", d.Status)
		}
		if d.WithholdingPercentage != nil || d.WithheldAmount != nil || d.NetAmount != nil {
			t.Error("Expected withholding fields unset for pending signup")
		}
		if result.Summary.PendingSignup != 1 {
			t.Errorf("Expected 1 pending signup in summary, got %d", result.Summary.PendingSignup)
		}

		// The investor still hears about the issuance
		if len(sender.Sent) != 1 || sender.Sent[0].Kind != model.NotifyIssued {
			t.Errorf("Expected a single issued notice, got %v", sender.Kinds())
		}
	})

	t.Run("sanctioned country investor is retained in full", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc, sender := testutil.NewTestRoundService(t, db)
		company := testutil.NewCompany().Build(t, db)
		investor := testutil.NewInvestor(company.ID).WithCountry("IR").Build(t, db)

		comp := model.Computation{
			TotalUSD: 2500,
			IssuedAt: issueDate(),
			Rows: []model.AllocationRow{
				{InvestorID: investor.ID, Shares: 25, GrossUSD: 2500, QualifiedUSD: 2500},
			},
		}

		// Execute
		result := svc.CreateRound(context.Background(), company.ID, comp)

		// Assert
		if !result.OK() {
			t.Fatalf("CreateRound() failed: %v", result.Errors)
		}

		dividends, _ := svc.GetDividendsByRound(result.Round.ID)
		d := dividends[0]
		if d.Status != model.DividendRetained {
			t.Errorf("Expected retained, got %s", d.Status)
		}
		if d.RetainedReason == nil || *d.RetainedReason != model.RetainedSanctionedCountry {
			t.Errorf("Expected sanctioned_country reason, got %v", d.RetainedReason)
		}
		if result.Summary.RetainedSanction != 1 {
			t.Errorf("Expected 1 sanction retention in summary, got %d", result.Summary.RetainedSanction)
		}
		if result.Summary.TotalRetained != 250000 {
			t.Errorf("Expected 250000 retained, got %d", result.Summary.TotalRetained)
		}
		if len(sender.Sent) != 1 || sender.Sent[0].Kind != model.NotifySanctionedCountry {
			t.Errorf("Expected a single sanctioned country notice, got %v", sender.Kinds())
		}
	})

	t.Run("aggregate below investor minimum is retained with threshold reason", func(t *testing.T) {
		// Setup: minimum is $100, dividend is $45
		db := testutil.SetupTestDB(t)
		svc, sender := testutil.NewTestRoundService(t, db)
		company := testutil.NewCompany().Build(t, db)
		investor := testutil.NewInvestor(company.ID).WithMinimumPayment(10000).Build(t, db)

		comp := model.Computation{
			TotalUSD: 45,
			IssuedAt: issueDate(),
			Rows: []model.AllocationRow{
				{InvestorID: investor.ID, Shares: 5, GrossUSD: 45, QualifiedUSD: 45},
			},
		}

		// Execute
		result := svc.CreateRound(context.Background(), company.ID, comp)

		// Assert
		if !result.OK() {
			t.Fatalf("CreateRound() failed: %v", result.Errors)
		}

		dividends, _ := svc.GetDividendsByRound(result.Round.ID)
		d := dividends[0]
		if d.RetainedReason == nil || *d.RetainedReason != model.RetainedBelowThreshold {
			t.Errorf("Expected below_threshold reason, got %v", d.RetainedReason)
		}
		if result.Summary.RetainedThreshold != 1 {
			t.Errorf("Expected 1 threshold retention in summary, got %d", result.Summary.RetainedThreshold)
		}
		if len(sender.Sent) != 1 || sender.Sent[0].Kind != model.NotifyBelowThreshold {
			t.Errorf("Expected a single below threshold notice, got %v", sender.Kinds())
		}
	})

	t.Run("multiple rows for one investor produce one notice", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc, sender := testutil.NewTestRoundService(t, db)
		company := testutil.NewCompany().Build(t, db)
		investor := testutil.NewInvestor(company.ID).Build(t, db)

		comp := model.Computation{
			TotalUSD: 300,
			IssuedAt: issueDate(),
			Rows: []model.AllocationRow{
				{InvestorID: investor.ID, Shares: 10, GrossUSD: 100, QualifiedUSD: 100},
				{InvestorID: investor.ID, Shares: 20, GrossUSD: 200, QualifiedUSD: 200},
			},
		}

		// Execute
		result := svc.CreateRound(context.Background(), company.ID, comp)

		// Assert
		if !result.OK() {
			t.Fatalf("CreateRound() failed: %v", result.Errors)
		}
		if result.Round.NumberOfShareholders != 1 {
			t.Errorf("Expected 1 shareholder, got %d", result.Round.NumberOfShareholders)
		}

		dividends, _ := svc.GetDividendsByRound(result.Round.ID)
		if len(dividends) != 2 {
			t.Errorf("Expected 2 dividends, got %d", len(dividends))
		}
		if len(sender.Sent) != 1 {
			t.Errorf("Expected exactly 1 notice for the investor, got %d", len(sender.Sent))
		}
	})

	t.Run("entity row is split across holdings in proportion to investment", func(t *testing.T) {
		// Setup: two underlying investors with a 2:1 investment ratio
		db := testutil.SetupTestDB(t)
		svc, _ := testutil.NewTestRoundService(t, db)
		company := testutil.NewCompany().Build(t, db)
		investorA := testutil.NewInvestor(company.ID).Build(t, db)
		investorB := testutil.NewInvestor(company.ID).Build(t, db)
		testutil.CreateEntityHolding(t, db, company.ID, "Fund I LP", investorA.ID, 200000)
		testutil.CreateEntityHolding(t, db, company.ID, "Fund I LP", investorB.ID, 100000)

		comp := model.Computation{
			TotalUSD: 300,
			IssuedAt: issueDate(),
			Rows: []model.AllocationRow{
				{EntityName: "Fund I LP", Shares: 30, GrossUSD: 300, QualifiedUSD: 300},
			},
		}

		// Execute
		result := svc.CreateRound(context.Background(), company.ID, comp)

		// Assert
		if !result.OK() {
			t.Fatalf("CreateRound() failed: %v", result.Errors)
		}
		if result.Round.NumberOfShareholders != 2 {
			t.Errorf("Expected 2 shareholders, got %d", result.Round.NumberOfShareholders)
		}

		dividends, _ := svc.GetDividendsByRound(result.Round.ID)
		if len(dividends) != 2 {
			t.Fatalf("Expected 2 dividends, got %d", len(dividends))
		}

		amounts := map[string]int64{}
		for _, d := range dividends {
			amounts[d.InvestorID] = d.TotalAmount
		}
		if amounts[investorA.ID] != 20000 {
			t.Errorf("Expected 20000 cents for the 2/3 holder, got %d", amounts[investorA.ID])
		}
		if amounts[investorB.ID] != 10000 {
			t.Errorf("Expected 10000 cents for the 1/3 holder, got %d", amounts[investorB.ID])
		}
	})

	t.Run("entity split sums exactly across equal holdings", func(t *testing.T) {
		// Setup: four equal holdings of a row whose even split lands on a
		// half cent, so naive per-holding rounding would inflate the total
		db := testutil.SetupTestDB(t)
		svc, _ := testutil.NewTestRoundService(t, db)
		company := testutil.NewCompany().Build(t, db)
		holders := make([]model.Investor, 4)
		for i := range holders {
			holders[i] = testutil.NewInvestor(company.ID).Build(t, db)
			testutil.CreateEntityHolding(t, db, company.ID, "Fund II LP", holders[i].ID, 100000)
		}

		comp := model.Computation{
			TotalUSD: 1000.10,
			IssuedAt: issueDate(),
			Rows: []model.AllocationRow{
				{EntityName: "Fund II LP", Shares: 40, GrossUSD: 1000.10, QualifiedUSD: 1000.10},
			},
		}

		// Execute
		result := svc.CreateRound(context.Background(), company.ID, comp)

		// Assert
		if !result.OK() {
			t.Fatalf("CreateRound() failed: %v", result.Errors)
		}

		dividends, _ := svc.GetDividendsByRound(result.Round.ID)
		if len(dividends) != 4 {
			t.Fatalf("Expected 4 dividends, got %d", len(dividends))
		}

		var totalSum, qualifiedSum int64
		minAmount, maxAmount := dividends[0].TotalAmount, dividends[0].TotalAmount
		for _, d := range dividends {
			totalSum += d.TotalAmount
			qualifiedSum += d.QualifiedAmount
			if d.TotalAmount < minAmount {
				minAmount = d.TotalAmount
			}
			if d.TotalAmount > maxAmount {
				maxAmount = d.TotalAmount
			}
		}
		if totalSum != result.Round.TotalAmount {
			t.Errorf("Expected dividend totals to sum to %d cents, got %d", result.Round.TotalAmount, totalSum)
		}
		if qualifiedSum != 100010 {
			t.Errorf("Expected qualified amounts to sum to 100010 cents, got %d", qualifiedSum)
		}
		if maxAmount-minAmount > 1 {
			t.Errorf("Expected equal holders to differ by at most 1 cent, got %d to %d", minAmount, maxAmount)
		}
	})

	t.Run("conflicting round writes nothing", func(t *testing.T) {
		// Setup: an existing round issued after the new one's date
		db := testutil.SetupTestDB(t)
		svc, sender := testutil.NewTestRoundService(t, db)
		company := testutil.NewCompany().Build(t, db)
		investor := testutil.NewInvestor(company.ID).Build(t, db)
		testutil.NewRound(company.ID).
			WithIssuedAt(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		comp := model.Computation{
			TotalUSD: 1000,
			IssuedAt: issueDate(),
			Rows: []model.AllocationRow{
				{InvestorID: investor.ID, Shares: 10, GrossUSD: 1000, QualifiedUSD: 1000},
			},
		}

		// Execute
		result := svc.CreateRound(context.Background(), company.ID, comp)

		// Assert
		if result.OK() {
			t.Fatal("Expected conflict failure, got success")
		}
		if len(result.Errors) != 1 || result.Errors[0] != apperrors.ErrRoundConflict.Error() {
			t.Errorf("Expected round conflict error, got %v", result.Errors)
		}

		rounds, err := svc.GetRoundsByCompany(company.ID)
		if err != nil {
			t.Fatalf("GetRoundsByCompany() returned unexpected error: %v", err)
		}
		if len(rounds) != 1 {
			t.Errorf("Expected only the pre-existing round, got %d rounds", len(rounds))
		}

		var dividendCount int
		if err := db.QueryRow("SELECT COUNT(*) FROM dividend").Scan(&dividendCount); err != nil {
			t.Fatalf("Failed to count dividends: %v", err)
		}
		if dividendCount != 0 {
			t.Errorf("Expected 0 dividends after conflict, got %d", dividendCount)
		}
		if len(sender.Sent) != 0 {
			t.Errorf("Expected no notices after conflict, got %d", len(sender.Sent))
		}
	})

	t.Run("unknown investor aborts the whole round atomically", func(t *testing.T) {
		// Setup: one valid row, one row pointing at a missing investor
		db := testutil.SetupTestDB(t)
		svc, sender := testutil.NewTestRoundService(t, db)
		company := testutil.NewCompany().Build(t, db)
		investor := testutil.NewInvestor(company.ID).Build(t, db)

		comp := model.Computation{
			TotalUSD: 2000,
			IssuedAt: issueDate(),
			Rows: []model.AllocationRow{
				{InvestorID: investor.ID, Shares: 10, GrossUSD: 1000, QualifiedUSD: 1000},
				{InvestorID: testutil.MakeID(), Shares: 10, GrossUSD: 1000, QualifiedUSD: 1000},
			},
		}

		// Execute
		result := svc.CreateRound(context.Background(), company.ID, comp)

		// Assert
		if result.OK() {
			t.Fatal("Expected failure for unknown investor, got success")
		}

		var roundCount, dividendCount, notificationCount int
		if err := db.QueryRow("SELECT COUNT(*) FROM round").Scan(&roundCount); err != nil {
			t.Fatalf("Failed to count rounds: %v", err)
		}
		if err := db.QueryRow("SELECT COUNT(*) FROM dividend").Scan(&dividendCount); err != nil {
			t.Fatalf("Failed to count dividends: %v", err)
		}
		if err := db.QueryRow("SELECT COUNT(*) FROM notification").Scan(&notificationCount); err != nil {
			t.Fatalf("Failed to count notifications: %v", err)
		}
		if roundCount != 0 || dividendCount != 0 || notificationCount != 0 {
			t.Errorf("Expected no rows after abort, got %d rounds, %d dividends, %d notifications",
				roundCount, dividendCount, notificationCount)
		}
		if len(sender.Sent) != 0 {
			t.Errorf("Expected no notices after abort, got %d", len(sender.Sent))
		}
	})

	t.Run("rejects computation without rows", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc, _ := testutil.NewTestRoundService(t, db)
		company := testutil.NewCompany().Build(t, db)

		// Execute
		result := svc.CreateRound(context.Background(), company.ID, model.Computation{
			TotalUSD: 100,
			IssuedAt: issueDate(),
		})

		// Assert
		if result.OK() {
			t.Fatal("Expected validation failure, got success")
		}
	})
}

// TestRoundService_Retrieval tests the round read paths.
//
// WHY: The read surface backs both the API and the payment prerequisites;
// not-found conditions must map to the sentinel the handlers branch on.
func TestRoundService_Retrieval(t *testing.T) {
	t.Run("GetRound returns not found sentinel for unknown id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc, _ := testutil.NewTestRoundService(t, db)

		_, err := svc.GetRound(testutil.MakeID())
		if !errors.Is(err, apperrors.ErrRoundNotFound) {
			t.Errorf("Expected ErrRoundNotFound, got %v", err)
		}
	})

	t.Run("GetDividendsByRound rejects unknown round", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc, _ := testutil.NewTestRoundService(t, db)

		_, err := svc.GetDividendsByRound(testutil.MakeID())
		if !errors.Is(err, apperrors.ErrRoundNotFound) {
			t.Errorf("Expected ErrRoundNotFound, got %v", err)
		}
	})

	t.Run("MarkReadyForPayment flips the flag", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc, _ := testutil.NewTestRoundService(t, db)
		company := testutil.NewCompany().Build(t, db)
		round := testutil.NewRound(company.ID).Build(t, db)

		// Execute
		if err := svc.MarkReadyForPayment(context.Background(), round.ID); err != nil {
			t.Fatalf("MarkReadyForPayment() returned unexpected error: %v", err)
		}

		// Assert
		repo := repository.NewRoundRepository(db)
		updated, err := repo.GetRound(round.ID)
		if err != nil {
			t.Fatalf("GetRound() returned unexpected error: %v", err)
		}
		if !updated.ReadyForPayment {
			t.Error("Expected round marked ready for payment")
		}
	})
}
