package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/repository"
)

// RoundService orchestrates round creation: importing allocation rows,
// creating the round and its dividends atomically, running retention
// evaluation and dispatching the per-investor notices.
type RoundService struct {
	db               *sql.DB
	roundRepo        *repository.RoundRepository
	dividendRepo     *repository.DividendRepository
	investorRepo     *repository.InvestorRepository
	notificationRepo *repository.NotificationRepository
	evaluator        *RetentionEvaluator
	sender           Sender

	// companyLocks serializes round creation per company so two concurrent
	// calls cannot both pass the conflict check.
	mu           sync.Mutex
	companyLocks map[string]*sync.Mutex
}

// NewRoundService creates a new RoundService with the provided dependencies.
func NewRoundService(
	db *sql.DB,
	roundRepo *repository.RoundRepository,
	dividendRepo *repository.DividendRepository,
	investorRepo *repository.InvestorRepository,
	notificationRepo *repository.NotificationRepository,
	evaluator *RetentionEvaluator,
	sender Sender,
) *RoundService {
	return &RoundService{
		db:               db,
		roundRepo:        roundRepo,
		dividendRepo:     dividendRepo,
		investorRepo:     investorRepo,
		notificationRepo: notificationRepo,
		evaluator:        evaluator,
		sender:           sender,
		companyLocks:     make(map[string]*sync.Mutex),
	}
}

// CreateRound turns a computation into a persisted round with one dividend per
// resolved investor position, evaluates retention, and queues notifications.
//
// All writes happen in one transaction: any failure leaves no round, no
// dividends and no notifications behind. Errors are returned inside the
// result, never raised past this boundary.
func (s *RoundService) CreateRound(ctx context.Context, companyID string, comp model.Computation) model.RoundResult {
	if msgs := validateComputation(comp); len(msgs) > 0 {
		return model.RoundResult{Errors: msgs}
	}

	unlock := s.lockCompany(companyID)
	defer unlock()

	// Conflict is checked before the transaction opens (no writes at all for
	// a conflicting request) and again inside it.
	conflict, err := s.roundRepo.HasConflictingRound(ctx, companyID, comp.IssuedAt)
	if err != nil {
		return failure(err)
	}
	if conflict {
		return failure(apperrors.ErrRoundConflict)
	}

	round, notices, summary, err := s.createRoundTx(ctx, companyID, comp)
	if err != nil {
		return failure(err)
	}

	// Notices go out only after the transaction committed. Delivery is
	// best-effort; the tracking rows keep retries idempotent.
	for _, n := range notices {
		if err := s.sender.Send(ctx, n.recipientEmail, n.kind, n.roundID); err != nil {
			log.Printf("failed to send %s notification to %s: %v", n.kind, n.recipientEmail, err)
		}
	}

	return model.RoundResult{Round: round, Summary: summary}
}

// createRoundTx runs every write of round creation inside one transaction.
func (s *RoundService) createRoundTx(ctx context.Context, companyID string, comp model.Computation) (*model.Round, []notice, model.RoundSummary, error) {
	var summary model.RoundSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, summary, fmt.Errorf("failed to begin transaction: %w", err)
	}
	//nolint:errcheck // Rollback after commit is a no-op
	defer tx.Rollback()

	roundRepo := s.roundRepo.WithTx(tx)
	dividendRepo := s.dividendRepo.WithTx(tx)
	investorRepo := s.investorRepo.WithTx(tx)
	notificationRepo := s.notificationRepo.WithTx(tx)

	conflict, err := roundRepo.HasConflictingRound(ctx, companyID, comp.IssuedAt)
	if err != nil {
		return nil, nil, summary, err
	}
	if conflict {
		return nil, nil, summary, apperrors.ErrRoundConflict
	}

	round := &model.Round{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		IssuedAt:        comp.IssuedAt,
		TotalAmount:     model.CentsFromUSD(comp.TotalUSD),
		Status:          model.RoundIssued,
		ReadyForPayment: false,
		ReturnOfCapital: comp.ReturnOfCapital,
		CreatedAt:       time.Now().UTC(),
	}

	dividends, err := s.resolveRows(round, comp.Rows, companyID, investorRepo)
	if err != nil {
		return nil, nil, summary, err
	}

	investorIDs := make(map[string]bool)
	for _, d := range dividends {
		round.NumberOfShares += d.NumberOfShares
		investorIDs[d.InvestorID] = true
	}
	round.NumberOfShareholders = len(investorIDs)

	ids := make([]string, 0, len(investorIDs))
	for id := range investorIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	investors, err := investorRepo.GetInvestorsByIDs(ids)
	if err != nil {
		return nil, nil, summary, err
	}
	for _, id := range ids {
		if _, ok := investors[id]; !ok {
			return nil, nil, summary, fmt.Errorf("%w: %s", apperrors.ErrInvestorNotFound, id)
		}
	}

	if err := roundRepo.InsertRound(ctx, round); err != nil {
		return nil, nil, summary, err
	}

	// Initial dividend status follows onboarding completeness; the evaluator
	// refines it below.
	byInvestor := make(map[string][]*model.Dividend)
	for _, d := range dividends {
		if investors[d.InvestorID].Onboarded() {
			d.Status = model.DividendIssued
		} else {
			d.Status = model.DividendPendingSignup
		}
		if err := dividendRepo.InsertDividend(ctx, d); err != nil {
			return nil, nil, summary, err
		}
		byInvestor[d.InvestorID] = append(byInvestor[d.InvestorID], d)
	}

	taxYear := comp.IssuedAt.Year()
	notices := []notice{}

	for _, id := range ids {
		investor := investors[id]
		rows := byInvestor[id]

		kind, err := s.evaluator.Evaluate(investor, rows, taxYear)
		if err != nil {
			return nil, nil, summary, err
		}

		for _, d := range rows {
			if err := dividendRepo.UpdateRetention(ctx, d); err != nil {
				return nil, nil, summary, err
			}
			accumulate(&summary, d)
		}

		created, err := notificationRepo.FindOrCreate(ctx, investor.ID, round.ID, kind)
		if err != nil {
			return nil, nil, summary, err
		}
		if created {
			notices = append(notices, notice{
				recipientID:    investor.ID,
				recipientEmail: investor.Email,
				roundID:        round.ID,
				kind:           kind,
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, summary, fmt.Errorf("failed to commit round creation: %w", err)
	}

	return round, notices, summary, nil
}

// resolveRows converts allocation rows into dividend rows, expanding
// pass-through entity rows into one dividend per underlying holding. This is
// the single dollars-to-cents boundary.
func (s *RoundService) resolveRows(round *model.Round, rows []model.AllocationRow, companyID string, investorRepo *repository.InvestorRepository) ([]*model.Dividend, error) {
	dividends := []*model.Dividend{}

	for _, row := range rows {
		grossCents := model.CentsFromUSD(row.GrossUSD)
		qualifiedCents := model.CentsFromUSD(row.QualifiedUSD)

		if row.EntityName == "" {
			dividends = append(dividends, &model.Dividend{
				ID:              uuid.New().String(),
				RoundID:         round.ID,
				InvestorID:      row.InvestorID,
				TotalAmount:     grossCents,
				QualifiedAmount: qualifiedCents,
				NumberOfShares:  row.Shares,
			})
			continue
		}

		holdings, err := investorRepo.GetEntityHoldings(companyID, row.EntityName)
		if err != nil {
			return nil, err
		}

		var totalInvestment int64
		for _, h := range holdings {
			totalInvestment += h.InvestmentAmount
		}
		if totalInvestment <= 0 {
			return nil, fmt.Errorf("%w: entity %s has no investment", apperrors.ErrInvalidComputation, row.EntityName)
		}

		weights := make([]int64, len(holdings))
		for i, h := range holdings {
			weights[i] = h.InvestmentAmount
		}
		grossSplit := apportion(grossCents, weights)
		qualifiedSplit := apportion(qualifiedCents, weights)

		for i, h := range holdings {
			fraction := float64(h.InvestmentAmount) / float64(totalInvestment)
			dividends = append(dividends, &model.Dividend{
				ID:              uuid.New().String(),
				RoundID:         round.ID,
				InvestorID:      h.InvestorID,
				TotalAmount:     grossSplit[i],
				QualifiedAmount: qualifiedSplit[i],
				NumberOfShares:  row.Shares * fraction,
			})
		}
	}

	return dividends, nil
}

// apportion splits total cents across weights by largest-remainder rounding.
// The parts always sum exactly to total, so an entity split cannot drift from
// the entity row's amount no matter how many holdings it expands into.
func apportion(total int64, weights []int64) []int64 {
	var weightSum int64
	for _, w := range weights {
		weightSum += w
	}

	parts := make([]int64, len(weights))
	fractions := make([]struct {
		index     int
		remainder float64
	}, len(weights))

	var assigned int64
	for i, w := range weights {
		exact := float64(total) * float64(w) / float64(weightSum)
		floor := math.Floor(exact)
		parts[i] = int64(floor)
		assigned += parts[i]
		fractions[i].index = i
		fractions[i].remainder = exact - floor
	}

	sort.SliceStable(fractions, func(a, b int) bool {
		return fractions[a].remainder > fractions[b].remainder
	})
	for i := int64(0); i < total-assigned; i++ {
		parts[fractions[i].index]++
	}

	return parts
}

// GetRound retrieves a single round.
func (s *RoundService) GetRound(roundID string) (model.Round, error) {
	return s.roundRepo.GetRound(roundID)
}

// GetRoundsByCompany retrieves all rounds for a company.
func (s *RoundService) GetRoundsByCompany(companyID string) ([]model.Round, error) {
	return s.roundRepo.GetRoundsByCompany(companyID)
}

// GetDividendsByRound retrieves all dividends in a round.
func (s *RoundService) GetDividendsByRound(roundID string) ([]model.Dividend, error) {
	if _, err := s.roundRepo.GetRound(roundID); err != nil {
		return nil, err
	}
	return s.dividendRepo.GetDividendsByRound(roundID)
}

// MarkReadyForPayment flips the round's ready-for-payment flag, the
// prerequisite for collection.
func (s *RoundService) MarkReadyForPayment(ctx context.Context, roundID string) error {
	return s.roundRepo.MarkReadyForPayment(ctx, roundID)
}

// lockCompany takes the per-company creation lock and returns its unlock.
func (s *RoundService) lockCompany(companyID string) func() {
	s.mu.Lock()
	lock, ok := s.companyLocks[companyID]
	if !ok {
		lock = &sync.Mutex{}
		s.companyLocks[companyID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// validateComputation checks the computation input before any write.
func validateComputation(comp model.Computation) []string {
	msgs := []string{}

	if comp.TotalUSD < 0 {
		msgs = append(msgs, "total amount cannot be negative")
	}
	if comp.IssuedAt.IsZero() {
		msgs = append(msgs, "issuance date is required")
	}
	if len(comp.Rows) == 0 {
		msgs = append(msgs, "computation has no allocation rows")
	}

	for i, row := range comp.Rows {
		switch {
		case row.InvestorID == "" && row.EntityName == "":
			msgs = append(msgs, fmt.Sprintf("row %d: investor or entity is required", i))
		case row.InvestorID != "" && row.EntityName != "":
			msgs = append(msgs, fmt.Sprintf("row %d: investor and entity are mutually exclusive", i))
		}
		if row.GrossUSD < 0 {
			msgs = append(msgs, fmt.Sprintf("row %d: gross amount cannot be negative", i))
		}
		if row.Shares < 0 {
			msgs = append(msgs, fmt.Sprintf("row %d: shares cannot be negative", i))
		}
	}

	return msgs
}

// accumulate folds one evaluated dividend into the round summary.
func accumulate(summary *model.RoundSummary, d *model.Dividend) {
	switch d.Status {
	case model.DividendPendingSignup:
		summary.PendingSignup++
	case model.DividendIssued:
		summary.Issued++
		if d.WithheldAmount != nil {
			summary.TotalWithheld += *d.WithheldAmount
		}
		if d.NetAmount != nil {
			summary.TotalNet += *d.NetAmount
		}
	case model.DividendRetained:
		summary.TotalRetained += d.TotalAmount
		if d.RetainedReason != nil && *d.RetainedReason == model.RetainedSanctionedCountry {
			summary.RetainedSanction++
		} else {
			summary.RetainedThreshold++
		}
	}
}

// failure wraps an error into a failure result.
func failure(err error) model.RoundResult {
	return model.RoundResult{Errors: []string{err.Error()}}
}
