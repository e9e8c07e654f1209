package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/gateway"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/repository"
)

// PayoutQueue enqueues the external payout job. The call carries no round
// argument on purpose: the payout job scans for eligible pending work itself.
type PayoutQueue interface {
	Enqueue(ctx context.Context) error
}

// LogPayoutQueue stands in for the external job system in development and
// tests.
type LogPayoutQueue struct{}

// Enqueue logs the enqueue.
func (LogPayoutQueue) Enqueue(context.Context) error {
	log.Printf("payout job enqueued")
	return nil
}

// ErrorReporter forwards gateway failures to error tracking with contextual ids.
type ErrorReporter interface {
	Report(err error, context map[string]string)
}

// LogReporter writes reports to the application log.
type LogReporter struct{}

// Report logs the error with its context.
func (LogReporter) Report(err error, context map[string]string) {
	log.Printf("error report: %v %v", err, context)
}

// PaymentService drives company-side funds collection: creating the gateway
// payment intent for a round, reconciling webhook events, and the manual
// status refresh that covers missed webhooks.
type PaymentService struct {
	db               *sql.DB
	paymentRepo      *repository.PaymentRepository
	roundRepo        *repository.RoundRepository
	companyRepo      *repository.CompanyRepository
	balanceRepo      *repository.BalanceTransactionRepository
	notificationRepo *repository.NotificationRepository
	gateway          gateway.Client
	payoutQueue      PayoutQueue
	reporter         ErrorReporter
	sender           Sender
}

// NewPaymentService creates a new PaymentService with the provided dependencies.
func NewPaymentService(
	db *sql.DB,
	paymentRepo *repository.PaymentRepository,
	roundRepo *repository.RoundRepository,
	companyRepo *repository.CompanyRepository,
	balanceRepo *repository.BalanceTransactionRepository,
	notificationRepo *repository.NotificationRepository,
	gatewayClient gateway.Client,
	payoutQueue PayoutQueue,
	reporter ErrorReporter,
	sender Sender,
) *PaymentService {
	return &PaymentService{
		db:               db,
		paymentRepo:      paymentRepo,
		roundRepo:        roundRepo,
		companyRepo:      companyRepo,
		balanceRepo:      balanceRepo,
		notificationRepo: notificationRepo,
		gateway:          gatewayClient,
		payoutQueue:      payoutQueue,
		reporter:         reporter,
		sender:           sender,
	}
}

// CreatePaymentIntent creates or reuses the gateway payment intent collecting
// a round's total from the company.
//
// Prerequisites are checked before any write: the company needs an alive,
// ready payment source, the round must be marked ready for payment, and must
// not already be paid. If a payment with a gateway intent already exists the
// call is an idempotent no-op returning it unchanged.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, roundID string) (model.Payment, error) {
	round, err := s.roundRepo.GetRound(roundID)
	if err != nil {
		return model.Payment{}, err
	}

	if round.Status == model.RoundPaid {
		return model.Payment{}, apperrors.ErrRoundAlreadyPaid
	}
	if !round.ReadyForPayment {
		return model.Payment{}, apperrors.ErrRoundNotReady
	}

	source, err := s.companyRepo.FindAliveReadyPaymentSource(round.CompanyID)
	if err != nil {
		return model.Payment{}, err
	}

	payment, err := s.paymentRepo.GetPaymentByRound(roundID)
	switch {
	case err == nil && payment.GatewayIntentID != "":
		// Already collected or in flight; no second gateway call.
		return payment, nil
	case err == nil:
		// Payment exists but the previous gateway call never completed; retry
		// with the same deterministic idempotency key.
	case errors.Is(err, apperrors.ErrPaymentNotFound):
		payment = model.Payment{
			ID:      uuid.New().String(),
			RoundID: roundID,
			Amount:  round.TotalAmount,
			Status:  model.PaymentInitial,
		}
		if err := s.paymentRepo.InsertPayment(ctx, &payment); err != nil {
			return model.Payment{}, err
		}
	default:
		return model.Payment{}, err
	}

	customerID, err := s.ensureGatewayCustomer(ctx, round.CompanyID)
	if err != nil {
		return model.Payment{}, err
	}

	intent, err := s.gateway.CreateIntent(ctx, gateway.CreateIntentRequest{
		Amount:          round.TotalAmount,
		Currency:        "usd",
		CustomerID:      customerID,
		PaymentMethodID: source.PaymentMethodID,
		MandateID:       source.MandateID,
		Confirm:         true,
		Metadata: map[string]string{
			"round_id":   round.ID,
			"company_id": round.CompanyID,
			"purpose":    "dividend_round_collection",
		},
	}, collectionIdempotencyKey(round.ID))
	if err != nil {
		now := time.Now().UTC()
		if markErr := s.paymentRepo.MarkFailed(ctx, payment.ID, err.Error(), now); markErr != nil {
			log.Printf("failed to mark payment %s failed: %v", payment.ID, markErr)
		}
		s.reporter.Report(err, map[string]string{
			"round_id":   round.ID,
			"company_id": round.CompanyID,
			"payment_id": payment.ID,
		})
		return model.Payment{}, &apperrors.PaymentError{RoundID: round.ID, Message: err.Error()}
	}

	if err := s.paymentRepo.SetIntent(ctx, payment.ID, intent.ID, gateway.LocalStatus(intent.Status)); err != nil {
		return model.Payment{}, err
	}

	return s.paymentRepo.GetPayment(payment.ID)
}

// ProcessWebhook applies one gateway event to local state. Events referencing
// intents outside this domain are a silent no-op, as are unrecognized kinds.
// Every transition is safe to replay with the same event.
func (s *PaymentService) ProcessWebhook(ctx context.Context, event gateway.Event) error {
	if event.Kind == gateway.EventUnhandled {
		return nil
	}

	payment, err := s.paymentRepo.GetPaymentByIntentID(event.Object.ID)
	if errors.Is(err, apperrors.ErrPaymentNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	switch event.Kind {
	case gateway.EventIntentSucceeded:
		return s.finalizeSucceededPayment(ctx, payment.ID, event.Object.Fee)

	case gateway.EventIntentFailed:
		if payment.Status.Terminal() {
			return nil
		}
		reason := event.Object.LastError
		if reason == "" {
			reason = "payment failed"
		}
		if err := s.paymentRepo.MarkFailed(ctx, payment.ID, reason, time.Now().UTC()); err != nil {
			return err
		}
		return s.notifyAdministrators(ctx, payment, reason)

	case gateway.EventIntentCancelled:
		if payment.Status.Terminal() {
			return nil
		}
		return s.paymentRepo.MarkCancelled(ctx, payment.ID, time.Now().UTC())

	case gateway.EventIntentProcessing:
		if payment.Status.Terminal() {
			return nil
		}
		return s.paymentRepo.UpdateStatus(ctx, payment.ID, model.PaymentProcessing)
	}

	return nil
}

// UpdatePaymentStatus re-fetches the authoritative intent state from the
// gateway and reconciles local state. It covers missed webhooks: a refresh
// that discovers success runs the same finalization as the webhook path, so
// the ledger row, round transition and payout enqueue stay single-sourced.
func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, paymentID string) (model.Payment, error) {
	payment, err := s.paymentRepo.GetPayment(paymentID)
	if err != nil {
		return model.Payment{}, err
	}

	if payment.GatewayIntentID == "" {
		// No gateway call has succeeded yet; nothing to reconcile against.
		return payment, nil
	}

	intent, err := s.gateway.GetIntent(ctx, payment.GatewayIntentID)
	if err != nil {
		return model.Payment{}, &apperrors.PaymentError{
			RoundID:  payment.RoundID,
			IntentID: payment.GatewayIntentID,
			Message:  err.Error(),
		}
	}

	status := gateway.LocalStatus(intent.Status)
	if status == payment.Status {
		return payment, nil
	}

	switch status {
	case model.PaymentSucceeded:
		if err := s.finalizeSucceededPayment(ctx, payment.ID, intent.Fee); err != nil {
			return model.Payment{}, err
		}
	case model.PaymentFailed:
		reason := intent.LastError
		if reason == "" {
			reason = "payment failed"
		}
		if err := s.paymentRepo.MarkFailed(ctx, payment.ID, reason, time.Now().UTC()); err != nil {
			return model.Payment{}, err
		}
	case model.PaymentCancelled:
		if err := s.paymentRepo.MarkCancelled(ctx, payment.ID, time.Now().UTC()); err != nil {
			return model.Payment{}, err
		}
	case model.PaymentInitial, model.PaymentProcessing, model.PaymentActionRequired:
		if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, status); err != nil {
			return model.Payment{}, err
		}
	}

	return s.paymentRepo.GetPayment(payment.ID)
}

// GetPayment retrieves a payment by id.
func (s *PaymentService) GetPayment(paymentID string) (model.Payment, error) {
	return s.paymentRepo.GetPayment(paymentID)
}

// RegisterPaymentSource stores a company's ACH debit authorization. New
// sources start alive; the mandate id is encrypted by the repository before
// it reaches the database.
func (s *PaymentService) RegisterPaymentSource(ctx context.Context, companyID, paymentMethodID, mandateID string, ready bool) (model.PaymentSource, error) {
	if _, err := s.companyRepo.GetCompany(companyID); err != nil {
		return model.PaymentSource{}, err
	}

	ps := model.PaymentSource{
		ID:              uuid.NewString(),
		CompanyID:       companyID,
		PaymentMethodID: paymentMethodID,
		MandateID:       mandateID,
		Alive:           true,
		Ready:           ready,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.companyRepo.InsertPaymentSource(ctx, &ps); err != nil {
		return model.PaymentSource{}, err
	}

	return ps, nil
}

// GetBalanceTransactions retrieves a company's collection ledger.
func (s *PaymentService) GetBalanceTransactions(companyID string) ([]model.BalanceTransaction, error) {
	if _, err := s.companyRepo.GetCompany(companyID); err != nil {
		return nil, err
	}
	return s.balanceRepo.ListByCompany(companyID)
}

// finalizeSucceededPayment is the single owner of the succeeded transition:
// mark the payment succeeded, append exactly one balance transaction, mark the
// round paid, then enqueue the payout. The three writes are atomic; replays
// and races between webhook and manual refresh fall out on the
// already-succeeded guard inside the transaction.
func (s *PaymentService) finalizeSucceededPayment(ctx context.Context, paymentID string, fee int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	//nolint:errcheck // Rollback after commit is a no-op
	defer tx.Rollback()

	paymentRepo := s.paymentRepo.WithTx(tx)
	roundRepo := s.roundRepo.WithTx(tx)
	balanceRepo := s.balanceRepo.WithTx(tx)

	payment, err := paymentRepo.GetPayment(paymentID)
	if err != nil {
		return err
	}
	if payment.Status == model.PaymentSucceeded {
		// Replay of an already-applied success: no second ledger row, no
		// second payout enqueue.
		return nil
	}

	now := time.Now().UTC()

	if err := paymentRepo.MarkSucceeded(ctx, payment.ID, fee, now); err != nil {
		return err
	}

	round, err := roundRepo.GetRound(payment.RoundID)
	if err != nil {
		return err
	}

	if err := balanceRepo.Insert(ctx, &model.BalanceTransaction{
		ID:          uuid.New().String(),
		CompanyID:   round.CompanyID,
		PaymentID:   payment.ID,
		Amount:      payment.Amount,
		Description: fmt.Sprintf("Dividend round collection for round %s issued %s", round.ID, round.IssuedAt.Format("2006-01-02")),
	}); err != nil {
		return err
	}

	if err := roundRepo.MarkPaid(ctx, round.ID, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment finalization: %w", err)
	}

	if err := s.payoutQueue.Enqueue(ctx); err != nil {
		// The sweep re-enqueues on its next pass; payout jobs scan for
		// pending work so a late enqueue loses nothing.
		log.Printf("failed to enqueue payout job: %v", err)
	}

	return nil
}

// notifyAdministrators sends the failure notice to every company
// administrator individually, tracked per (administrator, round).
func (s *PaymentService) notifyAdministrators(ctx context.Context, payment model.Payment, reason string) error {
	round, err := s.roundRepo.GetRound(payment.RoundID)
	if err != nil {
		return err
	}

	admins, err := s.companyRepo.GetAdministrators(round.CompanyID)
	if err != nil {
		return err
	}

	for _, admin := range admins {
		created, err := s.notificationRepo.FindOrCreate(ctx, admin.ID, round.ID, model.NotifyPaymentFailed)
		if err != nil {
			return err
		}
		if !created {
			continue
		}
		if err := s.sender.Send(ctx, admin.Email, model.NotifyPaymentFailed, round.ID); err != nil {
			log.Printf("failed to notify administrator %s of payment failure (%s): %v", admin.Email, reason, err)
		}
	}

	return nil
}

// ensureGatewayCustomer fetches the company's gateway customer id, creating
// it on first use.
func (s *PaymentService) ensureGatewayCustomer(ctx context.Context, companyID string) (string, error) {
	company, err := s.companyRepo.GetCompany(companyID)
	if err != nil {
		return "", err
	}
	if company.GatewayCustomerID != "" {
		return company.GatewayCustomerID, nil
	}

	customerID, err := s.gateway.CreateCustomer(ctx, company.ID, company.Name)
	if err != nil {
		return "", &apperrors.PaymentError{RoundID: "", Message: err.Error()}
	}

	if err := s.companyRepo.SetGatewayCustomerID(ctx, companyID, customerID); err != nil {
		return "", err
	}

	return customerID, nil
}

// collectionIdempotencyKey derives a stable gateway idempotency key from the
// round identity, so network-level client retries can never double-charge.
func collectionIdempotencyKey(roundID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("round-collection:"+roundID)).String()
}
