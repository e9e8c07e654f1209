package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/crypto"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/gateway"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/repository"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/service"
)

// DefaultSanctionedCountries is the retention set used by test services.
var DefaultSanctionedCountries = map[string]bool{
	"CU": true, "IR": true, "KP": true, "SY": true,
}

// DefaultBackupRate is the withholding percentage applied by test services to
// investors without a tax certification.
const DefaultBackupRate = 24.0

// NewTestEncryptor creates a mandate encryptor with a fresh throwaway key.
func NewTestEncryptor(t *testing.T) *crypto.Encryptor {
	t.Helper()

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate test key: %v", err)
	}

	encryptor, err := crypto.NewEncryptor(key)
	if err != nil {
		t.Fatalf("Failed to create test encryptor: %v", err)
	}

	return encryptor
}

// NewTestRoundService creates a RoundService wired to the given database with
// the default retention configuration and a recording notification sender.
func NewTestRoundService(t *testing.T, db *sql.DB) (*service.RoundService, *RecordingSender) {
	t.Helper()

	calculator := service.NewBackupWithholdingCalculator(DefaultBackupRate)
	evaluator := service.NewRetentionEvaluator(calculator, DefaultSanctionedCountries)
	sender := &RecordingSender{}

	roundService := service.NewRoundService(
		db,
		repository.NewRoundRepository(db),
		repository.NewDividendRepository(db),
		repository.NewInvestorRepository(db),
		repository.NewNotificationRepository(db),
		evaluator,
		sender,
	)

	return roundService, sender
}

// NewTestPaymentService creates a PaymentService wired to the given database
// and mock gateway, along with the recording collaborators the tests assert
// against. The encryptor must be the one used to store payment source rows.
func NewTestPaymentService(t *testing.T, db *sql.DB, gatewayClient gateway.Client, encryptor *crypto.Encryptor) (*service.PaymentService, *RecordingPayoutQueue, *RecordingSender) {
	t.Helper()

	queue := &RecordingPayoutQueue{}
	sender := &RecordingSender{}

	paymentService := service.NewPaymentService(
		db,
		repository.NewPaymentRepository(db),
		repository.NewRoundRepository(db),
		repository.NewCompanyRepository(db, encryptor),
		repository.NewBalanceTransactionRepository(db),
		repository.NewNotificationRepository(db),
		gatewayClient,
		queue,
		service.LogReporter{},
		sender,
	)

	return paymentService, queue, sender
}

// MakeID generates a unique UUID for testing.
func MakeID() string {
	return uuid.New().String()
}

// SentNotice records one delivered notification.
type SentNotice struct {
	RecipientEmail string
	Kind           model.NotificationKind
	RoundID        string
}

// RecordingSender captures notifications instead of delivering them.
type RecordingSender struct {
	Sent []SentNotice
	Err  error
}

// Send records the notice and returns the configured error, if any.
func (s *RecordingSender) Send(_ context.Context, recipientEmail string, kind model.NotificationKind, roundID string) error {
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, SentNotice{
		RecipientEmail: recipientEmail,
		Kind:           kind,
		RoundID:        roundID,
	})
	return nil
}

// Kinds returns the kinds of all recorded notices, in send order.
func (s *RecordingSender) Kinds() []model.NotificationKind {
	kinds := make([]model.NotificationKind, 0, len(s.Sent))
	for _, n := range s.Sent {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

// RecordingPayoutQueue counts payout enqueues instead of scheduling jobs.
type RecordingPayoutQueue struct {
	Enqueued int
	Err      error
}

// Enqueue records the call and returns the configured error, if any.
func (q *RecordingPayoutQueue) Enqueue(context.Context) error {
	if q.Err != nil {
		return q.Err
	}
	q.Enqueued++
	return nil
}
