package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
)

type PaymentRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx returns a new PaymentRepository scoped to the provided transaction.
func (r *PaymentRepository) WithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{db: r.db, tx: tx}
}

func (r *PaymentRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// InsertPayment persists a new payment in initial status. The unique
// constraint on round_id is the storage-level guard against duplicate
// payments for one round.
func (r *PaymentRepository) InsertPayment(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payment (id, round_id, amount, status)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query, p.ID, p.RoundID, p.Amount, string(p.Status))
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// GetPayment retrieves a payment by its ID.
// Returns ErrPaymentNotFound if no record with the given ID exists.
func (r *PaymentRepository) GetPayment(paymentID string) (model.Payment, error) {
	return r.getOne(`WHERE id = ?`, paymentID)
}

// GetPaymentByRound retrieves the payment for a round, if any.
// Returns ErrPaymentNotFound when the round has no payment yet.
func (r *PaymentRepository) GetPaymentByRound(roundID string) (model.Payment, error) {
	return r.getOne(`WHERE round_id = ?`, roundID)
}

// GetPaymentByIntentID retrieves a payment by its gateway intent id.
// Returns ErrPaymentNotFound when the intent is not ours.
func (r *PaymentRepository) GetPaymentByIntentID(intentID string) (model.Payment, error) {
	return r.getOne(`WHERE gateway_intent_id = ?`, intentID)
}

// SetIntent stores the gateway intent id and the mapped status after intent
// creation. The unique constraint on gateway_intent_id guards duplicates.
func (r *PaymentRepository) SetIntent(ctx context.Context, paymentID, intentID string, status model.PaymentStatus) error {
	query := `UPDATE payment SET gateway_intent_id = ?, status = ? WHERE id = ?`

	return r.exec(ctx, query, intentID, string(status), paymentID)
}

// MarkSucceeded transitions the payment to succeeded with timestamp and fee.
func (r *PaymentRepository) MarkSucceeded(ctx context.Context, paymentID string, fee int64, at time.Time) error {
	query := `UPDATE payment SET status = ?, fee = ?, succeeded_at = ? WHERE id = ?`

	return r.exec(ctx, query, string(model.PaymentSucceeded), fee, at.UTC().Format(time.RFC3339), paymentID)
}

// MarkFailed transitions the payment to failed with timestamp and reason.
func (r *PaymentRepository) MarkFailed(ctx context.Context, paymentID, reason string, at time.Time) error {
	query := `UPDATE payment SET status = ?, failure_reason = ?, failed_at = ? WHERE id = ?`

	return r.exec(ctx, query, string(model.PaymentFailed), reason, at.UTC().Format(time.RFC3339), paymentID)
}

// MarkCancelled transitions the payment to cancelled with timestamp.
func (r *PaymentRepository) MarkCancelled(ctx context.Context, paymentID string, at time.Time) error {
	query := `UPDATE payment SET status = ?, cancelled_at = ? WHERE id = ?`

	return r.exec(ctx, query, string(model.PaymentCancelled), at.UTC().Format(time.RFC3339), paymentID)
}

// UpdateStatus writes a bare status change, used for processing and
// action_required transitions that carry no other fields.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, paymentID string, status model.PaymentStatus) error {
	return r.exec(ctx, `UPDATE payment SET status = ? WHERE id = ?`, string(status), paymentID)
}

// FindStale returns payments sitting in a non-terminal post-gateway state
// (processing or action_required) created before the cutoff. The
// reconciliation sweep refreshes these against the gateway.
func (r *PaymentRepository) FindStale(cutoff time.Time) ([]model.Payment, error) {
	query := selectPayment + `
		WHERE status IN (?, ?) AND created_at < ?
		ORDER BY created_at ASC
	`

	rows, err := r.getQuerier().Query(query,
		string(model.PaymentProcessing),
		string(model.PaymentActionRequired),
		cutoff.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment table: %w", err)
	}
	defer rows.Close()

	payments := []model.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment table: %w", err)
	}

	return payments, nil
}

const selectPayment = `
	SELECT id, round_id, amount, fee, status, gateway_intent_id, failure_reason,
		succeeded_at, failed_at, cancelled_at, created_at
	FROM payment
`

func (r *PaymentRepository) getOne(where string, arg any) (model.Payment, error) {
	row := r.getQuerier().QueryRow(selectPayment+where, arg)

	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return model.Payment{}, apperrors.ErrPaymentNotFound
	}
	return p, err
}

func (r *PaymentRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.getQuerier().ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrPaymentNotFound
	}

	return nil
}

func scanPayment(row rowScanner) (model.Payment, error) {
	var p model.Payment
	var statusStr, createdAtStr string
	var fee sql.NullInt64
	var intentID, failureReason, succeededAt, failedAt, cancelledAt sql.NullString

	err := row.Scan(
		&p.ID,
		&p.RoundID,
		&p.Amount,
		&fee,
		&statusStr,
		&intentID,
		&failureReason,
		&succeededAt,
		&failedAt,
		&cancelledAt,
		&createdAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Payment{}, err
		}
		return model.Payment{}, fmt.Errorf("failed to scan payment: %w", err)
	}

	p.Status, err = model.ParsePaymentStatus(statusStr)
	if err != nil {
		return model.Payment{}, fmt.Errorf("%w: %v", apperrors.ErrDataInconsistency, err)
	}

	if fee.Valid {
		p.Fee = &fee.Int64
	}
	if intentID.Valid {
		p.GatewayIntentID = intentID.String
	}
	if failureReason.Valid {
		p.FailureReason = failureReason.String
	}

	if p.SucceededAt, err = parseNullTime(succeededAt); err != nil {
		return model.Payment{}, fmt.Errorf("failed to parse succeeded_at: %w", err)
	}
	if p.FailedAt, err = parseNullTime(failedAt); err != nil {
		return model.Payment{}, fmt.Errorf("failed to parse failed_at: %w", err)
	}
	if p.CancelledAt, err = parseNullTime(cancelledAt); err != nil {
		return model.Payment{}, fmt.Errorf("failed to parse cancelled_at: %w", err)
	}

	p.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Payment{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return p, nil
}
