package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
)

type RoundRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRoundRepository(db *sql.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

// WithTx returns a new RoundRepository scoped to the provided transaction.
func (r *RoundRepository) WithTx(tx *sql.Tx) *RoundRepository {
	return &RoundRepository{db: r.db, tx: tx}
}

func (r *RoundRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// HasConflictingRound reports whether the company already has a round issued on
// or after the given date. Run inside the creation transaction so the
// check-then-act window is closed by the service's per-company lock plus the
// transaction itself.
func (r *RoundRepository) HasConflictingRound(ctx context.Context, companyID string, issuedAt time.Time) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM round
		WHERE company_id = ? AND issued_at >= ?
	`

	var count int
	err := r.getQuerier().QueryRowContext(ctx, query, companyID, issuedAt.Format("2006-01-02")).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check for conflicting rounds: %w", err)
	}

	return count > 0, nil
}

// InsertRound persists a new round.
func (r *RoundRepository) InsertRound(ctx context.Context, round *model.Round) error {
	query := `
		INSERT INTO round (id, company_id, issued_at, total_amount, number_of_shares,
			number_of_shareholders, status, ready_for_payment, return_of_capital, paid_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		round.ID,
		round.CompanyID,
		round.IssuedAt.Format("2006-01-02"),
		round.TotalAmount,
		round.NumberOfShares,
		round.NumberOfShareholders,
		string(round.Status),
		round.ReadyForPayment,
		round.ReturnOfCapital,
		nullTimeArg(round.PaidAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert round: %w", err)
	}

	return nil
}

// GetRound retrieves a single round by its ID.
// Returns ErrRoundNotFound if no record with the given ID exists.
func (r *RoundRepository) GetRound(roundID string) (model.Round, error) {
	query := `
		SELECT id, company_id, issued_at, total_amount, number_of_shares,
			number_of_shareholders, status, ready_for_payment, return_of_capital, paid_at, created_at
		FROM round
		WHERE id = ?
	`

	return r.scanRound(r.getQuerier().QueryRow(query, roundID))
}

// GetRoundsByCompany retrieves all rounds for a company, newest issuance first.
func (r *RoundRepository) GetRoundsByCompany(companyID string) ([]model.Round, error) {
	query := `
		SELECT id, company_id, issued_at, total_amount, number_of_shares,
			number_of_shareholders, status, ready_for_payment, return_of_capital, paid_at, created_at
		FROM round
		WHERE company_id = ?
		ORDER BY issued_at DESC
	`

	rows, err := r.getQuerier().Query(query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query round table: %w", err)
	}
	defer rows.Close()

	rounds := []model.Round{}
	for rows.Next() {
		round, err := r.scanRoundRow(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating round table: %w", err)
	}

	return rounds, nil
}

// MarkReadyForPayment flips the ready-for-payment flag.
func (r *RoundRepository) MarkReadyForPayment(ctx context.Context, roundID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `UPDATE round SET ready_for_payment = TRUE WHERE id = ?`, roundID)
	if err != nil {
		return fmt.Errorf("failed to mark round ready: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark round ready: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrRoundNotFound
	}

	return nil
}

// MarkPaid transitions the round to paid with the given timestamp.
func (r *RoundRepository) MarkPaid(ctx context.Context, roundID string, paidAt time.Time) error {
	query := `UPDATE round SET status = ?, paid_at = ? WHERE id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query,
		string(model.RoundPaid), paidAt.UTC().Format(time.RFC3339), roundID)
	if err != nil {
		return fmt.Errorf("failed to mark round paid: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark round paid: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrRoundNotFound
	}

	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *RoundRepository) scanRound(row *sql.Row) (model.Round, error) {
	round, err := r.scanRoundRow(row)
	if err == sql.ErrNoRows {
		return model.Round{}, apperrors.ErrRoundNotFound
	}
	return round, err
}

func (r *RoundRepository) scanRoundRow(row rowScanner) (model.Round, error) {
	var round model.Round
	var issuedAtStr, statusStr, createdAtStr string
	var paidAtStr sql.NullString

	err := row.Scan(
		&round.ID,
		&round.CompanyID,
		&issuedAtStr,
		&round.TotalAmount,
		&round.NumberOfShares,
		&round.NumberOfShareholders,
		&statusStr,
		&round.ReadyForPayment,
		&round.ReturnOfCapital,
		&paidAtStr,
		&createdAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Round{}, err
		}
		return model.Round{}, fmt.Errorf("failed to scan round: %w", err)
	}

	round.Status, err = model.ParseRoundStatus(statusStr)
	if err != nil {
		return model.Round{}, fmt.Errorf("%w: %v", apperrors.ErrDataInconsistency, err)
	}

	round.IssuedAt, err = ParseTime(issuedAtStr)
	if err != nil {
		return model.Round{}, fmt.Errorf("failed to parse issued_at: %w", err)
	}

	round.PaidAt, err = parseNullTime(paidAtStr)
	if err != nil {
		return model.Round{}, fmt.Errorf("failed to parse paid_at: %w", err)
	}

	round.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Round{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return round, nil
}
