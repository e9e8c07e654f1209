package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
)

type DividendRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewDividendRepository(db *sql.DB) *DividendRepository {
	return &DividendRepository{db: db}
}

// WithTx returns a new DividendRepository scoped to the provided transaction.
func (r *DividendRepository) WithTx(tx *sql.Tx) *DividendRepository {
	return &DividendRepository{db: r.db, tx: tx}
}

func (r *DividendRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// InsertDividend persists a new dividend row.
func (r *DividendRepository) InsertDividend(ctx context.Context, d *model.Dividend) error {
	query := `
		INSERT INTO dividend (id, round_id, investor_id, total_amount, qualified_amount,
			number_of_shares, status, retained_reason, withholding_percentage, withheld_amount, net_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var reason any
	if d.RetainedReason != nil {
		reason = string(*d.RetainedReason)
	}

	_, err := r.getQuerier().ExecContext(ctx, query,
		d.ID,
		d.RoundID,
		d.InvestorID,
		d.TotalAmount,
		d.QualifiedAmount,
		d.NumberOfShares,
		string(d.Status),
		reason,
		d.WithholdingPercentage,
		d.WithheldAmount,
		d.NetAmount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert dividend: %w", err)
	}

	return nil
}

// UpdateRetention writes the retention outcome for one dividend: status,
// reason and the three withholding fields, which move together.
func (r *DividendRepository) UpdateRetention(ctx context.Context, d *model.Dividend) error {
	query := `
		UPDATE dividend
		SET status = ?, retained_reason = ?, withholding_percentage = ?, withheld_amount = ?, net_amount = ?
		WHERE id = ?
	`

	var reason any
	if d.RetainedReason != nil {
		reason = string(*d.RetainedReason)
	}

	result, err := r.getQuerier().ExecContext(ctx, query,
		string(d.Status),
		reason,
		d.WithholdingPercentage,
		d.WithheldAmount,
		d.NetAmount,
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update dividend retention: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update dividend retention: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrDividendNotFound
	}

	return nil
}

// GetDividendsByRound retrieves all dividends for a round in insertion order.
func (r *DividendRepository) GetDividendsByRound(roundID string) ([]model.Dividend, error) {
	query := `
		SELECT id, round_id, investor_id, total_amount, qualified_amount, number_of_shares,
			status, retained_reason, withholding_percentage, withheld_amount, net_amount, created_at
		FROM dividend
		WHERE round_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.getQuerier().Query(query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend table: %w", err)
	}
	defer rows.Close()

	dividends := []model.Dividend{}
	for rows.Next() {
		d, err := scanDividend(rows)
		if err != nil {
			return nil, err
		}
		dividends = append(dividends, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividend table: %w", err)
	}

	return dividends, nil
}

// CountByRound returns the number of dividend rows in a round.
func (r *DividendRepository) CountByRound(roundID string) (int, error) {
	var count int
	err := r.getQuerier().QueryRow(`SELECT COUNT(*) FROM dividend WHERE round_id = ?`, roundID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count dividends: %w", err)
	}
	return count, nil
}

func scanDividend(row rowScanner) (model.Dividend, error) {
	var d model.Dividend
	var statusStr, createdAtStr string
	var reasonStr sql.NullString
	var pct sql.NullFloat64
	var withheld, net sql.NullInt64

	err := row.Scan(
		&d.ID,
		&d.RoundID,
		&d.InvestorID,
		&d.TotalAmount,
		&d.QualifiedAmount,
		&d.NumberOfShares,
		&statusStr,
		&reasonStr,
		&pct,
		&withheld,
		&net,
		&createdAtStr,
	)
	if err != nil {
		return model.Dividend{}, fmt.Errorf("failed to scan dividend: %w", err)
	}

	d.Status, err = model.ParseDividendStatus(statusStr)
	if err != nil {
		return model.Dividend{}, fmt.Errorf("%w: %v", apperrors.ErrDataInconsistency, err)
	}

	if reasonStr.Valid {
		reason, err := model.ParseRetainedReason(reasonStr.String)
		if err != nil {
			return model.Dividend{}, fmt.Errorf("%w: %v", apperrors.ErrDataInconsistency, err)
		}
		d.RetainedReason = &reason
	}

	if pct.Valid {
		d.WithholdingPercentage = &pct.Float64
	}
	if withheld.Valid {
		d.WithheldAmount = &withheld.Int64
	}
	if net.Valid {
		d.NetAmount = &net.Int64
	}

	d.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Dividend{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return d, nil
}
