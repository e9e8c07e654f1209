package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
)

// BalanceTransactionRepository owns the append-only collection ledger.
// There are deliberately no update or delete methods.
type BalanceTransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewBalanceTransactionRepository(db *sql.DB) *BalanceTransactionRepository {
	return &BalanceTransactionRepository{db: db}
}

// WithTx returns a new BalanceTransactionRepository scoped to the provided transaction.
func (r *BalanceTransactionRepository) WithTx(tx *sql.Tx) *BalanceTransactionRepository {
	return &BalanceTransactionRepository{db: r.db, tx: tx}
}

func (r *BalanceTransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Insert appends a ledger row.
func (r *BalanceTransactionRepository) Insert(ctx context.Context, bt *model.BalanceTransaction) error {
	query := `
		INSERT INTO balance_transaction (id, company_id, payment_id, amount, description)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query, bt.ID, bt.CompanyID, bt.PaymentID, bt.Amount, bt.Description)
	if err != nil {
		return fmt.Errorf("failed to insert balance transaction: %w", err)
	}

	return nil
}

// ListByCompany retrieves a company's ledger rows, newest first.
func (r *BalanceTransactionRepository) ListByCompany(companyID string) ([]model.BalanceTransaction, error) {
	query := `
		SELECT id, company_id, payment_id, amount, description, created_at
		FROM balance_transaction
		WHERE company_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.getQuerier().Query(query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance_transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.BalanceTransaction{}
	for rows.Next() {
		var bt model.BalanceTransaction
		var createdAtStr string

		err := rows.Scan(&bt.ID, &bt.CompanyID, &bt.PaymentID, &bt.Amount, &bt.Description, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance transaction: %w", err)
		}

		bt.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		transactions = append(transactions, bt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance_transaction table: %w", err)
	}

	return transactions, nil
}

// CountByPayment returns how many ledger rows reference a payment. Used by
// idempotency tests; in correct operation the answer is zero or one.
func (r *BalanceTransactionRepository) CountByPayment(paymentID string) (int, error) {
	var count int
	err := r.getQuerier().QueryRow(
		`SELECT COUNT(*) FROM balance_transaction WHERE payment_id = ?`, paymentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count balance transactions: %w", err)
	}
	return count, nil
}
