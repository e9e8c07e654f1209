package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
)

type InvestorRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewInvestorRepository(db *sql.DB) *InvestorRepository {
	return &InvestorRepository{db: db}
}

// WithTx returns a new InvestorRepository scoped to the provided transaction.
func (r *InvestorRepository) WithTx(tx *sql.Tx) *InvestorRepository {
	return &InvestorRepository{db: r.db, tx: tx}
}

func (r *InvestorRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const selectInvestor = `
	SELECT id, company_id, name, email, country, onboarded_at, tax_certified,
		minimum_payment_amount, created_at
	FROM investor
`

// GetInvestor retrieves a single investor by its ID.
// Returns ErrInvestorNotFound if no record with the given ID exists.
func (r *InvestorRepository) GetInvestor(investorID string) (model.Investor, error) {
	row := r.getQuerier().QueryRow(selectInvestor+`WHERE id = ?`, investorID)

	inv, err := scanInvestor(row)
	if err == sql.ErrNoRows {
		return model.Investor{}, apperrors.ErrInvestorNotFound
	}
	return inv, err
}

// GetInvestorsByIDs retrieves investors for the given IDs, keyed by ID.
// Missing IDs are simply absent from the result map.
func (r *InvestorRepository) GetInvestorsByIDs(ids []string) (map[string]model.Investor, error) {
	if len(ids) == 0 {
		return make(map[string]model.Investor), nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := selectInvestor + `WHERE id IN (` + strings.Join(placeholders, ",") + `)`

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query investor table: %w", err)
	}
	defer rows.Close()

	investors := make(map[string]model.Investor)
	for rows.Next() {
		inv, err := scanInvestor(rows)
		if err != nil {
			return nil, err
		}
		investors[inv.ID] = inv
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investor table: %w", err)
	}

	return investors, nil
}

// GetEntityHoldings retrieves the underlying positions of a pass-through
// entity, in insertion order so proportional splits are deterministic.
// Returns ErrEntityHoldingNotFound when the entity has no holdings.
func (r *InvestorRepository) GetEntityHoldings(companyID, entityName string) ([]model.EntityHolding, error) {
	query := `
		SELECT id, company_id, entity_name, investor_id, investment_amount, created_at
		FROM entity_holding
		WHERE company_id = ? AND entity_name = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.getQuerier().Query(query, companyID, entityName)
	if err != nil {
		return nil, fmt.Errorf("failed to query entity_holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.EntityHolding{}
	for rows.Next() {
		var h model.EntityHolding
		var createdAtStr string

		err := rows.Scan(&h.ID, &h.CompanyID, &h.EntityName, &h.InvestorID, &h.InvestmentAmount, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity holding: %w", err)
		}

		h.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		holdings = append(holdings, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entity_holding table: %w", err)
	}

	if len(holdings) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrEntityHoldingNotFound, entityName)
	}

	return holdings, nil
}

func scanInvestor(row rowScanner) (model.Investor, error) {
	var inv model.Investor
	var createdAtStr string
	var onboardedAt sql.NullString

	err := row.Scan(
		&inv.ID,
		&inv.CompanyID,
		&inv.Name,
		&inv.Email,
		&inv.Country,
		&onboardedAt,
		&inv.TaxCertified,
		&inv.MinimumPaymentAmount,
		&createdAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Investor{}, err
		}
		return model.Investor{}, fmt.Errorf("failed to scan investor: %w", err)
	}

	inv.OnboardedAt, err = parseNullTime(onboardedAt)
	if err != nil {
		return model.Investor{}, fmt.Errorf("failed to parse onboarded_at: %w", err)
	}

	inv.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Investor{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return inv, nil
}
