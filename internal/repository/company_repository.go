package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/crypto"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
)

// CompanyRepository owns company, administrator and payment-source records.
// Mandate ids on payment sources are encrypted at rest, so the repository
// carries the encryptor and hands the service plaintext.
type CompanyRepository struct {
	db        *sql.DB
	tx        *sql.Tx
	encryptor *crypto.Encryptor
}

func NewCompanyRepository(db *sql.DB, encryptor *crypto.Encryptor) *CompanyRepository {
	return &CompanyRepository{db: db, encryptor: encryptor}
}

// WithTx returns a new CompanyRepository scoped to the provided transaction.
func (r *CompanyRepository) WithTx(tx *sql.Tx) *CompanyRepository {
	return &CompanyRepository{db: r.db, tx: tx, encryptor: r.encryptor}
}

func (r *CompanyRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetCompany retrieves a single company by its ID.
// Returns ErrCompanyNotFound if no record with the given ID exists.
func (r *CompanyRepository) GetCompany(companyID string) (model.Company, error) {
	query := `
		SELECT id, name, gateway_customer_id, created_at
		FROM company
		WHERE id = ?
	`

	var c model.Company
	var customerID sql.NullString
	var createdAtStr string

	err := r.getQuerier().QueryRow(query, companyID).Scan(&c.ID, &c.Name, &customerID, &createdAtStr)
	if err == sql.ErrNoRows {
		return model.Company{}, apperrors.ErrCompanyNotFound
	}
	if err != nil {
		return model.Company{}, fmt.Errorf("failed to scan company: %w", err)
	}

	if customerID.Valid {
		c.GatewayCustomerID = customerID.String
	}

	c.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Company{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return c, nil
}

// SetGatewayCustomerID stores the gateway customer id once it has been created.
func (r *CompanyRepository) SetGatewayCustomerID(ctx context.Context, companyID, customerID string) error {
	result, err := r.getQuerier().ExecContext(ctx,
		`UPDATE company SET gateway_customer_id = ? WHERE id = ?`, customerID, companyID)
	if err != nil {
		return fmt.Errorf("failed to set gateway customer id: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set gateway customer id: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrCompanyNotFound
	}

	return nil
}

// FindAliveReadyPaymentSource returns the company's usable payment source:
// alive and ready, newest first. Both predicates live in this one query so
// callers never recombine them. Returns ErrNoPaymentSource when none exists.
func (r *CompanyRepository) FindAliveReadyPaymentSource(companyID string) (model.PaymentSource, error) {
	query := `
		SELECT id, company_id, payment_method_id, mandate_id, alive, ready, created_at
		FROM payment_source
		WHERE company_id = ? AND alive = TRUE AND ready = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`

	var ps model.PaymentSource
	var encryptedMandate, createdAtStr string

	err := r.getQuerier().QueryRow(query, companyID).Scan(
		&ps.ID,
		&ps.CompanyID,
		&ps.PaymentMethodID,
		&encryptedMandate,
		&ps.Alive,
		&ps.Ready,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.PaymentSource{}, apperrors.ErrNoPaymentSource
	}
	if err != nil {
		return model.PaymentSource{}, fmt.Errorf("failed to scan payment source: %w", err)
	}

	ps.MandateID, err = r.encryptor.Decrypt(encryptedMandate)
	if err != nil {
		return model.PaymentSource{}, fmt.Errorf("%w: failed to decrypt mandate id: %v", apperrors.ErrDataInconsistency, err)
	}

	ps.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.PaymentSource{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return ps, nil
}

// InsertPaymentSource persists a payment source, encrypting the mandate id.
func (r *CompanyRepository) InsertPaymentSource(ctx context.Context, ps *model.PaymentSource) error {
	encryptedMandate, err := r.encryptor.Encrypt(ps.MandateID)
	if err != nil {
		return fmt.Errorf("failed to encrypt mandate id: %w", err)
	}

	query := `
		INSERT INTO payment_source (id, company_id, payment_method_id, mandate_id, alive, ready)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.getQuerier().ExecContext(ctx, query,
		ps.ID, ps.CompanyID, ps.PaymentMethodID, encryptedMandate, ps.Alive, ps.Ready)
	if err != nil {
		return fmt.Errorf("failed to insert payment source: %w", err)
	}

	return nil
}

// GetAdministrators retrieves all administrator contacts for a company.
func (r *CompanyRepository) GetAdministrators(companyID string) ([]model.Administrator, error) {
	query := `
		SELECT id, company_id, name, email, created_at
		FROM administrator
		WHERE company_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.getQuerier().Query(query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query administrator table: %w", err)
	}
	defer rows.Close()

	admins := []model.Administrator{}
	for rows.Next() {
		var a model.Administrator
		var createdAtStr string

		err := rows.Scan(&a.ID, &a.CompanyID, &a.Name, &a.Email, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan administrator: %w", err)
		}

		a.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		admins = append(admins, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating administrator table: %w", err)
	}

	return admins, nil
}
