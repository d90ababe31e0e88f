package postgres

import (
	"context"
	"database/sql"
	"strings"

	"treasury/internal/domain"
	"treasury/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `
	id, end_to_end_id, maker_user_id, checker_user_id,
	debtor_account_id, debtor_iban,
	beneficiary_name, beneficiary_bic, beneficiary_iban, beneficiary_country,
	amount, currency, execution_date, remittance_info, status,
	approval_signature, approval_public_key_pem, approval_key_fingerprint, approval_timestamp,
	pain001_xml, created_at, updated_at
`

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `
        INSERT INTO payments (
            id, end_to_end_id, maker_user_id, checker_user_id,
            debtor_account_id, debtor_iban,
            beneficiary_name, beneficiary_bic, beneficiary_iban, beneficiary_country,
            amount, currency, execution_date, remittance_info, status,
            approval_signature, approval_public_key_pem, approval_key_fingerprint, approval_timestamp,
            pain001_xml, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
            $16, $17, $18, $19, $20, $21, $22
        )
    `

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.EndToEndID, p.MakerUserID, p.CheckerUserID,
		p.DebtorAccountID, p.DebtorIBAN,
		p.BeneficiaryName, p.BeneficiaryBIC, p.BeneficiaryIBAN, p.BeneficiaryCountry,
		p.Amount, p.Currency, p.ExecutionDate, p.RemittanceInfo, p.Status,
		p.ApprovalSignature, p.ApprovalPublicKeyPEM, p.ApprovalKeyFingerprint, p.ApprovalTimestamp,
		p.Pain001XML, p.CreatedAt, p.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			if strings.Contains(pqErr.Constraint, "end_to_end") || strings.Contains(pqErr.Message, "end_to_end") {
				return errors.ErrDuplicateEndToEnd
			}
		}
		return errors.Wrap(err, "failed to create payment")
	}

	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var p domain.Payment
	query := `SELECT` + paymentColumns + `FROM payments WHERE id = $1`

	err := r.db.GetContext(ctx, &p, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrPaymentNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find payment")
	}

	return &p, nil
}

// UpdateGuarded writes the full mutable state of the payment but only when
// the stored status still equals expected. Zero rows affected means a
// concurrent writer advanced the payment first.
func (r *PaymentRepository) UpdateGuarded(ctx context.Context, p *domain.Payment, expected domain.PaymentStatus) error {
	query := `
		UPDATE payments SET
			checker_user_id = $1, status = $2,
			approval_signature = $3, approval_public_key_pem = $4,
			approval_key_fingerprint = $5, approval_timestamp = $6,
			pain001_xml = $7, updated_at = $8
		WHERE id = $9 AND status = $10
	`

	result, err := r.db.ExecContext(ctx, query,
		p.CheckerUserID, p.Status,
		p.ApprovalSignature, p.ApprovalPublicKeyPEM,
		p.ApprovalKeyFingerprint, p.ApprovalTimestamp,
		p.Pain001XML, p.UpdatedAt,
		p.ID, expected,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update payment")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read rows affected")
	}
	if rows == 0 {
		// Distinguish a lost race from a missing row.
		var exists bool
		if checkErr := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM payments WHERE id = $1)`, p.ID); checkErr != nil {
			return errors.Wrap(checkErr, "failed to check payment existence")
		}
		if !exists {
			return errors.ErrPaymentNotFound
		}
		return errors.ErrStatusConflict
	}

	return nil
}

func (r *PaymentRepository) FindByStatus(ctx context.Context, status domain.PaymentStatus, limit, offset int) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	query := `SELECT` + paymentColumns + `
		FROM payments
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3`

	err := r.db.SelectContext(ctx, &payments, query, status, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find payments by status")
	}

	return payments, nil
}

func (r *PaymentRepository) FindByMaker(ctx context.Context, makerUserID string, limit, offset int) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	query := `SELECT` + paymentColumns + `
		FROM payments
		WHERE maker_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	err := r.db.SelectContext(ctx, &payments, query, makerUserID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find payments by maker")
	}

	return payments, nil
}
