package postgres

import (
	"context"

	"treasury/internal/domain"
	"treasury/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
        INSERT INTO payment_audit_log (id, payment_id, user_id, action, details, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.PaymentID, entry.UserID, entry.Action, entry.Details, entry.CreatedAt,
	)
	return errors.Wrap(err, "failed to record audit entry")
}

func (r *AuditRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*domain.AuditEntry, error) {
	var entries []*domain.AuditEntry
	query := `
		SELECT id, payment_id, user_id, action, details, created_at
		FROM payment_audit_log
		WHERE payment_id = $1
		ORDER BY created_at ASC
	`

	err := r.db.SelectContext(ctx, &entries, query, paymentID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find audit entries")
	}

	return entries, nil
}

func (r *AuditRepository) CreateAlert(ctx context.Context, alert *domain.SanctionsAlert) error {
	query := `
        INSERT INTO sanctions_alerts (
            id, payment_id, matched_field, matched_value,
            list_entry_name, list_type, similarity_score, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	_, err := r.db.ExecContext(ctx, query,
		alert.ID, alert.PaymentID, alert.MatchedField, alert.MatchedValue,
		alert.ListEntryName, alert.ListType, alert.SimilarityScore, alert.CreatedAt,
	)
	return errors.Wrap(err, "failed to create sanctions alert")
}

func (r *AuditRepository) FindAlertsByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*domain.SanctionsAlert, error) {
	var alerts []*domain.SanctionsAlert
	query := `
		SELECT id, payment_id, matched_field, matched_value,
			list_entry_name, list_type, similarity_score, created_at
		FROM sanctions_alerts
		WHERE payment_id = $1
		ORDER BY created_at ASC
	`

	err := r.db.SelectContext(ctx, &alerts, query, paymentID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find sanctions alerts")
	}

	return alerts, nil
}
