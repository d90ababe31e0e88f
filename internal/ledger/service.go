// Package ledger feeds the general-ledger engine through a transactional
// outbox. Events are inserted in the same database as the payment rows and
// drained by a relay, so a payment never settles without its GL event.
package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"treasury/internal/domain"
	pkgerrors "treasury/pkg/errors"
	"treasury/pkg/logger"
)

type Publisher struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewPublisher(db *sqlx.DB, log logger.Logger) *Publisher {
	return &Publisher{db: db, logger: log}
}

// paymentSentPayload is the wire shape the GL engine books against.
type paymentSentPayload struct {
	PaymentID       string `json:"payment_id"`
	EndToEndID      string `json:"end_to_end_id"`
	DebtorAccountID string `json:"debtor_account_id"`
	DebtorIBAN      string `json:"debtor_iban"`
	BeneficiaryIBAN string `json:"beneficiary_iban"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	ExecutionDate   string `json:"execution_date"`
}

// PaymentSent appends a PAYMENT_SENT event to the outbox.
func (p *Publisher) PaymentSent(ctx context.Context, payment *domain.Payment) error {
	payload, err := json.Marshal(paymentSentPayload{
		PaymentID:       payment.ID.String(),
		EndToEndID:      payment.EndToEndID,
		DebtorAccountID: payment.DebtorAccountID.String(),
		DebtorIBAN:      payment.DebtorIBAN,
		BeneficiaryIBAN: payment.BeneficiaryIBAN,
		Amount:          payment.Amount.StringFixed(8),
		Currency:        payment.Currency,
		ExecutionDate:   payment.ExecutionDate,
	})
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal PAYMENT_SENT payload")
	}

	event := &domain.TreasuryEvent{
		ID:        uuid.New(),
		EventType: domain.EventPaymentSent,
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO treasury_events (id, event_type, payment_id, amount, currency, payload, created_at)
		VALUES (:id, :event_type, :payment_id, :amount, :currency, :payload, :created_at)`
	if _, err := p.db.NamedExecContext(ctx, query, event); err != nil {
		return pkgerrors.Wrap(err, "failed to insert treasury event")
	}

	p.logger.Info("Treasury event queued", map[string]interface{}{
		"event_type": event.EventType,
		"payment_id": payment.ID.String(),
		"amount":     payment.Amount.String(),
	})
	return nil
}

// Unpublished returns queued events that no relay has drained yet, oldest
// first.
func (p *Publisher) Unpublished(ctx context.Context, limit int) ([]domain.TreasuryEvent, error) {
	var events []domain.TreasuryEvent
	query := `
		SELECT id, event_type, payment_id, amount, currency, payload, created_at, published_at
		FROM treasury_events
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1`
	if err := p.db.SelectContext(ctx, &events, query, limit); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list unpublished events")
	}
	return events, nil
}

// MarkPublished stamps the event as drained.
func (p *Publisher) MarkPublished(ctx context.Context, eventID uuid.UUID) error {
	result, err := p.db.ExecContext(ctx,
		`UPDATE treasury_events SET published_at = $1 WHERE id = $2 AND published_at IS NULL`,
		time.Now().UTC(), eventID)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to mark event published")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to read rows affected")
	}
	if rows == 0 {
		return pkgerrors.ErrEventNotFound
	}
	return nil
}
