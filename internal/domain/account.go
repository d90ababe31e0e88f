package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccount is a debtor-side account this treasury can pay from.
type BankAccount struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	IBAN           string          `json:"iban" db:"iban"`
	Currency       string          `json:"currency" db:"currency"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit" db:"overdraft_limit"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// CashPosition is one statement-derived balance snapshot for an account.
// Produced by the ingestion pipeline; read-only here.
type CashPosition struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	AccountID        uuid.UUID       `json:"account_id" db:"account_id"`
	PositionDate     time.Time       `json:"position_date" db:"position_date"`
	ValueDateBalance decimal.Decimal `json:"value_date_balance" db:"value_date_balance"`
	Currency         string          `json:"currency" db:"currency"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// Treasury event types consumed by the GL engine.
const (
	EventPaymentSent = "PAYMENT_SENT"
)

// TreasuryEvent is an outbox row for downstream consumers (GL engine).
type TreasuryEvent struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	EventType   string          `json:"event_type" db:"event_type"`
	PaymentID   uuid.UUID       `json:"payment_id" db:"payment_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Currency    string          `json:"currency" db:"currency"`
	Payload     []byte          `json:"payload" db:"payload"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty" db:"published_at"`
}
