// Package domain holds the core treasury types shared across services.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a payment instruction.
type PaymentStatus string

const (
	StatusDraft             PaymentStatus = "DRAFT"
	StatusPendingApproval   PaymentStatus = "PENDING_APPROVAL"
	StatusApproved          PaymentStatus = "APPROVED"
	StatusSanctionsReview   PaymentStatus = "SANCTIONS_REVIEW"
	StatusFundsChecked      PaymentStatus = "FUNDS_CHECKED"
	StatusValidated         PaymentStatus = "VALIDATED"
	StatusExported          PaymentStatus = "EXPORTED"
	StatusSettled           PaymentStatus = "SETTLED"
	StatusRejected          PaymentStatus = "REJECTED"
	StatusFrozen            PaymentStatus = "FROZEN"
	StatusFailedValidation  PaymentStatus = "FAILED_VALIDATION"
	StatusInsufficientFunds PaymentStatus = "INSUFFICIENT_FUNDS"
)

// Terminal reports whether the status has no outgoing transitions.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case StatusSettled, StatusRejected, StatusFrozen, StatusFailedValidation, StatusInsufficientFunds:
		return true
	}
	return false
}

// Payment is an outbound wire-payment instruction under four-eyes control.
// Rows are never deleted; status changes only through the state machine.
type Payment struct {
	ID          uuid.UUID `json:"id" db:"id"`
	EndToEndID  string    `json:"end_to_end_id" db:"end_to_end_id"`
	MakerUserID string    `json:"maker_user_id" db:"maker_user_id"`
	// CheckerUserID is set on approval and must differ from MakerUserID.
	CheckerUserID *string `json:"checker_user_id" db:"checker_user_id"`

	DebtorAccountID uuid.UUID `json:"debtor_account_id" db:"debtor_account_id"`
	DebtorIBAN      string    `json:"debtor_iban" db:"debtor_iban"`

	BeneficiaryName    string `json:"beneficiary_name" db:"beneficiary_name"`
	BeneficiaryBIC     string `json:"beneficiary_bic" db:"beneficiary_bic"`
	BeneficiaryIBAN    string `json:"beneficiary_iban" db:"beneficiary_iban"`
	BeneficiaryCountry string `json:"beneficiary_country" db:"beneficiary_country"`

	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Currency       string          `json:"currency" db:"currency"`
	ExecutionDate  string          `json:"execution_date" db:"execution_date"`
	RemittanceInfo *string         `json:"remittance_info,omitempty" db:"remittance_info"`

	Status PaymentStatus `json:"status" db:"status"`

	ApprovalSignature      *string    `json:"approval_signature,omitempty" db:"approval_signature"`
	ApprovalPublicKeyPEM   *string    `json:"approval_public_key_pem,omitempty" db:"approval_public_key_pem"`
	ApprovalKeyFingerprint *string    `json:"approval_key_fingerprint,omitempty" db:"approval_key_fingerprint"`
	ApprovalTimestamp      *time.Time `json:"approval_timestamp,omitempty" db:"approval_timestamp"`

	Pain001XML *string `json:"-" db:"pain001_xml"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// SanctionsAlert records one watch-list hit for a payment. Write-once.
type SanctionsAlert struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	PaymentID       uuid.UUID       `json:"payment_id" db:"payment_id"`
	MatchedField    string          `json:"matched_field" db:"matched_field"` // name | bic | country
	MatchedValue    string          `json:"matched_value" db:"matched_value"`
	ListEntryName   string          `json:"list_entry_name" db:"list_entry_name"`
	ListType        string          `json:"list_type" db:"list_type"` // SDN | NONSDN
	SimilarityScore decimal.Decimal `json:"similarity_score" db:"similarity_score"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// Audit actions recorded against a payment.
const (
	AuditPaymentInitiated    = "PAYMENT_INITIATED"
	AuditPaymentApproved     = "PAYMENT_APPROVED"
	AuditPaymentRejected     = "PAYMENT_REJECTED"
	AuditPaymentExported     = "PAYMENT_EXPORTED"
	AuditPaymentSettled      = "PAYMENT_SETTLED"
	AuditSelfApprovalAttempt = "SELF_APPROVAL_ATTEMPT"
	AuditSanctionsHit        = "SANCTIONS_HIT"
	AuditInsufficientFunds   = "INSUFFICIENT_FUNDS"
)

// AuditEntry is an append-only record of a state-changing action.
type AuditEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PaymentID uuid.UUID `json:"payment_id" db:"payment_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Details   *string   `json:"details,omitempty" db:"details"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WatchlistEntry is one sanctioned party on a screening list.
type WatchlistEntry struct {
	Name     string `json:"name"`
	BIC      string `json:"bic"`
	Country  string `json:"country"`
	ListType string `json:"list_type"`
}
