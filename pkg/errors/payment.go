package errors

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// DomainError is implemented by every payment-lifecycle error. Each error
// carries a machine-readable code and a structured detail payload so the API
// boundary can map it to a status code without parsing messages.
type DomainError interface {
	error
	Code() string
	Detail() map[string]interface{}
	HTTPStatus() int
}

// InvalidIBANError reports an IBAN that failed format or checksum validation.
type InvalidIBANError struct {
	Field  string
	IBAN   string
	Reason string
}

func (e *InvalidIBANError) Error() string {
	return fmt.Sprintf("invalid IBAN %q in %s: %s", e.IBAN, e.Field, e.Reason)
}
func (e *InvalidIBANError) Code() string    { return "INVALID_IBAN" }
func (e *InvalidIBANError) HTTPStatus() int { return http.StatusUnprocessableEntity }
func (e *InvalidIBANError) Detail() map[string]interface{} {
	return map[string]interface{}{"field": e.Field, "iban": e.IBAN, "reason": e.Reason}
}

// InvalidBICError reports a BIC that does not match the SWIFT format.
type InvalidBICError struct {
	BIC    string
	Reason string
}

func (e *InvalidBICError) Error() string {
	return fmt.Sprintf("invalid BIC %q: %s", e.BIC, e.Reason)
}
func (e *InvalidBICError) Code() string    { return "INVALID_BIC" }
func (e *InvalidBICError) HTTPStatus() int { return http.StatusUnprocessableEntity }
func (e *InvalidBICError) Detail() map[string]interface{} {
	return map[string]interface{}{"bic": e.BIC, "reason": e.Reason}
}

// InsufficientFundsError reports a requested amount exceeding the available
// balance plus overdraft.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available=%s, requested=%s",
		e.Available.String(), e.Requested.String())
}
func (e *InsufficientFundsError) Code() string    { return "INSUFFICIENT_FUNDS" }
func (e *InsufficientFundsError) HTTPStatus() int { return http.StatusUnprocessableEntity }
func (e *InsufficientFundsError) Detail() map[string]interface{} {
	return map[string]interface{}{
		"available": e.Available.String(),
		"requested": e.Requested.String(),
		"shortfall": e.Requested.Sub(e.Available).String(),
	}
}

// SanctionsHitError reports a watch-list match. The payment is frozen before
// this error is returned.
type SanctionsHitError struct {
	PaymentID       string
	MatchedField    string
	MatchedValue    string
	ListEntryName   string
	ListType        string
	SimilarityScore float64
}

func (e *SanctionsHitError) Error() string {
	return fmt.Sprintf("sanctions hit: %s=%q matches %q",
		e.MatchedField, e.MatchedValue, e.ListEntryName)
}
func (e *SanctionsHitError) Code() string    { return "SANCTIONS_HIT" }
func (e *SanctionsHitError) HTTPStatus() int { return http.StatusForbidden }
func (e *SanctionsHitError) Detail() map[string]interface{} {
	return map[string]interface{}{
		"payment_id":       e.PaymentID,
		"matched_field":    e.MatchedField,
		"matched_value":    e.MatchedValue,
		"list_entry_name":  e.ListEntryName,
		"list_type":        e.ListType,
		"similarity_score": e.SimilarityScore,
	}
}

// SelfApprovalError reports a checker attempting to approve their own payment.
type SelfApprovalError struct {
	UserID string
}

func (e *SelfApprovalError) Error() string {
	return fmt.Sprintf("self-approval not permitted for user %q", e.UserID)
}
func (e *SelfApprovalError) Code() string    { return "SELF_APPROVAL_FORBIDDEN" }
func (e *SelfApprovalError) HTTPStatus() int { return http.StatusForbidden }
func (e *SelfApprovalError) Detail() map[string]interface{} {
	return map[string]interface{}{"user_id": e.UserID}
}

// InvalidStateTransitionError reports a transition outside the allowed table.
type InvalidStateTransitionError struct {
	Current string
	Target  string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %q to %q", e.Current, e.Target)
}
func (e *InvalidStateTransitionError) Code() string    { return "INVALID_STATE_TRANSITION" }
func (e *InvalidStateTransitionError) HTTPStatus() int { return http.StatusUnprocessableEntity }
func (e *InvalidStateTransitionError) Detail() map[string]interface{} {
	return map[string]interface{}{"current_state": e.Current, "target_state": e.Target}
}

// FieldError is a single validation defect on a named field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"error"`
}

// PaymentValidationError aggregates every defect found during pre-export
// validation. Callers receive the complete list, not just the first.
type PaymentValidationError struct {
	Errors []FieldError
}

func (e *PaymentValidationError) Error() string {
	return fmt.Sprintf("payment validation failed with %d error(s)", len(e.Errors))
}
func (e *PaymentValidationError) Code() string    { return "PAYMENT_VALIDATION_ERROR" }
func (e *PaymentValidationError) HTTPStatus() int { return http.StatusUnprocessableEntity }
func (e *PaymentValidationError) Detail() map[string]interface{} {
	return map[string]interface{}{"validation_errors": e.Errors}
}

// InvalidSignatureError reports an approval signature that failed
// verification. It never says which part of the payload mismatched.
type InvalidSignatureError struct {
	PaymentID string
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("signature verification failed for payment %s", e.PaymentID)
}
func (e *InvalidSignatureError) Code() string    { return "INVALID_SIGNATURE" }
func (e *InvalidSignatureError) HTTPStatus() int { return http.StatusUnauthorized }
func (e *InvalidSignatureError) Detail() map[string]interface{} {
	return map[string]interface{}{"payment_id": e.PaymentID}
}

// PaymentNotFoundError reports an unknown payment id.
type PaymentNotFoundError struct {
	PaymentID string
}

func (e *PaymentNotFoundError) Error() string {
	return fmt.Sprintf("payment %s not found", e.PaymentID)
}
func (e *PaymentNotFoundError) Code() string    { return "PAYMENT_NOT_FOUND" }
func (e *PaymentNotFoundError) HTTPStatus() int { return http.StatusNotFound }
func (e *PaymentNotFoundError) Detail() map[string]interface{} {
	return map[string]interface{}{"payment_id": e.PaymentID}
}
