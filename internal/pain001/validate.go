package pain001

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"treasury/internal/banking"
	"treasury/internal/domain"
	pkgerrors "treasury/pkg/errors"
)

// Validator re-checks every field the outbound message needs. It collects
// all defects instead of failing on the first so the caller gets the
// complete list.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns every defect found on the payment; an empty slice means
// the payment is export-ready.
func (v *Validator) Validate(p *domain.Payment) []pkgerrors.FieldError {
	var errs []pkgerrors.FieldError

	required := []struct {
		field string
		value string
	}{
		{"debtor_iban", p.DebtorIBAN},
		{"beneficiary_iban", p.BeneficiaryIBAN},
		{"beneficiary_bic", p.BeneficiaryBIC},
		{"currency", p.Currency},
		{"end_to_end_id", p.EndToEndID},
		{"execution_date", p.ExecutionDate},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, pkgerrors.FieldError{Field: r.field, Reason: "Required field is missing or empty"})
		}
	}

	for _, iban := range []struct {
		field string
		value string
	}{
		{"debtor_iban", p.DebtorIBAN},
		{"beneficiary_iban", p.BeneficiaryIBAN},
	} {
		if iban.value == "" {
			continue
		}
		if err := banking.ValidateIBAN(iban.value); err != nil {
			errs = append(errs, pkgerrors.FieldError{Field: iban.field, Reason: err.Error()})
		}
	}

	if p.BeneficiaryBIC != "" {
		if err := banking.ValidateBIC(p.BeneficiaryBIC); err != nil {
			errs = append(errs, pkgerrors.FieldError{Field: "beneficiary_bic", Reason: err.Error()})
		}
	}

	if p.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, pkgerrors.FieldError{Field: "amount", Reason: "Amount must be positive"})
	}

	if p.ExecutionDate != "" {
		if _, err := time.Parse("2006-01-02", p.ExecutionDate); err != nil {
			errs = append(errs, pkgerrors.FieldError{Field: "execution_date", Reason: "Must be YYYY-MM-DD format"})
		}
	}

	return errs
}
