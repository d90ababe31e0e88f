package payment

import (
	"treasury/internal/domain"
	pkgerrors "treasury/pkg/errors"
)

// allowedTransitions is the complete lifecycle table. Statuses absent from
// the map are absorbing: nothing leaves them.
var allowedTransitions = map[domain.PaymentStatus][]domain.PaymentStatus{
	domain.StatusDraft:           {domain.StatusPendingApproval},
	domain.StatusPendingApproval: {domain.StatusApproved, domain.StatusRejected},
	domain.StatusApproved:        {domain.StatusSanctionsReview},
	domain.StatusSanctionsReview: {domain.StatusFundsChecked, domain.StatusFrozen},
	domain.StatusFundsChecked:    {domain.StatusValidated, domain.StatusInsufficientFunds},
	domain.StatusValidated:       {domain.StatusExported, domain.StatusFailedValidation},
	domain.StatusExported:        {domain.StatusSettled},
}

// Advance validates the transition and returns the new status. It is the
// only path to a status change, internal hops included.
func Advance(current, target domain.PaymentStatus) (domain.PaymentStatus, error) {
	for _, allowed := range allowedTransitions[current] {
		if allowed == target {
			return target, nil
		}
	}
	return current, &pkgerrors.InvalidStateTransitionError{
		Current: string(current),
		Target:  string(target),
	}
}

// CanAdvance reports whether current -> target is in the table.
func CanAdvance(current, target domain.PaymentStatus) bool {
	_, err := Advance(current, target)
	return err == nil
}

// Freeze is the compliance override: a sanctions hit freezes the payment
// from any non-terminal status, including DRAFT, where the payment never
// reaches PENDING_APPROVAL.
func Freeze(current domain.PaymentStatus) (domain.PaymentStatus, error) {
	if current.Terminal() {
		return current, &pkgerrors.InvalidStateTransitionError{
			Current: string(current),
			Target:  string(domain.StatusFrozen),
		}
	}
	return domain.StatusFrozen, nil
}
