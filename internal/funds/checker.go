// Package funds checks requested payment amounts against the debtor
// account's latest cash position.
package funds

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"treasury/internal/domain"
	pkgerrors "treasury/pkg/errors"
	"treasury/pkg/logger"
)

// AccountProvider supplies accounts and their statement-derived positions.
// Implemented by the postgres repository; positions come from the external
// ingestion pipeline and are read-only here.
type AccountProvider interface {
	GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.BankAccount, error)
	GetLatestPosition(ctx context.Context, accountID uuid.UUID) (*domain.CashPosition, error)
}

type Checker struct {
	accounts AccountProvider
	logger   logger.Logger
}

func NewChecker(accounts AccountProvider, log logger.Logger) *Checker {
	return &Checker{accounts: accounts, logger: log}
}

// Check fails with InsufficientFundsError when requested exceeds the latest
// value-date balance plus the account's overdraft limit. An amount equal to
// the limit passes. An unknown account skips the check: positions for it are
// not ours to assert.
func (c *Checker) Check(ctx context.Context, accountID uuid.UUID, requested decimal.Decimal) error {
	account, err := c.accounts.GetAccount(ctx, accountID)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.ErrAccountNotFound) {
			c.logger.Warn("Funds check skipped: account unknown", map[string]interface{}{
				"account_id": accountID.String(),
			})
			return nil
		}
		return pkgerrors.Wrap(err, "failed to load debtor account")
	}

	balance := decimal.Zero
	position, err := c.accounts.GetLatestPosition(ctx, accountID)
	switch {
	case err == nil:
		balance = position.ValueDateBalance
	case pkgerrors.Is(err, pkgerrors.ErrPositionNotFound):
		// No statement yet; only the overdraft is available.
	default:
		return pkgerrors.Wrap(err, "failed to load cash position")
	}

	available := balance.Add(account.OverdraftLimit)
	if requested.GreaterThan(available) {
		return &pkgerrors.InsufficientFundsError{Available: available, Requested: requested}
	}
	return nil
}
