package postgres

import (
	"context"
	"database/sql"

	"treasury/internal/domain"
	"treasury/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetAccount(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	var account domain.BankAccount
	query := `
		SELECT id, name, iban, currency, overdraft_limit, created_at
		FROM bank_accounts WHERE id = $1
	`

	err := r.db.GetContext(ctx, &account, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrAccountNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find bank account")
	}

	return &account, nil
}

// GetLatestPosition returns the most recent statement balance for the
// account. Ties on position_date resolve to the most recently ingested row.
func (r *AccountRepository) GetLatestPosition(ctx context.Context, accountID uuid.UUID) (*domain.CashPosition, error) {
	var position domain.CashPosition
	query := `
		SELECT id, account_id, position_date, value_date_balance, currency, created_at
		FROM cash_positions
		WHERE account_id = $1
		ORDER BY position_date DESC, created_at DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &position, query, accountID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrPositionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find cash position")
	}

	return &position, nil
}

func (r *AccountRepository) ListAccounts(ctx context.Context) ([]*domain.BankAccount, error) {
	var accounts []*domain.BankAccount
	query := `
		SELECT id, name, iban, currency, overdraft_limit, created_at
		FROM bank_accounts
		ORDER BY name ASC
	`

	err := r.db.SelectContext(ctx, &accounts, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list bank accounts")
	}

	return accounts, nil
}
