// Seeding tool for local development: creates the operating bank accounts
// and their latest cash positions so payments can pass the funds check.
// Usage (env overrides):
//
//	SEED_ACCOUNT_IBAN=GB29NWBK60161331926819 SEED_BALANCE=5000000
//
// Reads DATABASE_URL and other core config via treasury/pkg/config.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"treasury/pkg/config"
	"treasury/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	log := logger.New("seed-accounts")

	cfg := config.Load()
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required", nil)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	ctx := context.Background()

	// Primary EUR operating account
	eurID := ensureAccount(ctx, db, log,
		getenv("SEED_ACCOUNT_NAME", "Operating EUR"),
		getenv("SEED_ACCOUNT_IBAN", "DE89370400440532013000"),
		"EUR",
		decimal.RequireFromString(getenv("SEED_OVERDRAFT", "100000")),
	)
	ensurePosition(ctx, db, log, eurID, "EUR",
		decimal.RequireFromString(getenv("SEED_BALANCE", "5000000")))

	// Secondary GBP account with a modest balance
	gbpID := ensureAccount(ctx, db, log,
		"Operating GBP",
		"GB29NWBK60161331926819",
		"GBP",
		decimal.NewFromInt(50000),
	)
	ensurePosition(ctx, db, log, gbpID, "GBP", decimal.NewFromInt(750_000))

	fmt.Println("OK: bank accounts and cash positions seeded")
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func ensureAccount(ctx context.Context, db *sqlx.DB, log logger.Logger, name, iban, currency string, overdraft decimal.Decimal) uuid.UUID {
	var id uuid.UUID
	err := db.GetContext(ctx, &id, `SELECT id FROM bank_accounts WHERE iban = $1`, iban)
	if err == nil {
		log.Info("Account exists", map[string]interface{}{"iban": iban})
		return id
	}

	id = uuid.New()
	_, err = db.ExecContext(ctx, `
		INSERT INTO bank_accounts (id, name, iban, currency, overdraft_limit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, name, iban, currency, overdraft, time.Now().UTC())
	if err != nil {
		log.Fatal("Failed to insert bank account", map[string]interface{}{"error": err.Error()})
	}
	log.Info("Account created", map[string]interface{}{"iban": iban, "currency": currency})
	return id
}

func ensurePosition(ctx context.Context, db *sqlx.DB, log logger.Logger, accountID uuid.UUID, currency string, balance decimal.Decimal) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	var exists bool
	err := db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM cash_positions WHERE account_id = $1 AND position_date = $2)`,
		accountID, today)
	if err != nil {
		log.Fatal("Failed to check cash position", map[string]interface{}{"error": err.Error()})
	}
	if exists {
		log.Info("Position exists", map[string]interface{}{"account_id": accountID.String()})
		return
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO cash_positions (id, account_id, position_date, value_date_balance, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), accountID, today, balance, currency, time.Now().UTC())
	if err != nil {
		log.Fatal("Failed to insert cash position", map[string]interface{}{"error": err.Error()})
	}
	log.Info("Position created", map[string]interface{}{
		"account_id": accountID.String(),
		"balance":    balance.String(),
	})
}
