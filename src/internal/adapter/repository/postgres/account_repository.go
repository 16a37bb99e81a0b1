package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/commons"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/logger"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, account_number, customer_id, account_type, balance, currency, status, version, created_at, updated_at`

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account repository create", logger.Fields{
		"customerId":    account.CustomerID,
		"accountNumber": account.AccountNumber,
		"accountType":   account.AccountType,
	})

	const query = `
INSERT INTO accounts (
	account_number,
	customer_id,
	account_type,
	balance,
	currency,
	status,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, version`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		account.AccountNumber,
		account.CustomerID,
		account.AccountType,
		account.Balance,
		account.Currency,
		account.Status,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.ID, &account.Version); err != nil {
		logger.Error("account repository create failed", err, logger.Fields{
			"accountNumber": account.AccountNumber,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", translateError(err))
	}

	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	const query = `
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1`

	return r.getOne(ctx, query, id)
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	const query = `
SELECT ` + accountColumns + `
FROM accounts
WHERE account_number = $1`

	return r.getOne(ctx, query, accountNumber)
}

func (r *AccountRepository) ListByCustomerID(ctx context.Context, customerID string) ([]domain.Account, error) {
	const query = `
SELECT ` + accountColumns + `
FROM accounts
WHERE customer_id = $1
ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		logger.Error("account repository list failed", err, logger.Fields{
			"customerId": customerID,
		})
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) getOne(ctx context.Context, query string, arg string) (domain.Account, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, commons.ErrRecordNotFound
		}
		logger.Error("account repository get failed", err, logger.Fields{
			"lookup": arg,
		})
		return domain.Account{}, err
	}

	return account, nil
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.AccountNumber,
		&account.CustomerID,
		&account.AccountType,
		&account.Balance,
		&account.Currency,
		&account.Status,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, err
		}
		return domain.Account{}, fmt.Errorf("scan account: %w", err)
	}

	return account, nil
}
