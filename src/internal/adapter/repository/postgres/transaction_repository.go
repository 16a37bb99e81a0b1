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

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, transaction_ref, source_account_id, destination_account_id, transaction_type, amount, currency, description, status, created_at`

func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID string, page, size int) ([]domain.Transaction, int64, error) {
	const countQuery = `
SELECT COUNT(*)
FROM transactions
WHERE source_account_id = $1
   OR destination_account_id = $1`

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, accountID).Scan(&total); err != nil {
		logger.Error("transaction repository count failed", err, logger.Fields{
			"accountId": accountID,
		})
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	const query = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE source_account_id = $1
   OR destination_account_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, accountID, size, page*size)
	if err != nil {
		logger.Error("transaction repository list failed", err, logger.Fields{
			"accountId": accountID,
		})
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, size)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}

	return transactions, total, nil
}

func (r *TransactionRepository) GetByRef(ctx context.Context, transactionRef string) (domain.Transaction, error) {
	const query = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE transaction_ref = $1`

	row := r.db.QueryRowContext(ctx, query, transactionRef)
	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, commons.ErrRecordNotFound
		}
		return domain.Transaction{}, err
	}

	return txn, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var (
		txn                  domain.Transaction
		sourceAccountID      sql.NullString
		destinationAccountID sql.NullString
	)

	if err := row.Scan(
		&txn.ID,
		&txn.TransactionRef,
		&sourceAccountID,
		&destinationAccountID,
		&txn.TransactionType,
		&txn.Amount,
		&txn.Currency,
		&txn.Description,
		&txn.Status,
		&txn.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, err
		}
		return domain.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	if sourceAccountID.Valid {
		value := sourceAccountID.String
		txn.SourceAccountID = &value
	}
	if destinationAccountID.Valid {
		value := destinationAccountID.String
		txn.DestinationAccountID = &value
	}

	return txn, nil
}
