package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/commons"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/logger"
)

// LedgerRepository commits balance mutations and their transaction rows in
// a single database transaction. Account and loan rows carry a version
// column that is compared against the snapshot the service read and
// advanced on every write.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) PostDeposit(ctx context.Context, account domain.Account, txn domain.Transaction) (domain.Account, domain.Transaction, error) {
	logger.Info("ledger repository post deposit", logger.Fields{
		"accountId":      account.ID,
		"transactionRef": txn.TransactionRef,
		"amount":         txn.Amount,
	})

	err := r.withinTx(ctx, func(tx *sql.Tx) error {
		if err := casUpdateAccount(ctx, tx, &account); err != nil {
			return err
		}
		return insertTransaction(ctx, tx, &txn)
	})
	if err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}

	return account, txn, nil
}

func (r *LedgerRepository) PostWithdrawal(ctx context.Context, account domain.Account, txn domain.Transaction) (domain.Account, domain.Transaction, error) {
	logger.Info("ledger repository post withdrawal", logger.Fields{
		"accountId":      account.ID,
		"transactionRef": txn.TransactionRef,
		"amount":         txn.Amount,
	})

	err := r.withinTx(ctx, func(tx *sql.Tx) error {
		if err := casUpdateAccount(ctx, tx, &account); err != nil {
			return err
		}
		return insertTransaction(ctx, tx, &txn)
	})
	if err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}

	return account, txn, nil
}

func (r *LedgerRepository) PostTransfer(ctx context.Context, source, destination domain.Account, txn domain.Transaction) (domain.Account, domain.Account, domain.Transaction, error) {
	logger.Info("ledger repository post transfer", logger.Fields{
		"sourceAccountId":      source.ID,
		"destinationAccountId": destination.ID,
		"transactionRef":       txn.TransactionRef,
		"amount":               txn.Amount,
	})

	err := r.withinTx(ctx, func(tx *sql.Tx) error {
		// Update rows in ascending account-ID order regardless of
		// direction so concurrent transfers sharing an account cannot
		// deadlock.
		first, second := &source, &destination
		if second.ID < first.ID {
			first, second = second, first
		}

		if err := casUpdateAccount(ctx, tx, first); err != nil {
			return err
		}
		if err := casUpdateAccount(ctx, tx, second); err != nil {
			return err
		}
		return insertTransaction(ctx, tx, &txn)
	})
	if err != nil {
		return domain.Account{}, domain.Account{}, domain.Transaction{}, err
	}

	return source, destination, txn, nil
}

func (r *LedgerRepository) PostLoanDisbursement(ctx context.Context, loan domain.Loan, account domain.Account, txn domain.Transaction) (domain.Loan, domain.Account, domain.Transaction, error) {
	logger.Info("ledger repository post loan disbursement", logger.Fields{
		"loanId":         loan.ID,
		"loanNumber":     loan.LoanNumber,
		"accountId":      account.ID,
		"transactionRef": txn.TransactionRef,
	})

	err := r.withinTx(ctx, func(tx *sql.Tx) error {
		if err := casUpdateAccount(ctx, tx, &account); err != nil {
			return err
		}
		if err := casUpdateLoan(ctx, tx, &loan); err != nil {
			return err
		}
		return insertTransaction(ctx, tx, &txn)
	})
	if err != nil {
		return domain.Loan{}, domain.Account{}, domain.Transaction{}, err
	}

	return loan, account, txn, nil
}

func (r *LedgerRepository) withinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger repository begin tx failed", err, nil)
		return fmt.Errorf("begin ledger transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("ledger repository commit tx failed", err, nil)
		return fmt.Errorf("commit ledger transaction: %w", err)
	}

	return nil
}

// casUpdateAccount writes the account balance guarded by the version the
// service read. Zero rows means the row vanished or someone else committed
// first; the two cases are told apart with a follow-up existence check
// inside the same database transaction.
func casUpdateAccount(ctx context.Context, tx *sql.Tx, account *domain.Account) error {
	const query = `
UPDATE accounts
SET balance = $2,
    version = version + 1,
    updated_at = $3
WHERE id = $1
  AND version = $4
RETURNING version`

	err := tx.QueryRowContext(ctx, query, account.ID, account.Balance, account.UpdatedAt, account.Version).
		Scan(&account.Version)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("update account balance: %w", err)
	}

	return classifyMissingRow(ctx, tx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, account.ID)
}

func casUpdateLoan(ctx context.Context, tx *sql.Tx, loan *domain.Loan) error {
	const query = `
UPDATE loans
SET interest_rate = $2,
    monthly_payment = $3,
    outstanding_balance = $4,
    status = $5,
    approval_date = $6,
    approved_by = $7,
    disbursement_date = $8,
    maturity_date = $9,
    rejection_reason = $10,
    version = version + 1,
    updated_at = $11
WHERE id = $1
  AND version = $12
RETURNING version`

	err := tx.QueryRowContext(
		ctx,
		query,
		loan.ID,
		loan.InterestRate,
		loan.MonthlyPayment,
		loan.OutstandingBalance,
		loan.Status,
		loan.ApprovalDate,
		loan.ApprovedBy,
		loan.DisbursementDate,
		loan.MaturityDate,
		loan.RejectionReason,
		loan.UpdatedAt,
		loan.Version,
	).Scan(&loan.Version)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("update loan: %w", err)
	}

	return classifyMissingRow(ctx, tx, `SELECT EXISTS (SELECT 1 FROM loans WHERE id = $1)`, loan.ID)
}

func insertTransaction(ctx context.Context, tx *sql.Tx, txn *domain.Transaction) error {
	const query = `
INSERT INTO transactions (
	transaction_ref,
	source_account_id,
	destination_account_id,
	transaction_type,
	amount,
	currency,
	description,
	status,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`

	if err := tx.QueryRowContext(
		ctx,
		query,
		txn.TransactionRef,
		txn.SourceAccountID,
		txn.DestinationAccountID,
		txn.TransactionType,
		txn.Amount,
		txn.Currency,
		txn.Description,
		txn.Status,
		txn.CreatedAt,
	).Scan(&txn.ID); err != nil {
		return fmt.Errorf("insert transaction: %w", translateError(err))
	}

	return nil
}

func classifyMissingRow(ctx context.Context, tx *sql.Tx, existsQuery, id string) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, existsQuery, id).Scan(&exists); err != nil {
		return fmt.Errorf("classify missing row: %w", err)
	}
	if exists {
		return commons.ErrConflict
	}
	return commons.ErrRecordNotFound
}
