package repo_interfaces

import (
	"context"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
)

// LedgerRepository owns every balance-affecting write. Each method runs as
// one atomic unit of work: the account rows are compared-and-swapped against
// the Version the caller read, and exactly one transaction row is inserted.
// A stale version surfaces as commons.ErrConflict; a duplicate transaction
// reference as commons.ErrDuplicateKey. On any error nothing is persisted.
type LedgerRepository interface {
	// PostDeposit writes the credited account (balance and version already
	// advanced by the caller from the read snapshot) plus its transaction.
	PostDeposit(ctx context.Context, account domain.Account, txn domain.Transaction) (domain.Account, domain.Transaction, error)

	PostWithdrawal(ctx context.Context, account domain.Account, txn domain.Transaction) (domain.Account, domain.Transaction, error)

	// PostTransfer commits the source debit and destination credit together.
	// Implementations must lock/update the two account rows in ascending
	// account-ID order so concurrent transfers over a shared account cannot
	// deadlock.
	PostTransfer(ctx context.Context, source, destination domain.Account, txn domain.Transaction) (domain.Account, domain.Account, domain.Transaction, error)

	// PostLoanDisbursement credits the linked account, inserts the
	// disbursement transaction and activates the loan row, all in one unit
	// of work.
	PostLoanDisbursement(ctx context.Context, loan domain.Loan, account domain.Account, txn domain.Transaction) (domain.Loan, domain.Account, domain.Transaction, error)
}
