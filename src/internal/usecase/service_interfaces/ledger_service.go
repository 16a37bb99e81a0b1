package service_interfaces

import (
	"context"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerService mutates account balances and records the immutable
// transaction history. callerID is the acting principal resolved by the
// caller-identity collaborator; every operation verifies ownership
// against it.
type LedgerService interface {
	Deposit(ctx context.Context, callerID, accountID string, amount decimal.Decimal, description string) (domain.Account, domain.Transaction, error)
	Withdraw(ctx context.Context, callerID, accountID string, amount decimal.Decimal, description string) (domain.Account, domain.Transaction, error)
	Transfer(ctx context.Context, callerID, sourceAccountID, destinationAccountNumber string, amount decimal.Decimal, description string) (domain.Account, domain.Transaction, error)

	// DisburseLoanPrincipal credits the loan principal to the linked
	// account and activates the loan row in the same unit of work. The
	// loan passed in must already carry its activated state.
	DisburseLoanPrincipal(ctx context.Context, loan domain.Loan, account domain.Account) (domain.Loan, domain.Transaction, error)
}
