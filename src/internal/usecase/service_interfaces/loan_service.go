package service_interfaces

import (
	"context"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
	"github.com/shopspring/decimal"
)

// LoanService owns the loan state machine:
// PENDING -> APPROVED -> ACTIVE -> CLOSED, PENDING -> REJECTED.
type LoanService interface {
	Apply(ctx context.Context, callerID, accountID string, loanType domain.LoanType, principal decimal.Decimal, termMonths int, purpose string) (domain.Loan, error)
	Approve(ctx context.Context, approverID, loanID string, interestRateOverride *decimal.Decimal) (domain.Loan, error)
	Reject(ctx context.Context, approverID, loanID, reason string) (domain.Loan, error)
	Disburse(ctx context.Context, loanID string) (domain.Loan, error)
	Repay(ctx context.Context, callerID, loanID string, amount decimal.Decimal, paymentMethod string) (domain.LoanRepayment, domain.Loan, error)
	GetLoan(ctx context.Context, callerID, loanID string) (domain.Loan, error)
	ListLoans(ctx context.Context, callerID string) ([]domain.Loan, error)
	ListRepayments(ctx context.Context, callerID, loanID string) ([]domain.LoanRepayment, decimal.Decimal, error)
}
