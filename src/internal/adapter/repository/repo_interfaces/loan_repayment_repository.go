package repo_interfaces

import (
	"context"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
	"github.com/shopspring/decimal"
)

type LoanRepaymentRepository interface {
	ListByLoanID(ctx context.Context, loanID string) ([]domain.LoanRepayment, error)
	TotalRepaidForLoan(ctx context.Context, loanID string) (decimal.Decimal, error)
}
