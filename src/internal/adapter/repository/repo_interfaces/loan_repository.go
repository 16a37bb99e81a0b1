package repo_interfaces

import (
	"context"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
)

type LoanRepository interface {
	// Create persists a new loan application. A duplicate loan number
	// surfaces as commons.ErrDuplicateKey.
	Create(ctx context.Context, loan domain.Loan) (domain.Loan, error)
	GetByID(ctx context.Context, id string) (domain.Loan, error)
	// ListByCustomerID returns the customer's loans, newest first.
	ListByCustomerID(ctx context.Context, customerID string) ([]domain.Loan, error)

	// Update compares-and-swaps on loan.Version; a stale version surfaces
	// as commons.ErrConflict.
	Update(ctx context.Context, loan domain.Loan) (domain.Loan, error)

	// PostRepayment inserts the repayment row and writes the decremented
	// loan (CAS on loan.Version) in one atomic unit of work. A duplicate
	// payment reference surfaces as commons.ErrDuplicateKey.
	PostRepayment(ctx context.Context, loan domain.Loan, repayment domain.LoanRepayment) (domain.Loan, domain.LoanRepayment, error)
}
