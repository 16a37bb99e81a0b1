package repo_interfaces

import (
	"context"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
)

type TransactionRepository interface {
	// ListByAccountID returns transactions where the account is source or
	// destination, newest first, plus the total row count for pagination.
	ListByAccountID(ctx context.Context, accountID string, page, size int) ([]domain.Transaction, int64, error)
	GetByRef(ctx context.Context, transactionRef string) (domain.Transaction, error)
}
