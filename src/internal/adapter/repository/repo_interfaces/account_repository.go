package repo_interfaces

import (
	"context"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
)

type AccountRepository interface {
	// Create persists a new account. A duplicate account number surfaces
	// as commons.ErrDuplicateKey.
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	// ListByCustomerID returns the customer's accounts, newest first.
	ListByCustomerID(ctx context.Context, customerID string) ([]domain.Account, error)
}
