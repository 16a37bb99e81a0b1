package service_interfaces

import (
	"context"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
)

type AccountService interface {
	// CreateAccount opens an account with a zero balance; funding it is a
	// separate ledger deposit.
	CreateAccount(ctx context.Context, callerID string, accountType domain.AccountType, currency string) (domain.Account, error)
	GetAccount(ctx context.Context, callerID, accountID string) (domain.Account, error)
	ListAccounts(ctx context.Context, callerID string) ([]domain.Account, error)
	ListTransactions(ctx context.Context, callerID, accountID string, page, size int) ([]domain.Transaction, int64, error)
}
