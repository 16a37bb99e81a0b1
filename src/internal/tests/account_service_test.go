package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/adapter/repository/memory"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/commons"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/usecase/services"
	"github.com/shopspring/decimal"
)

func TestAccountServiceCreateAccountSuccess(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewAccountService(store.Accounts(), store.Transactions(), "USD")

	account, err := svc.CreateAccount(context.Background(), "cust-1", domain.AccountTypeSavings, "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if account.ID == "" || len(account.AccountNumber) != 10 {
		t.Fatal("expected a persisted account with a 10 digit number")
	}
	if !account.Balance.IsZero() {
		t.Fatalf("new accounts open with a zero balance, got %s", account.Balance)
	}
	if account.Currency != "USD" {
		t.Fatalf("expected default currency USD, got %s", account.Currency)
	}
	if account.Status != domain.AccountStatusActive {
		t.Fatalf("expected ACTIVE, got %s", account.Status)
	}
}

func TestAccountServiceCreateAccountNormalisesCurrency(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewAccountService(store.Accounts(), store.Transactions(), "USD")

	account, err := svc.CreateAccount(context.Background(), "cust-1", domain.AccountTypeCurrent, " ngn ")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if account.Currency != "NGN" {
		t.Fatalf("expected NGN, got %s", account.Currency)
	}
}

func TestAccountServiceCreateAccountRejectsUnknownType(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewAccountService(store.Accounts(), store.Transactions(), "USD")

	_, err := svc.CreateAccount(context.Background(), "cust-1", domain.AccountType("CHECKING"), "USD")
	if !errors.Is(err, commons.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestAccountServiceListAccountsReturnsOnlyCallerAccounts(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewAccountService(store.Accounts(), store.Transactions(), "USD")

	first, err := svc.CreateAccount(context.Background(), "cust-1", domain.AccountTypeSavings, "USD")
	if err != nil {
		t.Fatalf("create first account: %v", err)
	}
	second, err := svc.CreateAccount(context.Background(), "cust-1", domain.AccountTypeCurrent, "USD")
	if err != nil {
		t.Fatalf("create second account: %v", err)
	}
	if _, err := svc.CreateAccount(context.Background(), "cust-2", domain.AccountTypeSavings, "USD"); err != nil {
		t.Fatalf("create foreign account: %v", err)
	}

	accounts, err := svc.ListAccounts(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	seen := map[string]bool{}
	for _, account := range accounts {
		if account.CustomerID != "cust-1" {
			t.Fatalf("foreign account %s in listing", account.ID)
		}
		seen[account.ID] = true
	}
	if !seen[first.ID] || !seen[second.ID] {
		t.Fatal("expected both accounts in the listing")
	}

	empty, err := svc.ListAccounts(context.Background(), "cust-3")
	if err != nil {
		t.Fatalf("list accounts for unknown customer: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no accounts, got %d", len(empty))
	}
}

func TestAccountServiceGetAccountEnforcesOwnership(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewAccountService(store.Accounts(), store.Transactions(), "USD")
	account := seedAccount(t, store, "cust-1", decimal.NewFromInt(10), domain.AccountStatusActive)

	if _, err := svc.GetAccount(context.Background(), "cust-2", account.ID); !errors.Is(err, commons.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	got, err := svc.GetAccount(context.Background(), "cust-1", account.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.ID != account.ID {
		t.Fatal("expected the seeded account back")
	}
}

func TestAccountServiceListTransactionsPaginatesNewestFirst(t *testing.T) {
	store := memory.NewStore()
	ledger := services.NewLedgerService(store.Accounts(), store.Ledger())
	svc := services.NewAccountService(store.Accounts(), store.Transactions(), "USD")
	account := seedAccount(t, store, "cust-1", decimal.Zero, domain.AccountStatusActive)

	for i := 1; i <= 5; i++ {
		if _, _, err := ledger.Deposit(context.Background(), "cust-1", account.ID, decimal.NewFromInt(int64(i)), ""); err != nil {
			t.Fatalf("seed deposit %d: %v", i, err)
		}
	}

	page, total, err := svc.ListTransactions(context.Background(), "cust-1", account.ID, 0, 2)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
	if !page[0].Amount.Equal(decimal.NewFromInt(5)) || !page[1].Amount.Equal(decimal.NewFromInt(4)) {
		t.Fatal("expected newest transactions first")
	}

	last, _, err := svc.ListTransactions(context.Background(), "cust-1", account.ID, 2, 2)
	if err != nil {
		t.Fatalf("list last page: %v", err)
	}
	if len(last) != 1 || !last[0].Amount.Equal(decimal.NewFromInt(1)) {
		t.Fatal("expected the oldest transaction on the last page")
	}
}

func TestAccountServiceListTransactionsEnforcesOwnership(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewAccountService(store.Accounts(), store.Transactions(), "USD")
	account := seedAccount(t, store, "cust-1", decimal.Zero, domain.AccountStatusActive)

	if _, _, err := svc.ListTransactions(context.Background(), "cust-2", account.ID, 0, 10); !errors.Is(err, commons.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
