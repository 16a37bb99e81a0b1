package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/adapter/repository/memory"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/commons"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/refgen"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/usecase/services"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func seedAccount(t *testing.T, store *memory.Store, customerID string, balance decimal.Decimal, status domain.AccountStatus) domain.Account {
	t.Helper()

	now := time.Now()
	account, err := store.Accounts().Create(context.Background(), domain.Account{
		AccountNumber: refgen.NewAccountNumber(),
		CustomerID:    customerID,
		AccountType:   domain.AccountTypeSavings,
		Balance:       balance,
		Currency:      "USD",
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

func TestLedgerServiceDepositSuccess(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewLedgerService(store.Accounts(), store.Ledger())
	account := seedAccount(t, store, "cust-1", decimal.NewFromInt(100), domain.AccountStatusActive)

	updated, txn, err := svc.Deposit(context.Background(), "cust-1", account.ID, decimal.NewFromInt(50), "salary")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !updated.Balance.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected balance 150, got %s", updated.Balance)
	}
	if updated.Version != account.Version+1 {
		t.Fatalf("expected version bump, got %d", updated.Version)
	}
	if txn.TransactionType != domain.TransactionTypeDeposit || txn.TransactionRef == "" {
		t.Fatal("expected a referenced deposit transaction")
	}
	if txn.SourceAccountID != nil {
		t.Fatal("deposit must not carry a source account")
	}
}

func TestLedgerServiceDepositRejectsNonPositiveAmount(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewLedgerService(store.Accounts(), store.Ledger())
	account := seedAccount(t, store, "cust-1", decimal.NewFromInt(100), domain.AccountStatusActive)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, _, err := svc.Deposit(context.Background(), "cust-1", account.ID, amount, "")
		if !errors.Is(err, commons.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount for %s, got %v", amount, err)
		}
	}
}

func TestLedgerServiceDepositRejectsInactiveAccount(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewLedgerService(store.Accounts(), store.Ledger())
	account := seedAccount(t, store, "cust-1", decimal.NewFromInt(100), domain.AccountStatusFrozen)

	_, _, err := svc.Deposit(context.Background(), "cust-1", account.ID, decimal.NewFromInt(10), "")
	if !errors.Is(err, commons.ErrAccountNotActive) {
		t.Fatalf("expected ErrAccountNotActive, got %v", err)
	}
}

func TestLedgerServiceDepositRejectsForeignCaller(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewLedgerService(store.Accounts(), store.Ledger())
	account := seedAccount(t, store, "cust-1", decimal.NewFromInt(100), domain.AccountStatusActive)

	_, _, err := svc.Deposit(context.Background(), "cust-2", account.ID, decimal.NewFromInt(10), "")
	if !errors.Is(err, commons.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLedgerServiceDepositUnknownAccount(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewLedgerService(store.Accounts(), store.Ledger())

	_, _, err := svc.Deposit(context.Background(), "cust-1", "missing", decimal.NewFromInt(10), "")
	if !errors.Is(err, commons.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestLedgerServiceWithdrawInsufficientBalanceLeavesStateUntouched(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewLedgerService(store.Accounts(), store.Ledger())
	account := seedAccount(t, store, "cust-1", decimal.NewFromInt(30), domain.AccountStatusActive)

	_, _, err := svc.Withdraw(context.Background(), "cust-1", account.ID, decimal.NewFromInt(31), "rent")
	if !errors.Is(err, commons.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	after, err := store.Accounts().GetByID(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if !after.Balance.Equal(decimal.NewFromInt(30)) || after.Version != account.Version {
		t.Fatal("failed withdrawal must not change the account")
	}

	txns, total, err := store.Transactions().ListByAccountID(context.Background(), account.ID, 0, 10)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if total != 0 || len(txns) != 0 {
		t.Fatal("failed withdrawal must not record a transaction")
	}
}

func TestLedgerServiceWithdrawSuccess(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewLedgerService(store.Accounts(), store.Ledger())
	account := seedAccount(t, store, "cust-1", decimal.NewFromInt(30), domain.AccountStatusActive)

	updated, txn, err := svc.Withdraw(context.Background(), "cust-1", account.ID, decimal.NewFromInt(30), "rent")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !updated.Balance.Equal(decimal.Zero) {
		t.Fatalf("expected zero balance, got %s", updated.Balance)
	}
	if txn.TransactionType != domain.TransactionTypeWithdrawal {
		t.Fatalf("expected withdrawal transaction, got %s", txn.TransactionType)
	}
	if txn.DestinationAccountID != nil {
		t.Fatal("withdrawal must not carry a destination account")
	}
}

func TestLedgerServiceTransferSuccess(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewLedgerService(store.Accounts(), store.Ledger())
	source := seedAccount(t, store, "cust-1", decimal.NewFromInt(100), domain.AccountStatusActive)
	destination := seedAccount(t, store, "cust-2", decimal.NewFromInt(5), domain.AccountStatusActive)

	updated, txn, err := svc.Transfer(context.Background(), "cust-1", source.ID, destination.AccountNumber, decimal.NewFromInt(40), "gift")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !updated.Balance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected source balance 60, got %s", updated.Balance)
	}

	dest, err := store.Accounts().GetByID(context.Background(), destination.ID)
	if err != nil {
		t.Fatalf("reload destination: %v", err)
	}
	if !dest.Balance.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("expected destination balance 45, got %s", dest.Balance)
	}
	if txn.TransactionType != domain.TransactionTypeTransfer {
		t.Fatalf("expected transfer transaction, got %s", txn.TransactionType)
	}
	if txn.SourceAccountID == nil || txn.DestinationAccountID == nil {
		t.Fatal("transfer must reference both accounts")
	}
}

func TestLedgerServiceTransferRejectsSameAccount(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewLedgerService(store.Accounts(), store.Ledger())
	account := seedAccount(t, store, "cust-1", decimal.NewFromInt(100), domain.AccountStatusActive)

	_, _, err := svc.Transfer(context.Background(), "cust-1", account.ID, account.AccountNumber, decimal.NewFromInt(10), "")
	if !errors.Is(err, commons.ErrSameAccount) {
		t.Fatalf("expected ErrSameAccount, got %v", err)
	}
}

func TestLedgerServiceTransferRejectsInactiveDestination(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewLedgerService(store.Accounts(), store.Ledger())
	source := seedAccount(t, store, "cust-1", decimal.NewFromInt(100), domain.AccountStatusActive)
	destination := seedAccount(t, store, "cust-2", decimal.NewFromInt(5), domain.AccountStatusClosed)

	_, _, err := svc.Transfer(context.Background(), "cust-1", source.ID, destination.AccountNumber, decimal.NewFromInt(10), "")
	if !errors.Is(err, commons.ErrAccountNotActive) {
		t.Fatalf("expected ErrAccountNotActive, got %v", err)
	}
}

func TestLedgerServiceConcurrentDisjointTransfers(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewLedgerService(store.Accounts(), store.Ledger())

	a := seedAccount(t, store, "cust-a", decimal.NewFromInt(100), domain.AccountStatusActive)
	b := seedAccount(t, store, "cust-b", decimal.NewFromInt(100), domain.AccountStatusActive)
	c := seedAccount(t, store, "cust-c", decimal.NewFromInt(100), domain.AccountStatusActive)
	d := seedAccount(t, store, "cust-d", decimal.NewFromInt(100), domain.AccountStatusActive)

	var g errgroup.Group
	g.Go(func() error {
		_, _, err := svc.Transfer(context.Background(), "cust-a", a.ID, b.AccountNumber, decimal.NewFromInt(25), "")
		return err
	})
	g.Go(func() error {
		_, _, err := svc.Transfer(context.Background(), "cust-c", c.ID, d.AccountNumber, decimal.NewFromInt(10), "")
		return err
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("expected both disjoint transfers to succeed, got %v", err)
	}

	want := map[string]decimal.Decimal{
		a.ID: decimal.NewFromInt(75),
		b.ID: decimal.NewFromInt(125),
		c.ID: decimal.NewFromInt(90),
		d.ID: decimal.NewFromInt(110),
	}
	for id, balance := range want {
		got, err := store.Accounts().GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("reload account %s: %v", id, err)
		}
		if !got.Balance.Equal(balance) {
			t.Fatalf("account %s: expected balance %s, got %s", id, balance, got.Balance)
		}
	}
}

func TestLedgerServiceConcurrentDepositsOnOneAccount(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewLedgerService(store.Accounts(), store.Ledger())
	account := seedAccount(t, store, "cust-1", decimal.Zero, domain.AccountStatusActive)

	const workers = 8
	var succeeded atomic.Int64

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, _, err := svc.Deposit(context.Background(), "cust-1", account.ID, decimal.NewFromInt(10), "")
			if errors.Is(err, commons.ErrConflict) {
				return nil
			}
			if err != nil {
				return err
			}
			succeeded.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected deposit failure: %v", err)
	}

	if succeeded.Load() == 0 {
		t.Fatal("expected at least one deposit to commit")
	}

	after, err := store.Accounts().GetByID(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	wantBalance := decimal.NewFromInt(10 * succeeded.Load())
	if !after.Balance.Equal(wantBalance) {
		t.Fatalf("expected balance %s after %d commits, got %s", wantBalance, succeeded.Load(), after.Balance)
	}
	if after.Version != account.Version+succeeded.Load() {
		t.Fatalf("expected version to advance once per commit, got %d", after.Version)
	}
}

// duplicateRefLedgerStub rejects the first N postings with ErrDuplicateKey
// and then delegates, exercising the reference retry path.
type duplicateRefLedgerStub struct {
	*memory.LedgerStore
	rejections atomic.Int64
}

func (s *duplicateRefLedgerStub) PostDeposit(ctx context.Context, account domain.Account, txn domain.Transaction) (domain.Account, domain.Transaction, error) {
	if s.rejections.Load() > 0 {
		s.rejections.Add(-1)
		return domain.Account{}, domain.Transaction{}, commons.ErrDuplicateKey
	}
	return s.LedgerStore.PostDeposit(ctx, account, txn)
}

func TestLedgerServiceDepositRetriesOnceOnDuplicateReference(t *testing.T) {
	store := memory.NewStore()
	stub := &duplicateRefLedgerStub{LedgerStore: store.Ledger()}
	stub.rejections.Store(1)
	svc := services.NewLedgerService(store.Accounts(), stub)
	account := seedAccount(t, store, "cust-1", decimal.Zero, domain.AccountStatusActive)

	updated, txn, err := svc.Deposit(context.Background(), "cust-1", account.ID, decimal.NewFromInt(10), "")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if !updated.Balance.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected balance 10, got %s", updated.Balance)
	}
	if txn.TransactionRef == "" {
		t.Fatal("expected a regenerated transaction reference")
	}
}

func TestLedgerServiceDepositGivesUpAfterSecondDuplicate(t *testing.T) {
	store := memory.NewStore()
	stub := &duplicateRefLedgerStub{LedgerStore: store.Ledger()}
	stub.rejections.Store(2)
	svc := services.NewLedgerService(store.Accounts(), stub)
	account := seedAccount(t, store, "cust-1", decimal.Zero, domain.AccountStatusActive)

	_, _, err := svc.Deposit(context.Background(), "cust-1", account.ID, decimal.NewFromInt(10), "")
	if !errors.Is(err, commons.ErrDuplicateReference) {
		t.Fatalf("expected ErrDuplicateReference, got %v", err)
	}

	after, err := store.Accounts().GetByID(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if !after.Balance.Equal(decimal.Zero) {
		t.Fatal("failed posting must not change the account")
	}
}
