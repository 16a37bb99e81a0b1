// Package memory is an in-process implementation of the store contracts
// with the same observable semantics as the postgres adapter: optimistic
// version tokens, unique reference enforcement and all-or-nothing postings.
// It backs the service tests and local runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/commons"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu sync.Mutex

	accounts       map[string]domain.Account
	accountNumbers map[string]string

	loans       map[string]domain.Loan
	loanNumbers map[string]struct{}

	transactions    []domain.Transaction
	transactionRefs map[string]struct{}

	repayments  []domain.LoanRepayment
	paymentRefs map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		accounts:        make(map[string]domain.Account),
		accountNumbers:  make(map[string]string),
		loans:           make(map[string]domain.Loan),
		loanNumbers:     make(map[string]struct{}),
		transactionRefs: make(map[string]struct{}),
		paymentRefs:     make(map[string]struct{}),
	}
}

func (s *Store) Accounts() *AccountStore             { return &AccountStore{s} }
func (s *Store) Ledger() *LedgerStore                { return &LedgerStore{s} }
func (s *Store) Transactions() *TransactionStore     { return &TransactionStore{s} }
func (s *Store) Loans() *LoanStore                   { return &LoanStore{s} }
func (s *Store) LoanRepayments() *LoanRepaymentStore { return &LoanRepaymentStore{s} }

type AccountStore struct{ store *Store }

func (r *AccountStore) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, taken := r.store.accountNumbers[account.AccountNumber]; taken {
		return domain.Account{}, commons.ErrDuplicateKey
	}

	account.ID = uuid.NewString()
	account.Version = 1
	r.store.accounts[account.ID] = account
	r.store.accountNumbers[account.AccountNumber] = account.ID

	return account, nil
}

func (r *AccountStore) GetByID(_ context.Context, id string) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	return account, nil
}

func (r *AccountStore) GetByAccountNumber(_ context.Context, accountNumber string) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id, ok := r.store.accountNumbers[accountNumber]
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	return r.store.accounts[id], nil
}

func (r *AccountStore) ListByCustomerID(_ context.Context, customerID string) ([]domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]domain.Account, 0)
	for _, account := range r.store.accounts {
		if account.CustomerID == customerID {
			out = append(out, account)
		}
	}
	// Map iteration order is random; sort newest first with the account
	// number as a stable tie-breaker.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].AccountNumber > out[j].AccountNumber
	})
	return out, nil
}

// LedgerStore commits each posting under one lock acquisition: every
// precondition is checked before the first mutation so a failed posting
// leaves no trace.
type LedgerStore struct{ store *Store }

func (r *LedgerStore) PostDeposit(_ context.Context, account domain.Account, txn domain.Transaction) (domain.Account, domain.Transaction, error) {
	return r.postAccountAndTransaction(account, txn)
}

func (r *LedgerStore) PostWithdrawal(_ context.Context, account domain.Account, txn domain.Transaction) (domain.Account, domain.Transaction, error) {
	return r.postAccountAndTransaction(account, txn)
}

func (r *LedgerStore) postAccountAndTransaction(account domain.Account, txn domain.Transaction) (domain.Account, domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.checkAccountVersionLocked(account); err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}
	if err := r.store.checkTransactionRefLocked(txn.TransactionRef); err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}

	account = r.store.applyAccountLocked(account)
	txn = r.store.applyTransactionLocked(txn)
	return account, txn, nil
}

func (r *LedgerStore) PostTransfer(_ context.Context, source, destination domain.Account, txn domain.Transaction) (domain.Account, domain.Account, domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.checkAccountVersionLocked(source); err != nil {
		return domain.Account{}, domain.Account{}, domain.Transaction{}, err
	}
	if err := r.store.checkAccountVersionLocked(destination); err != nil {
		return domain.Account{}, domain.Account{}, domain.Transaction{}, err
	}
	if err := r.store.checkTransactionRefLocked(txn.TransactionRef); err != nil {
		return domain.Account{}, domain.Account{}, domain.Transaction{}, err
	}

	source = r.store.applyAccountLocked(source)
	destination = r.store.applyAccountLocked(destination)
	txn = r.store.applyTransactionLocked(txn)
	return source, destination, txn, nil
}

func (r *LedgerStore) PostLoanDisbursement(_ context.Context, loan domain.Loan, account domain.Account, txn domain.Transaction) (domain.Loan, domain.Account, domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.checkAccountVersionLocked(account); err != nil {
		return domain.Loan{}, domain.Account{}, domain.Transaction{}, err
	}
	if err := r.store.checkLoanVersionLocked(loan); err != nil {
		return domain.Loan{}, domain.Account{}, domain.Transaction{}, err
	}
	if err := r.store.checkTransactionRefLocked(txn.TransactionRef); err != nil {
		return domain.Loan{}, domain.Account{}, domain.Transaction{}, err
	}

	account = r.store.applyAccountLocked(account)
	loan = r.store.applyLoanLocked(loan)
	txn = r.store.applyTransactionLocked(txn)
	return loan, account, txn, nil
}

type TransactionStore struct{ store *Store }

func (r *TransactionStore) ListByAccountID(_ context.Context, accountID string, page, size int) ([]domain.Transaction, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	matched := make([]domain.Transaction, 0)
	// The slice is append-only, so walking it backwards yields newest first.
	for i := len(r.store.transactions) - 1; i >= 0; i-- {
		txn := r.store.transactions[i]
		if touchesAccount(txn, accountID) {
			matched = append(matched, txn)
		}
	}

	total := int64(len(matched))
	start := page * size
	if start >= len(matched) {
		return []domain.Transaction{}, total, nil
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], total, nil
}

func (r *TransactionStore) GetByRef(_ context.Context, transactionRef string) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, txn := range r.store.transactions {
		if txn.TransactionRef == transactionRef {
			return txn, nil
		}
	}
	return domain.Transaction{}, commons.ErrRecordNotFound
}

type LoanStore struct{ store *Store }

func (r *LoanStore) Create(_ context.Context, loan domain.Loan) (domain.Loan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, taken := r.store.loanNumbers[loan.LoanNumber]; taken {
		return domain.Loan{}, commons.ErrDuplicateKey
	}

	loan.ID = uuid.NewString()
	loan.Version = 1
	r.store.loans[loan.ID] = loan
	r.store.loanNumbers[loan.LoanNumber] = struct{}{}

	return loan, nil
}

func (r *LoanStore) GetByID(_ context.Context, id string) (domain.Loan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	loan, ok := r.store.loans[id]
	if !ok {
		return domain.Loan{}, commons.ErrRecordNotFound
	}
	return loan, nil
}

func (r *LoanStore) ListByCustomerID(_ context.Context, customerID string) ([]domain.Loan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]domain.Loan, 0)
	for _, loan := range r.store.loans {
		if loan.CustomerID == customerID {
			out = append(out, loan)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ApplicationDate.Equal(out[j].ApplicationDate) {
			return out[i].ApplicationDate.After(out[j].ApplicationDate)
		}
		return out[i].LoanNumber > out[j].LoanNumber
	})
	return out, nil
}

func (r *LoanStore) Update(_ context.Context, loan domain.Loan) (domain.Loan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.checkLoanVersionLocked(loan); err != nil {
		return domain.Loan{}, err
	}
	return r.store.applyLoanLocked(loan), nil
}

func (r *LoanStore) PostRepayment(_ context.Context, loan domain.Loan, repayment domain.LoanRepayment) (domain.Loan, domain.LoanRepayment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.checkLoanVersionLocked(loan); err != nil {
		return domain.Loan{}, domain.LoanRepayment{}, err
	}
	if _, taken := r.store.paymentRefs[repayment.PaymentRef]; taken {
		return domain.Loan{}, domain.LoanRepayment{}, commons.ErrDuplicateKey
	}

	loan = r.store.applyLoanLocked(loan)

	repayment.ID = uuid.NewString()
	r.store.repayments = append(r.store.repayments, repayment)
	r.store.paymentRefs[repayment.PaymentRef] = struct{}{}

	return loan, repayment, nil
}

type LoanRepaymentStore struct{ store *Store }

func (r *LoanRepaymentStore) ListByLoanID(_ context.Context, loanID string) ([]domain.LoanRepayment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]domain.LoanRepayment, 0)
	for i := len(r.store.repayments) - 1; i >= 0; i-- {
		if r.store.repayments[i].LoanID == loanID {
			out = append(out, r.store.repayments[i])
		}
	}
	return out, nil
}

func (r *LoanRepaymentStore) TotalRepaidForLoan(_ context.Context, loanID string) (decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	total := decimal.Zero
	for _, repayment := range r.store.repayments {
		if repayment.LoanID == loanID && repayment.Status == domain.PaymentStatusCompleted {
			total = total.Add(repayment.Amount)
		}
	}
	return total, nil
}

func (s *Store) checkAccountVersionLocked(account domain.Account) error {
	current, ok := s.accounts[account.ID]
	if !ok {
		return commons.ErrRecordNotFound
	}
	if current.Version != account.Version {
		return commons.ErrConflict
	}
	return nil
}

func (s *Store) checkLoanVersionLocked(loan domain.Loan) error {
	current, ok := s.loans[loan.ID]
	if !ok {
		return commons.ErrRecordNotFound
	}
	if current.Version != loan.Version {
		return commons.ErrConflict
	}
	return nil
}

func (s *Store) checkTransactionRefLocked(transactionRef string) error {
	if _, taken := s.transactionRefs[transactionRef]; taken {
		return commons.ErrDuplicateKey
	}
	return nil
}

func (s *Store) applyAccountLocked(account domain.Account) domain.Account {
	account.Version++
	s.accounts[account.ID] = account
	return account
}

func (s *Store) applyLoanLocked(loan domain.Loan) domain.Loan {
	loan.Version++
	s.loans[loan.ID] = loan
	return loan
}

func (s *Store) applyTransactionLocked(txn domain.Transaction) domain.Transaction {
	txn.ID = uuid.NewString()
	s.transactions = append(s.transactions, txn)
	s.transactionRefs[txn.TransactionRef] = struct{}{}
	return txn
}

func touchesAccount(txn domain.Transaction, accountID string) bool {
	if txn.SourceAccountID != nil && *txn.SourceAccountID == accountID {
		return true
	}
	return txn.DestinationAccountID != nil && *txn.DestinationAccountID == accountID
}
