package services

import (
	"context"
	"errors"
	"time"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/adapter/repository/repo_interfaces"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/commons"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/logger"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/refgen"
	"github.com/shopspring/decimal"
)

// refAttempts bounds how often a posting is retried after the store
// rejects a generated reference as a duplicate. The first retry uses a
// fresh reference; a second collision surfaces as ErrDuplicateReference.
const refAttempts = 2

type LedgerService struct {
	accountRepo repo_interfaces.AccountRepository
	ledgerRepo  repo_interfaces.LedgerRepository
}

func NewLedgerService(
	accountRepo repo_interfaces.AccountRepository,
	ledgerRepo repo_interfaces.LedgerRepository,
) *LedgerService {
	return &LedgerService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

func (s *LedgerService) Deposit(ctx context.Context, callerID, accountID string, amount decimal.Decimal, description string) (domain.Account, domain.Transaction, error) {
	logger.Info("ledger service deposit request", logger.Fields{
		"accountId": accountID,
		"amount":    amount,
	})

	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.Account{}, domain.Transaction{}, commons.ErrInvalidAmount
	}

	account, err := s.ownedActiveAccount(ctx, callerID, accountID)
	if err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}

	now := time.Now()
	credited := account
	credited.Balance = account.Balance.Add(amount)
	credited.UpdatedAt = now

	txn := domain.Transaction{
		DestinationAccountID: &account.ID,
		TransactionType:      domain.TransactionTypeDeposit,
		Amount:               amount,
		Currency:             account.Currency,
		Description:          description,
		Status:               domain.TransactionStatusCompleted,
		CreatedAt:            now,
	}

	var posted domain.Transaction
	for attempt := 0; attempt < refAttempts; attempt++ {
		txn.TransactionRef = refgen.NewTransactionRef()
		credited, posted, err = s.ledgerRepo.PostDeposit(ctx, credited, txn)
		if !errors.Is(err, commons.ErrDuplicateKey) {
			break
		}
	}
	if errors.Is(err, commons.ErrDuplicateKey) {
		return domain.Account{}, domain.Transaction{}, commons.ErrDuplicateReference
	}
	if err != nil {
		logger.Error("ledger service deposit failed", err, logger.Fields{
			"accountId": accountID,
		})
		return domain.Account{}, domain.Transaction{}, err
	}

	logger.Info("ledger service deposit success", logger.Fields{
		"accountId":      credited.ID,
		"transactionRef": posted.TransactionRef,
		"newBalance":     credited.Balance,
	})

	return credited, posted, nil
}

func (s *LedgerService) Withdraw(ctx context.Context, callerID, accountID string, amount decimal.Decimal, description string) (domain.Account, domain.Transaction, error) {
	logger.Info("ledger service withdraw request", logger.Fields{
		"accountId": accountID,
		"amount":    amount,
	})

	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.Account{}, domain.Transaction{}, commons.ErrInvalidAmount
	}

	account, err := s.ownedActiveAccount(ctx, callerID, accountID)
	if err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}

	if account.Balance.LessThan(amount) {
		return domain.Account{}, domain.Transaction{}, commons.ErrInsufficientBalance
	}

	now := time.Now()
	debited := account
	debited.Balance = account.Balance.Sub(amount)
	debited.UpdatedAt = now

	txn := domain.Transaction{
		SourceAccountID: &account.ID,
		TransactionType: domain.TransactionTypeWithdrawal,
		Amount:          amount,
		Currency:        account.Currency,
		Description:     description,
		Status:          domain.TransactionStatusCompleted,
		CreatedAt:       now,
	}

	var posted domain.Transaction
	for attempt := 0; attempt < refAttempts; attempt++ {
		txn.TransactionRef = refgen.NewTransactionRef()
		debited, posted, err = s.ledgerRepo.PostWithdrawal(ctx, debited, txn)
		if !errors.Is(err, commons.ErrDuplicateKey) {
			break
		}
	}
	if errors.Is(err, commons.ErrDuplicateKey) {
		return domain.Account{}, domain.Transaction{}, commons.ErrDuplicateReference
	}
	if err != nil {
		logger.Error("ledger service withdraw failed", err, logger.Fields{
			"accountId": accountID,
		})
		return domain.Account{}, domain.Transaction{}, err
	}

	logger.Info("ledger service withdraw success", logger.Fields{
		"accountId":      debited.ID,
		"transactionRef": posted.TransactionRef,
		"newBalance":     debited.Balance,
	})

	return debited, posted, nil
}

func (s *LedgerService) Transfer(ctx context.Context, callerID, sourceAccountID, destinationAccountNumber string, amount decimal.Decimal, description string) (domain.Account, domain.Transaction, error) {
	logger.Info("ledger service transfer request", logger.Fields{
		"sourceAccountId":          sourceAccountID,
		"destinationAccountNumber": destinationAccountNumber,
		"amount":                   amount,
	})

	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.Account{}, domain.Transaction{}, commons.ErrInvalidAmount
	}

	source, err := s.ownedActiveAccount(ctx, callerID, sourceAccountID)
	if err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}

	destination, err := s.accountRepo.GetByAccountNumber(ctx, destinationAccountNumber)
	if err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}

	if source.ID == destination.ID {
		return domain.Account{}, domain.Transaction{}, commons.ErrSameAccount
	}
	if destination.Status != domain.AccountStatusActive {
		return domain.Account{}, domain.Transaction{}, commons.ErrAccountNotActive
	}
	if source.Balance.LessThan(amount) {
		return domain.Account{}, domain.Transaction{}, commons.ErrInsufficientBalance
	}

	now := time.Now()
	debited := source
	debited.Balance = source.Balance.Sub(amount)
	debited.UpdatedAt = now
	credited := destination
	credited.Balance = destination.Balance.Add(amount)
	credited.UpdatedAt = now

	txn := domain.Transaction{
		SourceAccountID:      &source.ID,
		DestinationAccountID: &destination.ID,
		TransactionType:      domain.TransactionTypeTransfer,
		Amount:               amount,
		Currency:             source.Currency,
		Description:          description,
		Status:               domain.TransactionStatusCompleted,
		CreatedAt:            now,
	}

	var posted domain.Transaction
	for attempt := 0; attempt < refAttempts; attempt++ {
		txn.TransactionRef = refgen.NewTransactionRef()
		debited, credited, posted, err = s.ledgerRepo.PostTransfer(ctx, debited, credited, txn)
		if !errors.Is(err, commons.ErrDuplicateKey) {
			break
		}
	}
	if errors.Is(err, commons.ErrDuplicateKey) {
		return domain.Account{}, domain.Transaction{}, commons.ErrDuplicateReference
	}
	if err != nil {
		logger.Error("ledger service transfer failed", err, logger.Fields{
			"sourceAccountId":      sourceAccountID,
			"destinationAccountId": destination.ID,
		})
		return domain.Account{}, domain.Transaction{}, err
	}

	logger.Info("ledger service transfer success", logger.Fields{
		"sourceAccountId":      debited.ID,
		"destinationAccountId": credited.ID,
		"transactionRef":       posted.TransactionRef,
	})

	return debited, posted, nil
}

func (s *LedgerService) DisburseLoanPrincipal(ctx context.Context, loan domain.Loan, account domain.Account) (domain.Loan, domain.Transaction, error) {
	logger.Info("ledger service disburse loan principal", logger.Fields{
		"loanNumber": loan.LoanNumber,
		"accountId":  account.ID,
		"amount":     loan.PrincipalAmount,
	})

	if loan.PrincipalAmount.LessThanOrEqual(decimal.Zero) {
		return domain.Loan{}, domain.Transaction{}, commons.ErrInvalidAmount
	}
	if account.Status != domain.AccountStatusActive {
		return domain.Loan{}, domain.Transaction{}, commons.ErrAccountNotActive
	}

	now := time.Now()
	credited := account
	credited.Balance = account.Balance.Add(loan.PrincipalAmount)
	credited.UpdatedAt = now

	txn := domain.Transaction{
		DestinationAccountID: &account.ID,
		TransactionType:      domain.TransactionTypeDeposit,
		Amount:               loan.PrincipalAmount,
		Currency:             account.Currency,
		Description:          "Loan disbursement - " + loan.LoanNumber,
		Status:               domain.TransactionStatusCompleted,
		CreatedAt:            now,
	}

	var (
		activated domain.Loan
		posted    domain.Transaction
		err       error
	)
	for attempt := 0; attempt < refAttempts; attempt++ {
		txn.TransactionRef = refgen.NewTransactionRef()
		activated, _, posted, err = s.ledgerRepo.PostLoanDisbursement(ctx, loan, credited, txn)
		if !errors.Is(err, commons.ErrDuplicateKey) {
			break
		}
	}
	if errors.Is(err, commons.ErrDuplicateKey) {
		return domain.Loan{}, domain.Transaction{}, commons.ErrDuplicateReference
	}
	if err != nil {
		logger.Error("ledger service disburse loan principal failed", err, logger.Fields{
			"loanNumber": loan.LoanNumber,
		})
		return domain.Loan{}, domain.Transaction{}, err
	}

	return activated, posted, nil
}

func (s *LedgerService) ownedActiveAccount(ctx context.Context, callerID, accountID string) (domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	if account.CustomerID != callerID {
		return domain.Account{}, commons.ErrUnauthorized
	}
	if account.Status != domain.AccountStatusActive {
		return domain.Account{}, commons.ErrAccountNotActive
	}
	return account, nil
}
