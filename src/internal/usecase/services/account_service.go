package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/adapter/repository/repo_interfaces"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/commons"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/logger"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/refgen"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type AccountService struct {
	accountRepo     repo_interfaces.AccountRepository
	transactionRepo repo_interfaces.TransactionRepository
	defaultCurrency string
}

func NewAccountService(
	accountRepo repo_interfaces.AccountRepository,
	transactionRepo repo_interfaces.TransactionRepository,
	defaultCurrency string,
) *AccountService {
	return &AccountService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		defaultCurrency: defaultCurrency,
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, callerID string, accountType domain.AccountType, currency string) (domain.Account, error) {
	logger.Info("account service create request", logger.Fields{
		"customerId":  callerID,
		"accountType": accountType,
	})

	switch accountType {
	case domain.AccountTypeSavings, domain.AccountTypeCurrent, domain.AccountTypeFixedDeposit:
	default:
		return domain.Account{}, commons.ErrInvalidType
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	now := time.Now()
	account := domain.Account{
		CustomerID:  callerID,
		AccountType: accountType,
		Balance:     decimal.Zero,
		Currency:    currency,
		Status:      domain.AccountStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var (
		created domain.Account
		err     error
	)
	for attempt := 0; attempt < refAttempts; attempt++ {
		account.AccountNumber = refgen.NewAccountNumber()
		created, err = s.accountRepo.Create(ctx, account)
		if !errors.Is(err, commons.ErrDuplicateKey) {
			break
		}
	}
	if errors.Is(err, commons.ErrDuplicateKey) {
		return domain.Account{}, commons.ErrDuplicateReference
	}
	if err != nil {
		logger.Error("account service create failed", err, logger.Fields{
			"customerId": callerID,
		})
		return domain.Account{}, err
	}

	logger.Info("account service create success", logger.Fields{
		"accountId":     created.ID,
		"accountNumber": created.AccountNumber,
	})

	return created, nil
}

func (s *AccountService) GetAccount(ctx context.Context, callerID, accountID string) (domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	if account.CustomerID != callerID {
		return domain.Account{}, commons.ErrUnauthorized
	}
	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, callerID string) ([]domain.Account, error) {
	return s.accountRepo.ListByCustomerID(ctx, callerID)
}

func (s *AccountService) ListTransactions(ctx context.Context, callerID, accountID string, page, size int) ([]domain.Transaction, int64, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}
	if account.CustomerID != callerID {
		return nil, 0, commons.ErrUnauthorized
	}

	return s.transactionRepo.ListByAccountID(ctx, accountID, page, size)
}
