package services

import (
	"context"
	"errors"
	"time"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/adapter/repository/repo_interfaces"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/commons"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/loancalc"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/logger"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/refgen"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

type LoanService struct {
	loanRepo      repo_interfaces.LoanRepository
	accountRepo   repo_interfaces.AccountRepository
	repaymentRepo repo_interfaces.LoanRepaymentRepository
	ledger        service_interfaces.LedgerService
}

func NewLoanService(
	loanRepo repo_interfaces.LoanRepository,
	accountRepo repo_interfaces.AccountRepository,
	repaymentRepo repo_interfaces.LoanRepaymentRepository,
	ledger service_interfaces.LedgerService,
) *LoanService {
	return &LoanService{
		loanRepo:      loanRepo,
		accountRepo:   accountRepo,
		repaymentRepo: repaymentRepo,
		ledger:        ledger,
	}
}

// interestRateFor is the product rate card applied at application time.
// An approver may override the rate before approval.
func interestRateFor(loanType domain.LoanType) (decimal.Decimal, error) {
	switch loanType {
	case domain.LoanTypePersonal:
		return decimal.NewFromFloat(12.50), nil
	case domain.LoanTypeBusiness:
		return decimal.NewFromFloat(10.00), nil
	case domain.LoanTypeMortgage:
		return decimal.NewFromFloat(7.50), nil
	default:
		return decimal.Decimal{}, commons.ErrInvalidType
	}
}

func (s *LoanService) Apply(ctx context.Context, callerID, accountID string, loanType domain.LoanType, principal decimal.Decimal, termMonths int, purpose string) (domain.Loan, error) {
	logger.Info("loan service apply request", logger.Fields{
		"customerId": callerID,
		"accountId":  accountID,
		"loanType":   loanType,
		"principal":  principal,
		"termMonths": termMonths,
	})

	if principal.LessThanOrEqual(decimal.Zero) || termMonths < 1 {
		return domain.Loan{}, commons.ErrInvalidAmount
	}

	rate, err := interestRateFor(loanType)
	if err != nil {
		return domain.Loan{}, err
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return domain.Loan{}, err
	}
	if account.CustomerID != callerID {
		return domain.Loan{}, commons.ErrUnauthorized
	}
	if account.Status != domain.AccountStatusActive {
		return domain.Loan{}, commons.ErrAccountNotActive
	}

	now := time.Now()
	loan := domain.Loan{
		CustomerID:         callerID,
		AccountID:          &account.ID,
		LoanType:           loanType,
		PrincipalAmount:    principal,
		InterestRate:       rate,
		TermMonths:         termMonths,
		MonthlyPayment:     loancalc.MonthlyPayment(principal, rate, termMonths),
		OutstandingBalance: principal,
		Status:             domain.LoanStatusPending,
		ApplicationDate:    now,
		Purpose:            purpose,
		UpdatedAt:          now,
	}

	var created domain.Loan
	for attempt := 0; attempt < refAttempts; attempt++ {
		loan.LoanNumber = refgen.NewLoanNumber()
		created, err = s.loanRepo.Create(ctx, loan)
		if !errors.Is(err, commons.ErrDuplicateKey) {
			break
		}
	}
	if errors.Is(err, commons.ErrDuplicateKey) {
		return domain.Loan{}, commons.ErrDuplicateReference
	}
	if err != nil {
		logger.Error("loan service apply failed", err, logger.Fields{
			"customerId": callerID,
		})
		return domain.Loan{}, err
	}

	logger.Info("loan service apply success", logger.Fields{
		"loanId":     created.ID,
		"loanNumber": created.LoanNumber,
	})

	return created, nil
}

func (s *LoanService) Approve(ctx context.Context, approverID, loanID string, interestRateOverride *decimal.Decimal) (domain.Loan, error) {
	logger.Info("loan service approve request", logger.Fields{
		"loanId":     loanID,
		"approverId": approverID,
	})

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return domain.Loan{}, err
	}
	if loan.Status != domain.LoanStatusPending {
		return domain.Loan{}, commons.ErrInvalidState
	}

	if interestRateOverride != nil {
		if interestRateOverride.LessThan(decimal.Zero) {
			return domain.Loan{}, commons.ErrInvalidAmount
		}
		loan.InterestRate = *interestRateOverride
		loan.MonthlyPayment = loancalc.MonthlyPayment(loan.PrincipalAmount, loan.InterestRate, loan.TermMonths)
	}

	now := time.Now()
	maturity := now.AddDate(0, loan.TermMonths, 0)
	loan.Status = domain.LoanStatusApproved
	loan.ApprovalDate = &now
	loan.ApprovedBy = &approverID
	loan.MaturityDate = &maturity
	loan.UpdatedAt = now

	approved, err := s.loanRepo.Update(ctx, loan)
	if err != nil {
		logger.Error("loan service approve failed", err, logger.Fields{
			"loanId": loanID,
		})
		return domain.Loan{}, err
	}

	logger.Info("loan service approve success", logger.Fields{
		"loanId":       approved.ID,
		"interestRate": approved.InterestRate,
	})

	return approved, nil
}

func (s *LoanService) Reject(ctx context.Context, approverID, loanID, reason string) (domain.Loan, error) {
	logger.Info("loan service reject request", logger.Fields{
		"loanId":     loanID,
		"approverId": approverID,
	})

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return domain.Loan{}, err
	}
	if loan.Status != domain.LoanStatusPending {
		return domain.Loan{}, commons.ErrInvalidState
	}

	now := time.Now()
	loan.Status = domain.LoanStatusRejected
	loan.ApprovedBy = &approverID
	loan.RejectionReason = &reason
	loan.UpdatedAt = now

	rejected, err := s.loanRepo.Update(ctx, loan)
	if err != nil {
		logger.Error("loan service reject failed", err, logger.Fields{
			"loanId": loanID,
		})
		return domain.Loan{}, err
	}

	return rejected, nil
}

func (s *LoanService) Disburse(ctx context.Context, loanID string) (domain.Loan, error) {
	logger.Info("loan service disburse request", logger.Fields{
		"loanId": loanID,
	})

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return domain.Loan{}, err
	}
	if loan.Status != domain.LoanStatusApproved {
		return domain.Loan{}, commons.ErrInvalidState
	}
	if loan.AccountID == nil {
		return domain.Loan{}, commons.ErrInvalidState
	}

	account, err := s.accountRepo.GetByID(ctx, *loan.AccountID)
	if err != nil {
		return domain.Loan{}, err
	}
	if account.Status != domain.AccountStatusActive {
		return domain.Loan{}, commons.ErrAccountNotActive
	}

	now := time.Now()
	maturity := now.AddDate(0, loan.TermMonths, 0)
	activated := loan
	activated.Status = domain.LoanStatusActive
	activated.DisbursementDate = &now
	activated.MaturityDate = &maturity
	activated.OutstandingBalance = loan.PrincipalAmount
	activated.UpdatedAt = now

	disbursed, txn, err := s.ledger.DisburseLoanPrincipal(ctx, activated, account)
	if err != nil {
		logger.Error("loan service disburse failed", err, logger.Fields{
			"loanId": loanID,
		})
		return domain.Loan{}, err
	}

	logger.Info("loan service disburse success", logger.Fields{
		"loanId":         disbursed.ID,
		"transactionRef": txn.TransactionRef,
	})

	return disbursed, nil
}

func (s *LoanService) Repay(ctx context.Context, callerID, loanID string, amount decimal.Decimal, paymentMethod string) (domain.LoanRepayment, domain.Loan, error) {
	logger.Info("loan service repay request", logger.Fields{
		"loanId": loanID,
		"amount": amount,
	})

	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.LoanRepayment{}, domain.Loan{}, commons.ErrInvalidAmount
	}

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return domain.LoanRepayment{}, domain.Loan{}, err
	}
	if loan.CustomerID != callerID {
		return domain.LoanRepayment{}, domain.Loan{}, commons.ErrUnauthorized
	}
	if loan.Status != domain.LoanStatusActive {
		return domain.LoanRepayment{}, domain.Loan{}, commons.ErrInvalidState
	}
	if amount.GreaterThan(loan.OutstandingBalance) {
		return domain.LoanRepayment{}, domain.Loan{}, commons.ErrExceedsBalance
	}

	var principalPortion, interestPortion decimal.Decimal
	if amount.Equal(loan.OutstandingBalance) {
		// Payoff: the full amount retires principal so the balance
		// lands exactly on zero.
		principalPortion = loan.OutstandingBalance
		interestPortion = decimal.Zero
	} else {
		principalPortion, interestPortion = loancalc.PaymentPortions(amount, loan.OutstandingBalance, loan.InterestRate)
		// A payment must at least cover the accrued interest; anything
		// smaller would grow the outstanding balance.
		if principalPortion.IsNegative() {
			return domain.LoanRepayment{}, domain.Loan{}, commons.ErrInvalidAmount
		}
	}

	now := time.Now()
	updated := loan
	updated.OutstandingBalance = loan.OutstandingBalance.Sub(principalPortion)
	updated.UpdatedAt = now
	if updated.OutstandingBalance.IsZero() {
		updated.Status = domain.LoanStatusClosed
	}

	repayment := domain.LoanRepayment{
		LoanID:          loan.ID,
		Amount:          amount,
		PrincipalAmount: principalPortion,
		InterestAmount:  interestPortion,
		PaymentDate:     now,
		PaymentMethod:   paymentMethod,
		Status:          domain.PaymentStatusCompleted,
	}

	var (
		settled domain.Loan
		posted  domain.LoanRepayment
	)
	for attempt := 0; attempt < refAttempts; attempt++ {
		repayment.PaymentRef = refgen.NewPaymentRef()
		settled, posted, err = s.loanRepo.PostRepayment(ctx, updated, repayment)
		if !errors.Is(err, commons.ErrDuplicateKey) {
			break
		}
	}
	if errors.Is(err, commons.ErrDuplicateKey) {
		return domain.LoanRepayment{}, domain.Loan{}, commons.ErrDuplicateReference
	}
	if err != nil {
		logger.Error("loan service repay failed", err, logger.Fields{
			"loanId": loanID,
		})
		return domain.LoanRepayment{}, domain.Loan{}, err
	}

	logger.Info("loan service repay success", logger.Fields{
		"loanId":      settled.ID,
		"paymentRef":  posted.PaymentRef,
		"outstanding": settled.OutstandingBalance,
		"status":      settled.Status,
	})

	return posted, settled, nil
}

func (s *LoanService) GetLoan(ctx context.Context, callerID, loanID string) (domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return domain.Loan{}, err
	}
	if loan.CustomerID != callerID {
		return domain.Loan{}, commons.ErrUnauthorized
	}
	return loan, nil
}

func (s *LoanService) ListLoans(ctx context.Context, callerID string) ([]domain.Loan, error) {
	return s.loanRepo.ListByCustomerID(ctx, callerID)
}

func (s *LoanService) ListRepayments(ctx context.Context, callerID, loanID string) ([]domain.LoanRepayment, decimal.Decimal, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, decimal.Decimal{}, err
	}
	if loan.CustomerID != callerID {
		return nil, decimal.Decimal{}, commons.ErrUnauthorized
	}

	repayments, err := s.repaymentRepo.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, decimal.Decimal{}, err
	}
	total, err := s.repaymentRepo.TotalRepaidForLoan(ctx, loanID)
	if err != nil {
		return nil, decimal.Decimal{}, err
	}
	return repayments, total, nil
}
