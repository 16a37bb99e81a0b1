package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/commons"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/logger"
)

type LoanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

func (r *LoanRepository) Create(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	logger.Info("loan repository create", logger.Fields{
		"loanNumber": loan.LoanNumber,
		"customerId": loan.CustomerID,
		"loanType":   loan.LoanType,
	})

	const query = `
INSERT INTO loans (
	loan_number,
	customer_id,
	account_id,
	loan_type,
	principal_amount,
	interest_rate,
	term_months,
	monthly_payment,
	outstanding_balance,
	status,
	application_date,
	purpose,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id, version`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		loan.LoanNumber,
		loan.CustomerID,
		loan.AccountID,
		loan.LoanType,
		loan.PrincipalAmount,
		loan.InterestRate,
		loan.TermMonths,
		loan.MonthlyPayment,
		loan.OutstandingBalance,
		loan.Status,
		loan.ApplicationDate,
		loan.Purpose,
		loan.UpdatedAt,
	).Scan(&loan.ID, &loan.Version); err != nil {
		logger.Error("loan repository create failed", err, logger.Fields{
			"loanNumber": loan.LoanNumber,
		})
		return domain.Loan{}, fmt.Errorf("create loan: %w", translateError(err))
	}

	return loan, nil
}

const loanColumns = `id, loan_number, customer_id, account_id, loan_type, principal_amount, interest_rate, term_months, monthly_payment, outstanding_balance, status, application_date, approval_date, approved_by, disbursement_date, maturity_date, purpose, rejection_reason, version, updated_at`

func (r *LoanRepository) GetByID(ctx context.Context, id string) (domain.Loan, error) {
	const query = `
SELECT ` + loanColumns + `
FROM loans
WHERE id = $1`

	loan, err := scanLoan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Loan{}, commons.ErrRecordNotFound
		}
		logger.Error("loan repository get failed", err, logger.Fields{
			"loanId": id,
		})
		return domain.Loan{}, err
	}

	return loan, nil
}

func (r *LoanRepository) ListByCustomerID(ctx context.Context, customerID string) ([]domain.Loan, error) {
	const query = `
SELECT ` + loanColumns + `
FROM loans
WHERE customer_id = $1
ORDER BY application_date DESC`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		logger.Error("loan repository list failed", err, logger.Fields{
			"customerId": customerID,
		})
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	loans := make([]domain.Loan, 0)
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loans: %w", err)
	}

	return loans, nil
}

func scanLoan(row rowScanner) (domain.Loan, error) {
	var (
		loan             domain.Loan
		accountID        sql.NullString
		approvalDate     sql.NullTime
		approvedBy       sql.NullString
		disbursementDate sql.NullTime
		maturityDate     sql.NullTime
		rejectionReason  sql.NullString
	)

	if err := row.Scan(
		&loan.ID,
		&loan.LoanNumber,
		&loan.CustomerID,
		&accountID,
		&loan.LoanType,
		&loan.PrincipalAmount,
		&loan.InterestRate,
		&loan.TermMonths,
		&loan.MonthlyPayment,
		&loan.OutstandingBalance,
		&loan.Status,
		&loan.ApplicationDate,
		&approvalDate,
		&approvedBy,
		&disbursementDate,
		&maturityDate,
		&loan.Purpose,
		&rejectionReason,
		&loan.Version,
		&loan.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Loan{}, err
		}
		return domain.Loan{}, fmt.Errorf("scan loan: %w", err)
	}

	if accountID.Valid {
		value := accountID.String
		loan.AccountID = &value
	}
	if approvalDate.Valid {
		value := approvalDate.Time
		loan.ApprovalDate = &value
	}
	if approvedBy.Valid {
		value := approvedBy.String
		loan.ApprovedBy = &value
	}
	if disbursementDate.Valid {
		value := disbursementDate.Time
		loan.DisbursementDate = &value
	}
	if maturityDate.Valid {
		value := maturityDate.Time
		loan.MaturityDate = &value
	}
	if rejectionReason.Valid {
		value := rejectionReason.String
		loan.RejectionReason = &value
	}

	return loan, nil
}

func (r *LoanRepository) Update(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	logger.Info("loan repository update", logger.Fields{
		"loanId": loan.ID,
		"status": loan.Status,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Loan{}, fmt.Errorf("begin loan update: %w", err)
	}

	if err := casUpdateLoan(ctx, tx, &loan); err != nil {
		_ = tx.Rollback()
		return domain.Loan{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Loan{}, fmt.Errorf("commit loan update: %w", err)
	}

	return loan, nil
}

func (r *LoanRepository) PostRepayment(ctx context.Context, loan domain.Loan, repayment domain.LoanRepayment) (domain.Loan, domain.LoanRepayment, error) {
	logger.Info("loan repository post repayment", logger.Fields{
		"loanId":     loan.ID,
		"paymentRef": repayment.PaymentRef,
		"amount":     repayment.Amount,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Loan{}, domain.LoanRepayment{}, fmt.Errorf("begin repayment transaction: %w", err)
	}

	if err := casUpdateLoan(ctx, tx, &loan); err != nil {
		_ = tx.Rollback()
		return domain.Loan{}, domain.LoanRepayment{}, err
	}

	const insert = `
INSERT INTO loan_repayments (
	loan_id,
	payment_ref,
	amount,
	principal_amount,
	interest_amount,
	payment_date,
	payment_method,
	status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`

	if err := tx.QueryRowContext(
		ctx,
		insert,
		repayment.LoanID,
		repayment.PaymentRef,
		repayment.Amount,
		repayment.PrincipalAmount,
		repayment.InterestAmount,
		repayment.PaymentDate,
		repayment.PaymentMethod,
		repayment.Status,
	).Scan(&repayment.ID); err != nil {
		_ = tx.Rollback()
		return domain.Loan{}, domain.LoanRepayment{}, fmt.Errorf("insert loan repayment: %w", translateError(err))
	}

	if err := tx.Commit(); err != nil {
		return domain.Loan{}, domain.LoanRepayment{}, fmt.Errorf("commit repayment transaction: %w", err)
	}

	return loan, repayment, nil
}
