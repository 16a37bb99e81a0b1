package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/domain"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/logger"
	"github.com/shopspring/decimal"
)

type LoanRepaymentRepository struct {
	db *sql.DB
}

func NewLoanRepaymentRepository(db *sql.DB) *LoanRepaymentRepository {
	return &LoanRepaymentRepository{db: db}
}

func (r *LoanRepaymentRepository) ListByLoanID(ctx context.Context, loanID string) ([]domain.LoanRepayment, error) {
	const query = `
SELECT id, loan_id, payment_ref, amount, principal_amount, interest_amount, payment_date, payment_method, status
FROM loan_repayments
WHERE loan_id = $1
ORDER BY payment_date DESC`

	rows, err := r.db.QueryContext(ctx, query, loanID)
	if err != nil {
		logger.Error("loan repayment repository list failed", err, logger.Fields{
			"loanId": loanID,
		})
		return nil, fmt.Errorf("list loan repayments: %w", err)
	}
	defer rows.Close()

	repayments := make([]domain.LoanRepayment, 0)
	for rows.Next() {
		var repayment domain.LoanRepayment
		if err := rows.Scan(
			&repayment.ID,
			&repayment.LoanID,
			&repayment.PaymentRef,
			&repayment.Amount,
			&repayment.PrincipalAmount,
			&repayment.InterestAmount,
			&repayment.PaymentDate,
			&repayment.PaymentMethod,
			&repayment.Status,
		); err != nil {
			return nil, fmt.Errorf("scan loan repayment: %w", err)
		}
		repayments = append(repayments, repayment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loan repayments: %w", err)
	}

	return repayments, nil
}

func (r *LoanRepaymentRepository) TotalRepaidForLoan(ctx context.Context, loanID string) (decimal.Decimal, error) {
	const query = `
SELECT COALESCE(SUM(amount), 0)
FROM loan_repayments
WHERE loan_id = $1
  AND status = 'COMPLETED'`

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, loanID).Scan(&total); err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, nil
		}
		logger.Error("loan repayment repository total repaid failed", err, logger.Fields{
			"loanId": loanID,
		})
		return decimal.Zero, fmt.Errorf("total repaid for loan: %w", err)
	}

	return total, nil
}
