package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanType string

const (
	LoanTypePersonal LoanType = "PERSONAL"
	LoanTypeBusiness LoanType = "BUSINESS"
	LoanTypeMortgage LoanType = "MORTGAGE"
)

// LoanStatus transitions are monotonic:
// PENDING -> APPROVED -> ACTIVE -> CLOSED, or PENDING -> REJECTED.
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "PENDING"
	LoanStatusApproved LoanStatus = "APPROVED"
	LoanStatusRejected LoanStatus = "REJECTED"
	LoanStatusActive   LoanStatus = "ACTIVE"
	LoanStatusClosed   LoanStatus = "CLOSED"
)

type Loan struct {
	ID                 string
	LoanNumber         string
	CustomerID         string
	AccountID          *string
	LoanType           LoanType
	PrincipalAmount    decimal.Decimal
	InterestRate       decimal.Decimal
	TermMonths         int
	MonthlyPayment     decimal.Decimal
	OutstandingBalance decimal.Decimal
	Status             LoanStatus
	ApplicationDate    time.Time
	ApprovalDate       *time.Time
	ApprovedBy         *string
	DisbursementDate   *time.Time
	MaturityDate       *time.Time
	Purpose            string
	RejectionReason    *string
	Version            int64
	UpdatedAt          time.Time
}
