package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// LoanRepayment rows are append-only.
type LoanRepayment struct {
	ID              string
	LoanID          string
	PaymentRef      string
	Amount          decimal.Decimal
	PrincipalAmount decimal.Decimal
	InterestAmount  decimal.Decimal
	PaymentDate     time.Time
	PaymentMethod   string
	Status          PaymentStatus
}
