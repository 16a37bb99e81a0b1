package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
)

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction rows are append-only: once persisted they are never
// updated or deleted.
type Transaction struct {
	ID                   string
	TransactionRef       string
	SourceAccountID      *string
	DestinationAccountID *string
	TransactionType      TransactionType
	Amount               decimal.Decimal
	Currency             string
	Description          string
	Status               TransactionStatus
	CreatedAt            time.Time
}
