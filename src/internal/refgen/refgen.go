// Package refgen produces human-readable references for transactions,
// loans, repayments and accounts. References are prefix + timestamp +
// random suffix; uniqueness is ultimately enforced by the store, callers
// retry once on a collision.
package refgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

func NewTransactionRef() string {
	now := time.Now()
	return fmt.Sprintf("TXN%s%03d%03d", now.Format("20060102150405"), now.Nanosecond()/1e6, randomInRange(100, 900))
}

func NewLoanNumber() string {
	return fmt.Sprintf("LOAN%s%05d", time.Now().Format("20060102"), randomInRange(10000, 90000))
}

func NewPaymentRef() string {
	return fmt.Sprintf("PAY%s%04d", time.Now().Format("20060102150405"), randomInRange(1000, 9000))
}

func NewAccountNumber() string {
	return fmt.Sprintf("%010d", time.Now().UnixNano()%10_000_000_000)
}

func randomInRange(base, span int64) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		// crypto/rand only fails when the platform source is broken;
		// fall back to the clock rather than panic.
		return base + time.Now().UnixNano()%span
	}
	return base + n.Int64()
}
