// Package loancalc holds the amortization math. Every function is pure:
// no persistence access, no side effects, deterministic for a given input.
package loancalc

import "github.com/shopspring/decimal"

const rateScale = 10

var (
	one     = decimal.NewFromInt(1)
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// MonthlyPayment computes the fixed monthly payment
// M = P * r * (1+r)^n / ((1+r)^n - 1), where r is the monthly rate
// annualRate/12/100. Rounded half-up to 2 decimal places.
//
// termMonths = 0 is a degenerate input and yields zero; callers are
// expected to reject it before getting here.
func MonthlyPayment(principal decimal.Decimal, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	if termMonths == 0 {
		return decimal.Zero
	}

	monthlyRate := monthlyRateOf(annualRate)
	if monthlyRate.IsZero() {
		return principal.DivRound(decimal.NewFromInt(int64(termMonths)), 2)
	}

	power := one.Add(monthlyRate).Pow(decimal.NewFromInt(int64(termMonths)))
	numerator := principal.Mul(monthlyRate).Mul(power)
	denominator := power.Sub(one)

	return numerator.DivRound(denominator, 2)
}

// PaymentPortions splits a payment into principal and interest. Interest
// is always charged against the current outstanding balance, independent
// of the payment amount; the principal portion is clamped so it never
// exceeds the outstanding balance. A payment below the accrued interest
// yields a negative principal portion; callers reject those.
func PaymentPortions(paymentAmount, outstandingBalance, annualRate decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	interestPortion := outstandingBalance.Mul(monthlyRateOf(annualRate)).Round(2)

	principalPortion := paymentAmount.Sub(interestPortion).Round(2)
	if principalPortion.GreaterThan(outstandingBalance) {
		principalPortion = outstandingBalance
	}

	return principalPortion, interestPortion
}

// TotalInterest is the interest paid over the whole term:
// monthlyPayment * termMonths - principal.
func TotalInterest(principal, monthlyPayment decimal.Decimal, termMonths int) decimal.Decimal {
	return monthlyPayment.Mul(decimal.NewFromInt(int64(termMonths))).Sub(principal)
}

func monthlyRateOf(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.DivRound(twelve, rateScale).DivRound(hundred, rateScale)
}
