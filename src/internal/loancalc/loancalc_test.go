package loancalc_test

import (
	"testing"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/loancalc"
	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMonthlyPayment(t *testing.T) {
	cases := []struct {
		name       string
		principal  string
		annualRate string
		termMonths int
		want       string
	}{
		{"standard twelve percent", "10000.00", "12.00", 12, "888.49"},
		{"zero rate splits evenly", "1000.00", "0", 10, "100.00"},
		{"zero rate rounds half up", "1000.00", "0", 3, "333.33"},
		{"mortgage rate", "250000.00", "7.50", 360, "1748.04"},
		{"zero term degenerate", "5000.00", "10.00", 0, "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := loancalc.MonthlyPayment(dec(tc.principal), dec(tc.annualRate), tc.termMonths)
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("MonthlyPayment(%s, %s, %d) = %s, want %s",
					tc.principal, tc.annualRate, tc.termMonths, got, tc.want)
			}
		})
	}
}

func TestPaymentPortions(t *testing.T) {
	// 12% annual on 10000 outstanding: interest = 10000 * 0.01 = 100.00
	principal, interest := loancalc.PaymentPortions(dec("888.49"), dec("10000.00"), dec("12.00"))
	if !interest.Equal(dec("100.00")) {
		t.Fatalf("interest portion = %s, want 100.00", interest)
	}
	if !principal.Equal(dec("788.49")) {
		t.Fatalf("principal portion = %s, want 788.49", principal)
	}
}

func TestPaymentPortionsClampsPrincipal(t *testing.T) {
	principal, interest := loancalc.PaymentPortions(dec("500.00"), dec("100.00"), dec("0"))
	if !interest.Equal(decimal.Zero) {
		t.Fatalf("interest portion = %s, want 0", interest)
	}
	if !principal.Equal(dec("100.00")) {
		t.Fatalf("principal portion = %s, want clamp to outstanding 100.00", principal)
	}
}

func TestPaymentPortionsPaymentBelowInterestGoesNegative(t *testing.T) {
	principal, interest := loancalc.PaymentPortions(dec("50.00"), dec("10000.00"), dec("12.00"))
	if !interest.Equal(dec("100.00")) {
		t.Fatalf("interest portion = %s, want 100.00", interest)
	}
	if !principal.IsNegative() {
		t.Fatalf("principal portion = %s, want negative so callers can reject the payment", principal)
	}
}

func TestPaymentPortionsInterestIndependentOfPayment(t *testing.T) {
	_, smallPaymentInterest := loancalc.PaymentPortions(dec("50.00"), dec("10000.00"), dec("12.00"))
	_, largePaymentInterest := loancalc.PaymentPortions(dec("5000.00"), dec("10000.00"), dec("12.00"))
	if !smallPaymentInterest.Equal(largePaymentInterest) {
		t.Fatalf("interest should depend only on outstanding balance: %s vs %s",
			smallPaymentInterest, largePaymentInterest)
	}
}

func TestTotalInterest(t *testing.T) {
	got := loancalc.TotalInterest(dec("10000.00"), dec("888.49"), 12)
	if !got.Equal(dec("661.88")) {
		t.Fatalf("TotalInterest = %s, want 661.88", got)
	}
}
