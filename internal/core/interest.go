package core

import (
	"github.com/shopspring/decimal"
)

// interestEpsilon is the recording threshold: computed interest at or
// below one cent is skipped entirely, matching the product behaviour of
// not cluttering a child's history with sub-cent interest lines.
var interestEpsilon = decimal.New(1, -2)

// exactMonthlyInterest returns balance * (rate/100) / 12 as an exact
// decimal in currency units.
func exactMonthlyInterest(balance Money, annualRatePercent float64) decimal.Decimal {
	return decimal.New(balance.Cents, -2).
		Mul(decimal.NewFromFloat(annualRatePercent)).
		Div(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(12))
}

// InterestDue reports whether one month of interest on balance at the
// given annual rate exceeds the recording threshold. The comparison uses
// the exact, unrounded value.
func InterestDue(balance Money, annualRatePercent float64) bool {
	return exactMonthlyInterest(balance, annualRatePercent).Cmp(interestEpsilon) > 0
}

// MonthlyInterest computes one month of interest on balance at the given
// annual percentage rate, rounded half-up to whole cents. The rounded
// amount is authoritative: it is both what the transaction records and
// what the balance gains, so the balance always equals the signed sum of
// its transactions.
func MonthlyInterest(balance Money, annualRatePercent float64) Money {
	cents := exactMonthlyInterest(balance, annualRatePercent).
		Mul(decimal.NewFromInt(100)).
		Round(0)
	return Money{Cents: cents.IntPart()}
}

// MonthStamp renders a year+month pair as the persisted interest marker
// form, e.g. "2026-02".
func MonthStamp(year, month int) string {
	return NewDate(year, month, 1).Format("2006-01")
}
