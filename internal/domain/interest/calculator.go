// Package interest holds the pure arithmetic behind deposit maturity, loan EMI
// and premature-closure payouts. Nothing here touches storage or the clock.
package interest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Intermediate results keep this many decimal places; only final amounts are
// rounded to cents.
const workingPrecision int32 = 20

// MoneyPlaces is the number of decimal places money amounts are rounded to
const MoneyPlaces int32 = 2

var (
	hundred       = decimal.NewFromInt(100)
	twelveHundred = decimal.NewFromInt(1200)
	daysPerYear   = decimal.NewFromInt(365)
)

// RoundMoney rounds an amount half-up to cents
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// MonthlyRate converts an annual percentage rate to a monthly fraction (12% -> 0.01)
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.DivRound(twelveHundred, workingPrecision)
}

// growth returns (1+r)^n at working precision
func growth(r decimal.Decimal, n int) decimal.Decimal {
	base := decimal.NewFromInt(1).Add(r)
	result := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		result = result.Mul(base).Round(workingPrecision)
	}
	return result
}

// CompoundMaturity returns principal × (1 + rate/1200)^months rounded to cents.
// A non-positive tenure returns the principal unchanged.
func CompoundMaturity(principal, annualRatePercent decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 || !annualRatePercent.IsPositive() {
		return RoundMoney(principal)
	}
	return RoundMoney(principal.Mul(growth(MonthlyRate(annualRatePercent), months)))
}

// EMI returns the equated monthly installment P·r·(1+r)^n / ((1+r)^n − 1).
// With a zero rate the loan is repaid in equal principal slices.
func EMI(principal, annualRatePercent decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}
	if !annualRatePercent.IsPositive() {
		return principal.DivRound(decimal.NewFromInt(int64(months)), MoneyPlaces)
	}
	r := MonthlyRate(annualRatePercent)
	g := growth(r, months)
	numerator := principal.Mul(r).Mul(g)
	denominator := g.Sub(decimal.NewFromInt(1))
	return numerator.DivRound(denominator, workingPrecision).Round(MoneyPlaces)
}

// RDMaturity returns A × [((1+r)^n − 1)/r] × (1+r) for a recurring deposit of
// monthly amount A. With a zero rate it is simply A × n.
func RDMaturity(monthlyAmount, annualRatePercent decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(months))
	if !annualRatePercent.IsPositive() {
		return RoundMoney(monthlyAmount.Mul(n))
	}
	r := MonthlyRate(annualRatePercent)
	g := growth(r, months)
	factor := g.Sub(decimal.NewFromInt(1)).DivRound(r, workingPrecision)
	onePlusR := decimal.NewFromInt(1).Add(r)
	return RoundMoney(monthlyAmount.Mul(factor).Mul(onePlusR))
}

// PenalizedRate reduces an annual rate by penalty points, never below zero
func PenalizedRate(annualRatePercent, penaltyPoints decimal.Decimal) decimal.Decimal {
	effective := annualRatePercent.Sub(penaltyPoints)
	if effective.IsNegative() {
		return decimal.Zero
	}
	return effective
}

// PrematureFDAmount is the payout of a fixed deposit broken after elapsedMonths
// whole months, compounded at the penalised rate. Zero elapsed months pays back
// the principal.
func PrematureFDAmount(principal, annualRatePercent, penaltyPoints decimal.Decimal, elapsedMonths int) decimal.Decimal {
	if elapsedMonths <= 0 {
		return RoundMoney(principal)
	}
	return CompoundMaturity(principal, PenalizedRate(annualRatePercent, penaltyPoints), elapsedMonths)
}

// PrematureRDAmount is the payout of a recurring deposit closed early. Whole
// installments earn the penalised RD rate; anything paid beyond them is
// returned as is.
func PrematureRDAmount(monthlyAmount, totalPaid, annualRatePercent, penaltyPoints decimal.Decimal) decimal.Decimal {
	if !monthlyAmount.IsPositive() || !totalPaid.IsPositive() {
		return RoundMoney(totalPaid)
	}
	whole := int(totalPaid.Div(monthlyAmount).IntPart())
	if whole == 0 {
		return RoundMoney(totalPaid)
	}
	remainder := totalPaid.Sub(monthlyAmount.Mul(decimal.NewFromInt(int64(whole))))
	accrued := RDMaturity(monthlyAmount, PenalizedRate(annualRatePercent, penaltyPoints), whole)
	return RoundMoney(accrued.Add(remainder))
}

// DailyInterest is balance × rate/365/100 × days rounded to cents
func DailyInterest(balance, annualRatePercent decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	daily := annualRatePercent.DivRound(daysPerYear, workingPrecision).DivRound(hundred, workingPrecision)
	return RoundMoney(balance.Mul(daily).Mul(decimal.NewFromInt(int64(days))))
}

// WholeMonthsBetween counts completed calendar months from start to end.
// A month is complete once the day of month (or month end) is reached.
func WholeMonthsBetween(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	if AddMonths(start, months).After(end) {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// AddMonths adds n calendar months, clamping to the last day of the target
// month instead of overflowing into the next one (31 Jan + 1 = 28/29 Feb).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := target.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
