package interest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment is one row of a loan amortization schedule
type Installment struct {
	Number      int
	DueDate     time.Time
	Payment     decimal.Decimal
	Interest    decimal.Decimal
	Principal   decimal.Decimal
	Outstanding decimal.Decimal
}

// AmortizationSchedule replays a loan forward from its start date assuming every
// EMI is paid on time. Interest per period is outstanding × monthly rate rounded
// to cents, the same split MakePayment applies; the final row settles whatever
// remains so the schedule always ends at zero.
func AmortizationSchedule(principal, annualRatePercent decimal.Decimal, months int, start time.Time) []Installment {
	if months <= 0 || !principal.IsPositive() {
		return []Installment{}
	}
	emi := EMI(principal, annualRatePercent, months)
	r := MonthlyRate(annualRatePercent)
	outstanding := principal
	rows := make([]Installment, 0, months)
	for i := 1; i <= months && outstanding.IsPositive(); i++ {
		interestPart := RoundMoney(outstanding.Mul(r))
		principalPart := emi.Sub(interestPart)
		if principalPart.IsNegative() {
			principalPart = decimal.Zero
		}
		if i == months || principalPart.GreaterThan(outstanding) {
			principalPart = outstanding
		}
		outstanding = outstanding.Sub(principalPart)
		rows = append(rows, Installment{
			Number:      i,
			DueDate:     AddMonths(start, i),
			Payment:     interestPart.Add(principalPart),
			Interest:    interestPart,
			Principal:   principalPart,
			Outstanding: outstanding,
		})
	}
	return rows
}

// Accrual is the value of a fixed deposit at the end of one month
type Accrual struct {
	Month    int
	Date     time.Time
	Interest decimal.Decimal
	Value    decimal.Decimal
}

// AccrualSchedule lists the month-end value of a deposit compounding monthly.
// Each value is derived from the principal directly, so the last row equals
// CompoundMaturity for the full tenure.
func AccrualSchedule(principal, annualRatePercent decimal.Decimal, months int, start time.Time) []Accrual {
	if months <= 0 {
		return []Accrual{}
	}
	rows := make([]Accrual, 0, months)
	previous := RoundMoney(principal)
	for m := 1; m <= months; m++ {
		value := CompoundMaturity(principal, annualRatePercent, m)
		rows = append(rows, Accrual{
			Month:    m,
			Date:     AddMonths(start, m),
			Interest: value.Sub(previous),
			Value:    value,
		})
		previous = value
	}
	return rows
}

// DepositInstallment is one expected recurring deposit payment
type DepositInstallment struct {
	Number  int
	DueDate time.Time
	Amount  decimal.Decimal
}

// RecurringSchedule lists the monthly installments of a recurring deposit. The
// first installment falls due on the start date.
func RecurringSchedule(monthlyAmount decimal.Decimal, months int, start time.Time) []DepositInstallment {
	if months <= 0 {
		return []DepositInstallment{}
	}
	rows := make([]DepositInstallment, 0, months)
	for i := 1; i <= months; i++ {
		rows = append(rows, DepositInstallment{
			Number:  i,
			DueDate: AddMonths(start, i-1),
			Amount:  monthlyAmount,
		})
	}
	return rows
}
