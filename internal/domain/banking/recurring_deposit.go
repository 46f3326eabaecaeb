package banking

import (
	"strings"
	"time"

	"github.com/corebank/backend/internal/domain/interest"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurringDepositStatus represents the lifecycle of a recurring deposit
type RecurringDepositStatus string

const (
	RecurringDepositStatusActive    RecurringDepositStatus = "active"
	RecurringDepositStatusCompleted RecurringDepositStatus = "completed" // all installments paid
	RecurringDepositStatusClosed    RecurringDepositStatus = "closed"
)

// RecurringDeposit collects a fixed monthly installment for a fixed tenure
type RecurringDeposit struct {
	shared.BaseAggregateRoot
	RDNumber         string
	CustomerID       uuid.UUID
	MonthlyAmount    decimal.Decimal
	InterestRate     decimal.Decimal
	TenureMonths     int
	MaturityAmount   decimal.Decimal
	TotalPaid        decimal.Decimal
	InstallmentsPaid int
	StartDate        time.Time
	MaturityDate     time.Time
	Status           RecurringDepositStatus
	IsPremature      bool
	ClosedAt         *time.Time
	ClosureAmount    decimal.Decimal
}

// InstallmentReceipt is the result of paying into a recurring deposit
type InstallmentReceipt struct {
	Movement
	Number    int
	Completed bool
}

// NewRecurringDeposit creates an active recurring deposit with nothing paid
func NewRecurringDeposit(number string, customerID uuid.UUID, monthlyAmount, rate decimal.Decimal, tenureMonths int, start time.Time) (*RecurringDeposit, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("INVALID_NUMBER", "RD number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if err := validateTerms(monthlyAmount, rate, tenureMonths); err != nil {
		return nil, err
	}

	return &RecurringDeposit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RDNumber:          number,
		CustomerID:        customerID,
		MonthlyAmount:     monthlyAmount,
		InterestRate:      rate,
		TenureMonths:      tenureMonths,
		MaturityAmount:    interest.RDMaturity(monthlyAmount, rate, tenureMonths),
		TotalPaid:         decimal.Zero,
		StartDate:         start,
		MaturityDate:      interest.AddMonths(start, tenureMonths),
		Status:            RecurringDepositStatusActive,
		ClosureAmount:     decimal.Zero,
	}, nil
}

// ContractedTotal is monthly amount × tenure
func (rd *RecurringDeposit) ContractedTotal() decimal.Decimal {
	return rd.MonthlyAmount.Mul(decimal.NewFromInt(int64(rd.TenureMonths)))
}

// Remaining is what can still be paid in before the deposit completes
func (rd *RecurringDeposit) Remaining() decimal.Decimal {
	remaining := rd.ContractedTotal().Sub(rd.TotalPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// NextDueDate is the due date of the next unpaid installment
func (rd *RecurringDeposit) NextDueDate() time.Time {
	return interest.AddMonths(rd.StartDate, rd.InstallmentsPaid)
}

// PayInstallment records a payment. The deposit completes automatically once
// the contracted total has been paid.
func (rd *RecurringDeposit) PayInstallment(amount decimal.Decimal) (InstallmentReceipt, error) {
	if err := validateAmount(amount); err != nil {
		return InstallmentReceipt{}, err
	}
	if rd.Status != RecurringDepositStatusActive {
		return InstallmentReceipt{}, shared.NewDomainError("INVALID_STATE", "Recurring deposit is not active")
	}
	if amount.GreaterThan(rd.Remaining()) {
		return InstallmentReceipt{}, shared.NewDomainError("EXCEEDS_CONTRACT", "Installment exceeds the remaining contracted amount")
	}

	receipt := InstallmentReceipt{Movement: Movement{Before: rd.TotalPaid, After: rd.TotalPaid.Add(amount)}}
	rd.TotalPaid = receipt.After
	rd.InstallmentsPaid++
	receipt.Number = rd.InstallmentsPaid

	if rd.TotalPaid.GreaterThanOrEqual(rd.ContractedTotal()) {
		rd.Status = RecurringDepositStatusCompleted
		receipt.Completed = true
		rd.AddDomainEvent(NewDepositMaturedEvent(AggregateTypeRecurringDeposit, rd.ID, rd.RDNumber, rd.CustomerID, rd.MaturityAmount, rd.MaturityDate))
	}
	rd.IncrementVersion()
	return receipt, nil
}

// Close pays the deposit out: a completed deposit at its maturity amount, an
// active one at the penalised premature amount
func (rd *RecurringDeposit) Close(now time.Time, penaltyPoints decimal.Decimal) (Payout, error) {
	payout := Payout{Held: rd.TotalPaid}
	switch rd.Status {
	case RecurringDepositStatusCompleted:
		payout.Amount = rd.MaturityAmount
	case RecurringDepositStatusActive:
		payout.Amount = interest.PrematureRDAmount(rd.MonthlyAmount, rd.TotalPaid, rd.InterestRate, penaltyPoints)
		payout.Premature = true
	default:
		return Payout{}, shared.NewDomainError("INVALID_STATE", "Recurring deposit is already closed")
	}
	payout.Interest = payout.Amount.Sub(payout.Held)

	rd.Status = RecurringDepositStatusClosed
	rd.IsPremature = payout.Premature
	rd.ClosedAt = &now
	rd.ClosureAmount = payout.Amount
	rd.IncrementVersion()
	return payout, nil
}
