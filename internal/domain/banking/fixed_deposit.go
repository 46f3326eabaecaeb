package banking

import (
	"strings"
	"time"

	"github.com/corebank/backend/internal/domain/interest"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FixedDepositStatus represents the lifecycle of a fixed deposit
type FixedDepositStatus string

const (
	FixedDepositStatusActive  FixedDepositStatus = "active"
	FixedDepositStatusMatured FixedDepositStatus = "matured" // paid out at contracted maturity
	FixedDepositStatusClosed  FixedDepositStatus = "closed"  // broken before maturity
)

// IsTerminal returns true once the deposit has been paid out
func (s FixedDepositStatus) IsTerminal() bool {
	return s == FixedDepositStatusMatured || s == FixedDepositStatusClosed
}

// FixedDeposit is a lump sum compounding monthly for a fixed tenure
type FixedDeposit struct {
	shared.BaseAggregateRoot
	FDNumber       string
	CustomerID     uuid.UUID
	Principal      decimal.Decimal
	InterestRate   decimal.Decimal
	TenureMonths   int
	MaturityAmount decimal.Decimal
	// FundingAccountID is the account the principal was debited from, if any
	FundingAccountID *uuid.UUID
	StartDate        time.Time
	MaturityDate     time.Time
	Status           FixedDepositStatus
	IsPremature      bool
	ClosedAt         *time.Time
	ClosureAmount    decimal.Decimal
}

// Payout describes how a deposit was closed
type Payout struct {
	Amount    decimal.Decimal
	Interest  decimal.Decimal
	Held      decimal.Decimal
	Premature bool
}

// NewFixedDeposit creates an active fixed deposit starting at start
func NewFixedDeposit(number string, customerID uuid.UUID, principal, rate decimal.Decimal, tenureMonths int, start time.Time) (*FixedDeposit, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("INVALID_NUMBER", "FD number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if err := validateTerms(principal, rate, tenureMonths); err != nil {
		return nil, err
	}

	fd := &FixedDeposit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FDNumber:          number,
		CustomerID:        customerID,
		StartDate:         start,
		Status:            FixedDepositStatusActive,
		ClosureAmount:     decimal.Zero,
	}
	fd.applyTerms(principal, rate, tenureMonths)
	return fd, nil
}

func validateTerms(principal, rate decimal.Decimal, tenureMonths int) error {
	if err := validateAmount(principal); err != nil {
		return err
	}
	if !rate.IsPositive() {
		return shared.NewValidationError("INVALID_RATE", "Interest rate must be positive")
	}
	if tenureMonths <= 0 {
		return shared.NewValidationError("INVALID_TENURE", "Tenure must be at least one month")
	}
	return nil
}

func (fd *FixedDeposit) applyTerms(principal, rate decimal.Decimal, tenureMonths int) {
	fd.Principal = principal
	fd.InterestRate = rate
	fd.TenureMonths = tenureMonths
	fd.MaturityAmount = interest.CompoundMaturity(principal, rate, tenureMonths)
	fd.MaturityDate = interest.AddMonths(fd.StartDate, tenureMonths)
}

// FundFrom links the deposit to the account its principal came from
func (fd *FixedDeposit) FundFrom(accountID uuid.UUID) {
	fd.FundingAccountID = &accountID
}

// Update changes the terms of an active deposit and recomputes maturity. The
// returned movement is the principal held before and after.
func (fd *FixedDeposit) Update(principal, rate decimal.Decimal, tenureMonths int) (Movement, error) {
	if fd.Status != FixedDepositStatusActive {
		return Movement{}, shared.NewDomainError("INVALID_STATE", "Only active fixed deposits can be modified")
	}
	if err := validateTerms(principal, rate, tenureMonths); err != nil {
		return Movement{}, err
	}
	m := Movement{Before: fd.Principal, After: principal}
	fd.applyTerms(principal, rate, tenureMonths)
	fd.IncrementVersion()
	return m, nil
}

// IsDue reports whether the contracted maturity date has been reached
func (fd *FixedDeposit) IsDue(now time.Time) bool {
	return !now.Before(fd.MaturityDate)
}

// Close pays the deposit out. It matures at the contracted amount when due and
// not explicitly broken; otherwise it closes at the penalised amount for the
// whole months elapsed.
func (fd *FixedDeposit) Close(now time.Time, premature bool, penaltyPoints decimal.Decimal) (Payout, error) {
	if fd.Status != FixedDepositStatusActive {
		return Payout{}, shared.NewDomainError("INVALID_STATE", "Fixed deposit is not active")
	}

	payout := Payout{Held: fd.Principal}
	if !premature && fd.IsDue(now) {
		payout.Amount = fd.MaturityAmount
		fd.Status = FixedDepositStatusMatured
		fd.AddDomainEvent(NewDepositMaturedEvent(AggregateTypeFixedDeposit, fd.ID, fd.FDNumber, fd.CustomerID, fd.MaturityAmount, fd.MaturityDate))
	} else {
		elapsed := interest.WholeMonthsBetween(fd.StartDate, now)
		if elapsed > fd.TenureMonths {
			elapsed = fd.TenureMonths
		}
		payout.Amount = interest.PrematureFDAmount(fd.Principal, fd.InterestRate, penaltyPoints, elapsed)
		payout.Premature = true
		fd.Status = FixedDepositStatusClosed
	}
	payout.Interest = payout.Amount.Sub(payout.Held)

	fd.IsPremature = payout.Premature
	fd.ClosedAt = &now
	fd.ClosureAmount = payout.Amount
	fd.IncrementVersion()
	return payout, nil
}
