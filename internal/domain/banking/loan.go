package banking

import (
	"strings"
	"time"

	"github.com/corebank/backend/internal/domain/interest"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanType is the loan product
type LoanType string

const (
	LoanTypePersonal  LoanType = "personal"
	LoanTypeHome      LoanType = "home"
	LoanTypeVehicle   LoanType = "vehicle"
	LoanTypeEducation LoanType = "education"
	LoanTypeBusiness  LoanType = "business"
	LoanTypeGold      LoanType = "gold"
)

// IsValid checks if the loan type is known
func (t LoanType) IsValid() bool {
	switch t {
	case LoanTypePersonal, LoanTypeHome, LoanTypeVehicle, LoanTypeEducation, LoanTypeBusiness, LoanTypeGold:
		return true
	}
	return false
}

// LoanStatus represents the lifecycle of a loan
type LoanStatus string

const (
	LoanStatusActive     LoanStatus = "active"
	LoanStatusClosed     LoanStatus = "closed"     // repaid through installments
	LoanStatusForeclosed LoanStatus = "foreclosed" // settled early
)

// Loan is an amortizing loan repaid by equated monthly installments
type Loan struct {
	shared.BaseAggregateRoot
	LoanNumber   string
	CustomerID   uuid.UUID
	Type         LoanType
	Principal    decimal.Decimal
	InterestRate decimal.Decimal
	TenureMonths int
	EMI          decimal.Decimal
	TotalPayable decimal.Decimal
	Outstanding  decimal.Decimal
	PaymentsMade int
	TotalPaid    decimal.Decimal
	StartDate    time.Time
	Status       LoanStatus
	ClosedAt     *time.Time
}

// LoanPayment is the split of one payment into interest and principal.
// Amount is what the loan took, which is below the tendered amount only when
// a final installment exceeds the payoff.
type LoanPayment struct {
	Movement
	Number    int
	Amount    decimal.Decimal
	Interest  decimal.Decimal
	Principal decimal.Decimal
	Closed    bool
}

// NewLoan creates an active loan with the full principal outstanding
func NewLoan(number string, customerID uuid.UUID, loanType LoanType, principal, rate decimal.Decimal, tenureMonths int, start time.Time) (*Loan, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("INVALID_NUMBER", "Loan number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !loanType.IsValid() {
		return nil, shared.NewValidationError("INVALID_LOAN_TYPE", "Unknown loan type")
	}
	if err := validateAmount(principal); err != nil {
		return nil, err
	}
	if rate.IsNegative() {
		return nil, shared.NewValidationError("INVALID_RATE", "Interest rate cannot be negative")
	}
	if tenureMonths <= 0 {
		return nil, shared.NewValidationError("INVALID_TENURE", "Tenure must be at least one month")
	}

	emi := interest.EMI(principal, rate, tenureMonths)
	return &Loan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LoanNumber:        number,
		CustomerID:        customerID,
		Type:              loanType,
		Principal:         principal,
		InterestRate:      rate,
		TenureMonths:      tenureMonths,
		EMI:               emi,
		TotalPayable:      emi.Mul(decimal.NewFromInt(int64(tenureMonths))),
		Outstanding:       principal,
		TotalPaid:         decimal.Zero,
		StartDate:         start,
		Status:            LoanStatusActive,
	}, nil
}

// PeriodInterest is the interest owed on the current outstanding for one month
func (l *Loan) PeriodInterest() decimal.Decimal {
	return interest.RoundMoney(l.Outstanding.Mul(interest.MonthlyRate(l.InterestRate)))
}

// Payoff is what settles the loan in the current period
func (l *Loan) Payoff() decimal.Decimal {
	return l.Outstanding.Add(l.PeriodInterest())
}

// NextDueDate is the due date of the next installment
func (l *Loan) NextDueDate() time.Time {
	return interest.AddMonths(l.StartDate, l.PaymentsMade+1)
}

// MakePayment applies a payment: interest on the outstanding is taken first and
// the rest reduces principal. Payments above max(EMI, payoff) are rejected. An
// installment of up to one EMI that exceeds the payoff settles the loan and
// takes only the payoff. The loan closes once the outstanding is within
// tolerance.
func (l *Loan) MakePayment(amount, tolerance decimal.Decimal, now time.Time) (LoanPayment, error) {
	if err := validateAmount(amount); err != nil {
		return LoanPayment{}, err
	}
	if l.Status != LoanStatusActive {
		return LoanPayment{}, shared.NewDomainError("INVALID_STATE", "Loan is not active")
	}
	payoff := l.Payoff()
	if amount.GreaterThan(decimal.Max(l.EMI, payoff)) {
		return LoanPayment{}, shared.ErrExceedsOutstanding
	}

	p := LoanPayment{Movement: Movement{Before: l.Outstanding}, Amount: decimal.Min(amount, payoff)}
	p.Interest = l.PeriodInterest()
	p.Principal = p.Amount.Sub(p.Interest)
	if p.Principal.IsNegative() {
		p.Principal = decimal.Zero
	}

	l.Outstanding = l.Outstanding.Sub(p.Principal)
	l.PaymentsMade++
	l.TotalPaid = l.TotalPaid.Add(p.Amount)
	p.Number = l.PaymentsMade

	if l.Outstanding.LessThanOrEqual(tolerance) {
		// residue within tolerance is written off as principal
		p.Principal = p.Principal.Add(l.Outstanding)
		l.Outstanding = decimal.Zero
		l.Status = LoanStatusClosed
		l.ClosedAt = &now
		p.Closed = true
	}
	p.After = l.Outstanding
	l.IncrementVersion()
	return p, nil
}

// Foreclose settles the loan early, forcing the outstanding to zero. It
// returns the outstanding that was written off.
func (l *Loan) Foreclose(now time.Time) (Movement, error) {
	if l.Status != LoanStatusActive {
		return Movement{}, shared.NewDomainError("INVALID_STATE", "Loan is not active")
	}
	m := Movement{Before: l.Outstanding, After: decimal.Zero}
	l.TotalPaid = l.TotalPaid.Add(l.Outstanding)
	l.Outstanding = decimal.Zero
	l.Status = LoanStatusForeclosed
	l.ClosedAt = &now
	l.IncrementVersion()
	return m, nil
}
