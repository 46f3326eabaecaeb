package banking

import (
	"strings"
	"time"

	"github.com/corebank/backend/internal/domain/interest"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType is the deposit account product
type AccountType string

const (
	AccountTypeSavings AccountType = "savings"
	AccountTypeCurrent AccountType = "current"
	AccountTypeSalary  AccountType = "salary"
)

// IsValid checks if the account type is known
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeCurrent, AccountTypeSalary:
		return true
	}
	return false
}

// Movement is a balance snapshot taken around one mutation
type Movement struct {
	Before decimal.Decimal
	After  decimal.Decimal
}

// Account is a customer deposit account whose balance never goes negative
type Account struct {
	shared.BaseAggregateRoot
	AccountNumber  string
	CustomerID     uuid.UUID
	Type           AccountType
	Balance        decimal.Decimal
	InterestRate   decimal.Decimal
	IsActive       bool
	LastInterestAt *time.Time
}

// NewAccount creates an active account with zero balance. An opening balance
// is applied afterwards through Credit so that it is recorded as a deposit.
func NewAccount(number string, customerID uuid.UUID, accountType AccountType, rate decimal.Decimal) (*Account, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("INVALID_NUMBER", "Account number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewValidationError("INVALID_ACCOUNT_TYPE", "Account type must be savings, current or salary")
	}
	if rate.IsNegative() {
		return nil, shared.NewValidationError("INVALID_RATE", "Interest rate cannot be negative")
	}

	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AccountNumber:     number,
		CustomerID:        customerID,
		Type:              accountType,
		Balance:           decimal.Zero,
		InterestRate:      rate,
		IsActive:          true,
	}, nil
}

// EnsureActive reports a deactivated account as not found
func (a *Account) EnsureActive() error {
	if !a.IsActive {
		return shared.NewNotFoundError("Account", a.AccountNumber)
	}
	return nil
}

// Credit adds a positive amount to the balance
func (a *Account) Credit(amount decimal.Decimal) (Movement, error) {
	if err := validateAmount(amount); err != nil {
		return Movement{}, err
	}
	if err := a.EnsureActive(); err != nil {
		return Movement{}, err
	}
	m := Movement{Before: a.Balance, After: a.Balance.Add(amount)}
	a.Balance = m.After
	a.IncrementVersion()
	return m, nil
}

// CanDebit checks a debit without applying it
func (a *Account) CanDebit(amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if err := a.EnsureActive(); err != nil {
		return err
	}
	if amount.GreaterThan(a.Balance) {
		return shared.ErrInsufficientBalance
	}
	return nil
}

// Debit removes a positive amount no larger than the balance
func (a *Account) Debit(amount decimal.Decimal) (Movement, error) {
	if err := a.CanDebit(amount); err != nil {
		return Movement{}, err
	}
	m := Movement{Before: a.Balance, After: a.Balance.Sub(amount)}
	a.Balance = m.After
	a.IncrementVersion()
	return m, nil
}

// AccrueInterest computes days of simple daily interest at rate. A zero amount
// means nothing is credited.
func (a *Account) AccrueInterest(rate decimal.Decimal, days int) decimal.Decimal {
	if !a.Balance.IsPositive() || !rate.IsPositive() {
		return decimal.Zero
	}
	return interest.DailyInterest(a.Balance, rate, days)
}

// MarkInterestPosted stamps the last interest date
func (a *Account) MarkInterestPosted(at time.Time) {
	a.LastInterestAt = &at
}

// RestartAccrual moves the interest anchor to at when m lifted the balance
// off zero. Days spent empty earn nothing.
func (a *Account) RestartAccrual(m Movement, at time.Time) {
	if m.Before.IsZero() && m.After.IsPositive() {
		a.LastInterestAt = &at
	}
}

// Deactivate soft-deletes the account; only an empty account may be deactivated
func (a *Account) Deactivate() error {
	if !a.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Account is already inactive")
	}
	if !a.Balance.IsZero() {
		return shared.NewDomainError("NON_ZERO_BALANCE", "Account balance must be zero before deactivation")
	}
	a.IsActive = false
	a.IncrementVersion()
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	if amount.Exponent() < -interest.MoneyPlaces && !amount.Equal(interest.RoundMoney(amount)) {
		return shared.NewValidationError("INVALID_AMOUNT", "Amount cannot have more than two decimal places")
	}
	return nil
}
