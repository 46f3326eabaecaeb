package banking

import (
	"context"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository persists customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByNumber(ctx context.Context, number string) (*Customer, error)
	Create(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, customer *Customer) error
}

// AccountRepository persists accounts. Update fails with a concurrency
// conflict when the stored version moved on.
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// FindByIDForUpdate loads the account and locks its row until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByNumber(ctx context.Context, number string) (*Account, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]Account, error)
	// FindInterestBearing returns active accounts with a positive rate and balance
	FindInterestBearing(ctx context.Context, filter shared.Filter) ([]Account, error)
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
}

// FixedDepositRepository persists fixed deposits
type FixedDepositRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FixedDeposit, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*FixedDeposit, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]FixedDeposit, error)
	// FindMaturingBetween returns active deposits whose maturity date is in [from, to)
	FindMaturingBetween(ctx context.Context, from, to time.Time) ([]FixedDeposit, error)
	Create(ctx context.Context, fd *FixedDeposit) error
	Update(ctx context.Context, fd *FixedDeposit) error
}

// RecurringDepositRepository persists recurring deposits
type RecurringDepositRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RecurringDeposit, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*RecurringDeposit, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]RecurringDeposit, error)
	FindActive(ctx context.Context) ([]RecurringDeposit, error)
	// FindMaturingBetween returns active or completed deposits whose maturity date is in [from, to)
	FindMaturingBetween(ctx context.Context, from, to time.Time) ([]RecurringDeposit, error)
	Create(ctx context.Context, rd *RecurringDeposit) error
	Update(ctx context.Context, rd *RecurringDeposit) error
}

// LoanRepository persists loans
type LoanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Loan, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]Loan, error)
	FindActive(ctx context.Context) ([]Loan, error)
	Create(ctx context.Context, loan *Loan) error
	Update(ctx context.Context, loan *Loan) error
}

// AccountTransactionRepository is the append-only account history
type AccountTransactionRepository interface {
	Append(ctx context.Context, tx *AccountTransaction) error
	// FindByAccount returns entries in sequence order, restricted to window
	FindByAccount(ctx context.Context, accountID uuid.UUID, window shared.DateRange) ([]AccountTransaction, error)
	// FindLatestBefore returns the last entry created before t, or nil
	FindLatestBefore(ctx context.Context, accountID uuid.UUID, t time.Time) (*AccountTransaction, error)
	// FindLatest returns the most recent entry, or nil
	FindLatest(ctx context.Context, accountID uuid.UUID) (*AccountTransaction, error)
	FindByReference(ctx context.Context, reference string) ([]AccountTransaction, error)
}

// FixedDepositTransactionRepository is the append-only fixed deposit history
type FixedDepositTransactionRepository interface {
	Append(ctx context.Context, tx *FixedDepositTransaction) error
	FindByFixedDeposit(ctx context.Context, fdID uuid.UUID) ([]FixedDepositTransaction, error)
}

// RecurringDepositTransactionRepository is the append-only recurring deposit history
type RecurringDepositTransactionRepository interface {
	Append(ctx context.Context, tx *RecurringDepositTransaction) error
	FindByRecurringDeposit(ctx context.Context, rdID uuid.UUID) ([]RecurringDepositTransaction, error)
}

// LoanTransactionRepository is the append-only loan history
type LoanTransactionRepository interface {
	Append(ctx context.Context, tx *LoanTransaction) error
	FindByLoan(ctx context.Context, loanID uuid.UUID) ([]LoanTransaction, error)
}

// InterestCalculationRepository stores interest audit rows
type InterestCalculationRepository interface {
	Create(ctx context.Context, calc *InterestCalculation) error
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]InterestCalculation, error)
}
