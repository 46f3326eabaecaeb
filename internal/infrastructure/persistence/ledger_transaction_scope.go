package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/corebank/backend/internal/application/ledger"
	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTransactionScope implements ledger.TransactionScope using GORM
// transactions. Each unit of work runs under the configured timeout; a zero
// timeout leaves the caller's deadline alone.
type GormTransactionScope struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB, timeout time.Duration) *GormTransactionScope {
	return &GormTransactionScope{db: db, timeout: timeout}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ledger.TransactionalRepositories) error) error {
	return s.run(ctx, nil, fn)
}

// ExecuteReadOnly runs fn within a transaction that is read-only on Postgres.
// Sqlite has no read-only transactions; a plain one still gives a single snapshot.
func (s *GormTransactionScope) ExecuteReadOnly(ctx context.Context, fn func(repos ledger.TransactionalRepositories) error) error {
	var opts *sql.TxOptions
	if isPostgres(s.db) {
		opts = &sql.TxOptions{ReadOnly: true}
	}
	return s.run(ctx, opts, fn)
}

func (s *GormTransactionScope) run(ctx context.Context, opts *sql.TxOptions, fn func(repos ledger.TransactionalRepositories) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	txFn := func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	}
	var err error
	if opts != nil {
		err = s.db.WithContext(ctx).Transaction(txFn, opts)
	} else {
		err = s.db.WithContext(ctx).Transaction(txFn)
	}
	return deadlineError(ctx, err)
}

// deadlineError makes a driver error caused by the unit of work's deadline
// recognisable as context.DeadlineExceeded
func deadlineError(ctx context.Context, err error) error {
	if err == nil || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
}

// gormTransactionalRepositories hands out repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) CustomerRepo() banking.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

func (r *gormTransactionalRepositories) AccountRepo() banking.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

func (r *gormTransactionalRepositories) FixedDepositRepo() banking.FixedDepositRepository {
	return NewGormFixedDepositRepository(r.tx)
}

func (r *gormTransactionalRepositories) RecurringDepositRepo() banking.RecurringDepositRepository {
	return NewGormRecurringDepositRepository(r.tx)
}

func (r *gormTransactionalRepositories) LoanRepo() banking.LoanRepository {
	return NewGormLoanRepository(r.tx)
}

func (r *gormTransactionalRepositories) AccountTransactionRepo() banking.AccountTransactionRepository {
	return NewGormAccountTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) FixedDepositTransactionRepo() banking.FixedDepositTransactionRepository {
	return NewGormFixedDepositTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) RecurringDepositTransactionRepo() banking.RecurringDepositTransactionRepository {
	return NewGormRecurringDepositTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) LoanTransactionRepo() banking.LoanTransactionRepository {
	return NewGormLoanTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) InterestCalculationRepo() banking.InterestCalculationRepository {
	return NewGormInterestCalculationRepository(r.tx)
}

func (r *gormTransactionalRepositories) NumberRegistry() banking.NumberRegistry {
	return NewGormNumberRegistry(r.tx)
}

var (
	_ ledger.TransactionScope          = (*GormTransactionScope)(nil)
	_ ledger.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
