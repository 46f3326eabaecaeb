package ledger

import (
	"context"

	"github.com/corebank/backend/internal/domain/banking"
)

// TransactionScope provides transactional access to the ledger repositories.
// Every ledger operation runs inside exactly one Execute call, so the entity
// update and the history append are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
	// ExecuteReadOnly runs fn within a read-only transaction so that every
	// query sees one consistent snapshot
	ExecuteReadOnly(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all ledger repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
//
// Entity repositories (customers, accounts, deposits, loans) and history
// repositories (one append-only table per product) are kept apart so the
// history can grow without slowing entity lookups.
type TransactionalRepositories interface {
	CustomerRepo() banking.CustomerRepository
	AccountRepo() banking.AccountRepository
	FixedDepositRepo() banking.FixedDepositRepository
	RecurringDepositRepo() banking.RecurringDepositRepository
	LoanRepo() banking.LoanRepository

	AccountTransactionRepo() banking.AccountTransactionRepository
	FixedDepositTransactionRepo() banking.FixedDepositTransactionRepository
	RecurringDepositTransactionRepo() banking.RecurringDepositTransactionRepository
	LoanTransactionRepo() banking.LoanTransactionRepository
	InterestCalculationRepo() banking.InterestCalculationRepository

	// NumberRegistry checks identifiers against the rows visible to this transaction
	NumberRegistry() banking.NumberRegistry
}
