package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corebank/backend/internal/application/ledger"
	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("commits entity and history together", func(t *testing.T) {
		db := newTestDatabase(t).DB
		scope := NewGormTransactionScope(db, time.Second)

		var accID uuid.UUID
		err := scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
			acc, err := banking.NewAccount("ACC20260101000001", uuid.New(), banking.AccountTypeSavings, decimal.Zero)
			if err != nil {
				return err
			}
			accID = acc.ID
			if err := repos.AccountRepo().Create(ctx, acc); err != nil {
				return err
			}
			m, err := acc.Credit(decimal.NewFromInt(100))
			if err != nil {
				return err
			}
			if err := repos.AccountRepo().Update(ctx, acc); err != nil {
				return err
			}
			return repos.AccountTransactionRepo().Append(ctx,
				banking.NewAccountTransaction("TXN20260101000001", acc, banking.TransactionTypeDeposit, decimal.NewFromInt(100), m, time.Now()))
		})
		require.NoError(t, err)

		acc, err := NewGormAccountRepository(db).FindByID(ctx, accID)
		require.NoError(t, err)
		latest, err := NewGormAccountTransactionRepository(db).FindLatest(ctx, accID)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.True(t, acc.Balance.Equal(latest.BalanceAfter))
	})

	t.Run("rolls back every write when fn fails", func(t *testing.T) {
		db := newTestDatabase(t).DB
		scope := NewGormTransactionScope(db, time.Second)
		boom := errors.New("history append failed")

		acc, err := banking.NewAccount("ACC20260101000002", uuid.New(), banking.AccountTypeSavings, decimal.Zero)
		require.NoError(t, err)

		err = scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
			if err := repos.AccountRepo().Create(ctx, acc); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = NewGormAccountRepository(db).FindByID(ctx, acc.ID)
		assert.True(t, shared.IsKind(err, shared.KindNotFound))
	})

	t.Run("read only scope sees committed rows", func(t *testing.T) {
		db := newTestDatabase(t).DB
		scope := NewGormTransactionScope(db, 0)
		customer, err := banking.NewCustomer("CUS20260101000001", "Ravi", "", "")
		require.NoError(t, err)
		require.NoError(t, NewGormCustomerRepository(db).Create(ctx, customer))

		err = scope.ExecuteReadOnly(ctx, func(repos ledger.TransactionalRepositories) error {
			found, err := repos.CustomerRepo().FindByNumber(ctx, "CUS20260101000001")
			if err != nil {
				return err
			}
			assert.Equal(t, customer.ID, found.ID)
			return nil
		})
		assert.NoError(t, err)
	})
}

func TestDeadlineError(t *testing.T) {
	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	driverErr := errors.New("sql: connection is already closed")

	t.Run("wraps driver errors after the deadline", func(t *testing.T) {
		err := deadlineError(expired, driverErr)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.ErrorIs(t, err, driverErr)
	})

	t.Run("leaves domain errors alone", func(t *testing.T) {
		err := deadlineError(expired, shared.ErrInsufficientBalance)
		assert.Same(t, shared.ErrInsufficientBalance, err)
	})

	t.Run("leaves errors alone before the deadline", func(t *testing.T) {
		assert.Same(t, driverErr, deadlineError(context.Background(), driverErr))
		assert.NoError(t, deadlineError(expired, nil))
	})
}
