package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postTo credits acc and returns the entry recording it, stamped at at
func postTo(t *testing.T, acc *banking.Account, number string, amount int64, at time.Time) *banking.AccountTransaction {
	t.Helper()
	m, err := acc.Credit(decimal.NewFromInt(amount))
	require.NoError(t, err)
	return banking.NewAccountTransaction(number, acc, banking.TransactionTypeDeposit, decimal.NewFromInt(amount), m, at)
}

func TestGormAccountTransactionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormAccountTransactionRepository(newTestDatabase(t).DB)

	acc, err := banking.NewAccount("ACC20260101000001", uuid.New(), banking.AccountTypeSavings, decimal.Zero)
	require.NoError(t, err)

	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first := postTo(t, acc, "TXN20260301000001", 100, day)
	second := postTo(t, acc, "TXN20260302000001", 50, day.AddDate(0, 0, 1))
	third := postTo(t, acc, "TXN20260303000001", 25, day.AddDate(0, 0, 2))
	third.Annotate("salary", "TRF20260303000001", uuid.New())
	for _, tx := range []*banking.AccountTransaction{third, first, second} {
		require.NoError(t, repo.Append(ctx, tx))
	}

	t.Run("history is in sequence order", func(t *testing.T) {
		entries, err := repo.FindByAccount(ctx, acc.ID, shared.DateRange{})
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "TXN20260301000001", entries[0].TransactionNumber)
		assert.Equal(t, "175.00", entries[2].BalanceAfter.StringFixed(2))
		assert.Less(t, entries[0].Sequence, entries[1].Sequence)
	})

	t.Run("window is half open", func(t *testing.T) {
		entries, err := repo.FindByAccount(ctx, acc.ID, shared.DateRange{
			From: day.AddDate(0, 0, 1),
			To:   day.AddDate(0, 0, 2),
		})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "TXN20260302000001", entries[0].TransactionNumber)
	})

	t.Run("latest before a point in time", func(t *testing.T) {
		latest, err := repo.FindLatestBefore(ctx, acc.ID, day.AddDate(0, 0, 2))
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, "150.00", latest.BalanceAfter.StringFixed(2))

		none, err := repo.FindLatestBefore(ctx, acc.ID, day)
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("latest overall", func(t *testing.T) {
		latest, err := repo.FindLatest(ctx, acc.ID)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, "TXN20260303000001", latest.TransactionNumber)
		assert.Equal(t, acc.Balance.StringFixed(2), latest.BalanceAfter.StringFixed(2))

		none, err := repo.FindLatest(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("by reference", func(t *testing.T) {
		entries, err := repo.FindByReference(ctx, "TRF20260303000001")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "salary", entries[0].Description)
	})

	t.Run("transaction numbers are unique", func(t *testing.T) {
		dup := postTo(t, acc, "TXN20260301000001", 1, day.AddDate(0, 0, 3))
		assert.Error(t, repo.Append(ctx, dup))
	})
}

func TestGormLoanTransactionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormLoanTransactionRepository(newTestDatabase(t).DB)

	loan, err := banking.NewLoan("LN20260101000001", uuid.New(), banking.LoanTypeHome, decimal.NewFromInt(12000), decimal.NewFromInt(12), 12, repoTestStart)
	require.NoError(t, err)

	disbursement := banking.NewLoanTransaction("LNT20260101000001", loan, banking.TransactionTypeLoanDisbursement, loan.Principal,
		banking.Movement{Before: decimal.Zero, After: loan.Outstanding}, repoTestStart)
	require.NoError(t, repo.Append(ctx, disbursement))

	payment, err := loan.MakePayment(loan.EMI, decimal.RequireFromString("0.01"), repoTestStart.AddDate(0, 1, 0))
	require.NoError(t, err)
	entry := banking.NewLoanTransaction("LNT20260215000001", loan, banking.TransactionTypeLoanPayment, payment.Amount, payment.Movement, repoTestStart.AddDate(0, 1, 0))
	entry.InstallmentNumber = payment.Number
	entry.Principal = payment.Principal
	entry.Interest = payment.Interest
	require.NoError(t, repo.Append(ctx, entry))

	entries, err := repo.FindByLoan(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, banking.TransactionTypeLoanDisbursement, entries[0].Type)
	assert.Equal(t, 1, entries[1].InstallmentNumber)
	assert.Equal(t, "120.00", entries[1].Interest.StringFixed(2))
	assert.Equal(t, "946.19", entries[1].Principal.StringFixed(2))
}

func TestGormInterestCalculationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInterestCalculationRepository(newTestDatabase(t).DB)

	acc, err := banking.NewAccount("ACC20260101000002", uuid.New(), banking.AccountTypeSavings, decimal.NewFromInt(4))
	require.NoError(t, err)
	tx := postTo(t, acc, "TXN20260301000002", 10, time.Now())

	calc := banking.NewInterestCalculation(tx, acc.InterestRate, 30)
	require.NoError(t, repo.Create(ctx, calc))

	calcs, err := repo.FindByAccount(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, calcs, 1)
	assert.Equal(t, 30, calcs[0].Days)
	assert.Equal(t, tx.ID, calcs[0].TransactionID)
}
