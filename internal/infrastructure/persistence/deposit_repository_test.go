package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoTestStart = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func TestGormFixedDepositRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormFixedDepositRepository(newTestDatabase(t).DB)
	customerID := uuid.New()

	short, err := banking.NewFixedDeposit("FD20260115000001", customerID, decimal.NewFromInt(1000), decimal.NewFromInt(6), 3, repoTestStart)
	require.NoError(t, err)
	long, err := banking.NewFixedDeposit("FD20260115000002", customerID, decimal.NewFromInt(5000), decimal.NewFromInt(7), 12, repoTestStart)
	require.NoError(t, err)
	fundingID := uuid.New()
	long.FundFrom(fundingID)
	require.NoError(t, repo.Create(ctx, short))
	require.NoError(t, repo.Create(ctx, long))

	t.Run("round trips terms", func(t *testing.T) {
		fd, err := repo.FindByID(ctx, long.ID)
		require.NoError(t, err)
		assert.Equal(t, long.MaturityAmount.StringFixed(2), fd.MaturityAmount.StringFixed(2))
		assert.True(t, fd.MaturityDate.Equal(long.MaturityDate))
		assert.Equal(t, banking.FixedDepositStatusActive, fd.Status)
		require.NotNil(t, fd.FundingAccountID)
		assert.Equal(t, fundingID, *fd.FundingAccountID)

		unfunded, err := repo.FindByID(ctx, short.ID)
		require.NoError(t, err)
		assert.Nil(t, unfunded.FundingAccountID)
	})

	t.Run("maturing window is half open", func(t *testing.T) {
		found, err := repo.FindMaturingBetween(ctx, repoTestStart, short.MaturityDate)
		require.NoError(t, err)
		assert.Empty(t, found)

		found, err = repo.FindMaturingBetween(ctx, repoTestStart, short.MaturityDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "FD20260115000001", found[0].FDNumber)
	})

	t.Run("closed deposits leave the maturing list", func(t *testing.T) {
		fd, err := repo.FindByIDForUpdate(ctx, short.ID)
		require.NoError(t, err)
		_, err = fd.Close(short.MaturityDate, false, decimal.NewFromInt(1))
		require.NoError(t, err)
		require.NoError(t, repo.Update(ctx, fd))

		found, err := repo.FindMaturingBetween(ctx, repoTestStart, long.MaturityDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "FD20260115000002", found[0].FDNumber)

		all, err := repo.FindByCustomer(ctx, customerID)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestGormRecurringDepositRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRecurringDepositRepository(newTestDatabase(t).DB)

	rd, err := banking.NewRecurringDeposit("RD20260115000001", uuid.New(), decimal.NewFromInt(1000), decimal.NewFromInt(6), 2, repoTestStart)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, rd))

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	stored, err := repo.FindByIDForUpdate(ctx, rd.ID)
	require.NoError(t, err)
	for range 2 {
		_, err = stored.PayInstallment(decimal.NewFromInt(1000))
		require.NoError(t, err)
	}
	require.NoError(t, repo.Update(ctx, stored))

	active, err = repo.FindActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	maturing, err := repo.FindMaturingBetween(ctx, repoTestStart, rd.MaturityDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, maturing, 1, "completed deposits still mature")
	assert.Equal(t, banking.RecurringDepositStatusCompleted, maturing[0].Status)
	assert.Equal(t, 2, maturing[0].InstallmentsPaid)
}

func TestGormLoanRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormLoanRepository(newTestDatabase(t).DB)

	loan, err := banking.NewLoan("LN20260115000001", uuid.New(), banking.LoanTypePersonal, decimal.NewFromInt(12000), decimal.NewFromInt(12), 12, repoTestStart)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, loan))

	stored, err := repo.FindByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "1066.19", stored.EMI.StringFixed(2))

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = stored.Foreclose(repoTestStart.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, stored))

	active, err = repo.FindActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}
