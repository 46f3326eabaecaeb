package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/corebank/backend/internal/application/ledger"
	"github.com/corebank/backend/internal/infrastructure/cache"
	"github.com/corebank/backend/internal/infrastructure/config"
	"github.com/corebank/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDailyInterest_RefilledAccountEarnsFromRefill(t *testing.T) {
	ctx := context.Background()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC)
	cfg := ledger.Config{
		Scope:  persistence.NewGormTransactionScope(db.DB, 5*time.Second),
		Logger: zaptest.NewLogger(t),
		Now:    func() time.Time { return now },
	}
	customers := ledger.NewCustomerService(cfg)
	accounts := ledger.NewAccountService(cfg)

	customer, err := customers.Register(ctx, ledger.RegisterCustomerCommand{FullName: "Farah Khan"})
	require.NoError(t, err)
	opened, err := accounts.Open(ctx, ledger.OpenAccountCommand{
		CustomerID:     customer.ID,
		Type:           "savings",
		InterestRate:   decimal.NewFromInt(5),
		InitialBalance: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	accID := opened.Account.ID

	// empty from January until the end of November
	_, err = accounts.Withdraw(ctx, ledger.AccountAmountCommand{AccountID: accID, Amount: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	now = time.Date(2026, 11, 30, 15, 0, 0, 0, time.UTC)
	refilled, err := accounts.Deposit(ctx, ledger.AccountAmountCommand{AccountID: accID, Amount: decimal.NewFromInt(1000000)})
	require.NoError(t, err)
	require.NotNil(t, refilled.Account.LastInterestAt)
	assert.True(t, refilled.Account.LastInterestAt.Equal(now))

	now = time.Date(2026, 12, 1, 1, 0, 0, 0, time.UTC)
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	s, err := New(config.SchedulerConfig{}, Deps{
		Interest: accounts,
		Maturer:  &fakeMaturer{},
		Reports:  &fakeReporter{},
		Alerts:   &fakeAlerts{},
		Store:    store,
	}, zaptest.NewLogger(t), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	run, err := s.RunNow(ctx, JobDailyInterest)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Processed)

	got, err := accounts.GetByID(ctx, accID)
	require.NoError(t, err)
	// one day at 5% on 1,000,000
	assert.Equal(t, "1000136.99", got.Balance.StringFixed(2))
}
