package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/corebank/backend/internal/application/ledger"
	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("initial balance is recorded as a deposit", func(t *testing.T) {
		h := newHarness(t)
		res, err := h.accounts.Open(ctx, ledger.OpenAccountCommand{
			CustomerID:     h.customer(t),
			Type:           "salary",
			InitialBalance: dec("500"),
		})
		require.NoError(t, err)
		require.NotNil(t, res.Transaction)
		assert.Equal(t, "deposit", res.Transaction.Type)
		assert.Equal(t, "0.00", res.Transaction.BalanceBefore.StringFixed(2))
		assert.Equal(t, "500.00", res.Transaction.BalanceAfter.StringFixed(2))
		assert.Equal(t, "Initial deposit", res.Transaction.Description)
		assert.Regexp(t, `^ACC\d{14}$`, res.Account.AccountNumber)
		assert.Contains(t, h.audit.actions(), ledger.ActionAccountOpen)
	})

	t.Run("zero balance writes no transaction", func(t *testing.T) {
		h := newHarness(t)
		res, err := h.accounts.Open(ctx, ledger.OpenAccountCommand{CustomerID: h.customer(t), Type: "current"})
		require.NoError(t, err)
		assert.Nil(t, res.Transaction)

		latest, err := h.accounts.LatestTransaction(ctx, res.Account.ID)
		require.NoError(t, err)
		assert.Nil(t, latest)
	})

	t.Run("unknown customer is not found", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.accounts.Open(ctx, ledger.OpenAccountCommand{CustomerID: uuid.New(), Type: "savings"})
		assert.True(t, shared.IsKind(err, shared.KindNotFound))
	})

	t.Run("invalid type and negative balance fail validation", func(t *testing.T) {
		h := newHarness(t)
		customerID := h.customer(t)

		_, err := h.accounts.Open(ctx, ledger.OpenAccountCommand{CustomerID: customerID, Type: "brokerage"})
		assert.True(t, shared.IsKind(err, shared.KindValidation))

		_, err = h.accounts.Open(ctx, ledger.OpenAccountCommand{CustomerID: customerID, Type: "savings", InitialBalance: dec("-1")})
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})
}

func TestAccountService_DepositWithdraw(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	acc := h.account(t, h.customer(t), "0")

	dep, err := h.accounts.Deposit(ctx, ledger.AccountAmountCommand{AccountID: acc.ID, Amount: dec("1000")})
	require.NoError(t, err)
	assert.Equal(t, "1000.00", dep.Account.Balance.StringFixed(2))

	wd, err := h.accounts.Withdraw(ctx, ledger.AccountAmountCommand{AccountID: acc.ID, Amount: dec("250.50")})
	require.NoError(t, err)
	assert.Equal(t, "749.50", wd.Account.Balance.StringFixed(2))
	assert.Equal(t, "1000.00", wd.Transaction.BalanceBefore.StringFixed(2))
	assert.Equal(t, "749.50", wd.Transaction.BalanceAfter.StringFixed(2))

	t.Run("overdraw is rejected and leaves the balance", func(t *testing.T) {
		_, err := h.accounts.Withdraw(ctx, ledger.AccountAmountCommand{AccountID: acc.ID, Amount: dec("749.51")})
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
		assert.True(t, shared.IsKind(err, shared.KindBusinessRule))

		stored, err := h.accounts.GetByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, "749.50", stored.Balance.StringFixed(2))
	})

	t.Run("non-positive and sub-cent amounts fail validation", func(t *testing.T) {
		for _, amount := range []string{"0", "-5", "1.001"} {
			_, err := h.accounts.Deposit(ctx, ledger.AccountAmountCommand{AccountID: acc.ID, Amount: dec(amount)})
			assert.True(t, shared.IsKind(err, shared.KindValidation), amount)
		}
	})

	t.Run("latest transaction matches the stored balance", func(t *testing.T) {
		latest, err := h.accounts.LatestTransaction(ctx, acc.ID)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, "749.50", latest.BalanceAfter.StringFixed(2))
		assert.Equal(t, "withdrawal", latest.Type)
	})

	t.Run("events are published after commit", func(t *testing.T) {
		assert.Contains(t, h.events.types(), banking.EventTypeTransactionPosted)
	})
}

func TestAccountService_Transfer(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	customerID := h.customer(t)
	from := h.account(t, customerID, "1000")
	to := h.account(t, h.customer(t), "200")

	res, err := h.accounts.Transfer(ctx, ledger.TransferCommand{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        dec("300"),
	})
	require.NoError(t, err)
	assert.Regexp(t, `^TRF\d{14}$`, res.Reference)
	assert.Equal(t, res.Reference, res.TransferOut.Reference)
	assert.Equal(t, res.Reference, res.TransferIn.Reference)
	assert.Equal(t, "700.00", res.From.Balance.StringFixed(2))
	assert.Equal(t, "500.00", res.To.Balance.StringFixed(2))
	assert.True(t, res.TransferOut.Amount.Equal(res.TransferIn.Amount))

	t.Run("total is conserved", func(t *testing.T) {
		a, err := h.accounts.GetByID(ctx, from.ID)
		require.NoError(t, err)
		b, err := h.accounts.GetByID(ctx, to.ID)
		require.NoError(t, err)
		assert.Equal(t, "1200.00", a.Balance.Add(b.Balance).StringFixed(2))
	})

	t.Run("same account is rejected", func(t *testing.T) {
		_, err := h.accounts.Transfer(ctx, ledger.TransferCommand{FromAccountID: from.ID, ToAccountID: from.ID, Amount: dec("1")})
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("insufficient funds leaves both accounts", func(t *testing.T) {
		_, err := h.accounts.Transfer(ctx, ledger.TransferCommand{FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("700.01")})
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)

		b, err := h.accounts.GetByID(ctx, to.ID)
		require.NoError(t, err)
		assert.Equal(t, "500.00", b.Balance.StringFixed(2))
	})

	t.Run("unknown destination is not found", func(t *testing.T) {
		_, err := h.accounts.Transfer(ctx, ledger.TransferCommand{FromAccountID: from.ID, ToAccountID: uuid.New(), Amount: dec("1")})
		assert.True(t, shared.IsKind(err, shared.KindNotFound))
	})
}

func TestAccountService_ConcurrentTransfersConserve(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.account(t, h.customer(t), "1000")
	b := h.account(t, h.customer(t), "1000")

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			from, to := a.ID, b.ID
			if i%2 == 1 {
				from, to = to, from
			}
			_, _ = h.accounts.Transfer(ctx, ledger.TransferCommand{FromAccountID: from, ToAccountID: to, Amount: dec("10")})
		}()
	}
	wg.Wait()

	x, err := h.accounts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	y, err := h.accounts.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "2000.00", x.Balance.Add(y.Balance).StringFixed(2))
	assert.False(t, x.Balance.IsNegative())
	assert.False(t, y.Balance.IsNegative())
}

func TestAccountService_ApplyInterest(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	acc := h.account(t, h.customer(t), "10000")

	res, err := h.accounts.ApplyInterest(ctx, ledger.ApplyInterestCommand{AccountID: acc.ID, Days: 30})
	require.NoError(t, err)
	assert.True(t, res.Credited)
	assert.Equal(t, "32.88", res.Interest.StringFixed(2))
	assert.Equal(t, "10032.88", res.Account.Balance.StringFixed(2))
	require.NotNil(t, res.Calculation)
	assert.Equal(t, res.Transaction.ID, res.Calculation.TransactionID)
	assert.Equal(t, 30, res.Calculation.Days)
	require.NotNil(t, res.Account.LastInterestAt)
	assert.True(t, res.Account.LastInterestAt.Equal(testNow))

	t.Run("zero rate override credits nothing", func(t *testing.T) {
		zero := dec("0")
		res, err := h.accounts.ApplyInterest(ctx, ledger.ApplyInterestCommand{AccountID: acc.ID, RateOverride: &zero})
		require.NoError(t, err)
		assert.False(t, res.Credited)
		assert.Nil(t, res.Transaction)
		assert.Equal(t, "10032.88", res.Account.Balance.StringFixed(2))
	})

	t.Run("interest bearing listing", func(t *testing.T) {
		accounts, err := h.accounts.InterestBearingAccounts(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, acc.ID, accounts[0].ID)
	})
}

func TestAccountService_Deactivate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	acc := h.account(t, h.customer(t), "50")

	_, err := h.accounts.Deactivate(ctx, ledger.DeactivateAccountCommand{AccountID: acc.ID})
	assert.True(t, shared.IsKind(err, shared.KindBusinessRule))

	_, err = h.accounts.Withdraw(ctx, ledger.AccountAmountCommand{AccountID: acc.ID, Amount: dec("50")})
	require.NoError(t, err)

	dto, err := h.accounts.Deactivate(ctx, ledger.DeactivateAccountCommand{AccountID: acc.ID})
	require.NoError(t, err)
	assert.False(t, dto.IsActive)

	_, err = h.accounts.Deposit(ctx, ledger.AccountAmountCommand{AccountID: acc.ID, Amount: dec("1")})
	assert.True(t, shared.IsKind(err, shared.KindNotFound))
}

// historyFault picks the product history whose appends fail
type historyFault int

const (
	failAccountHistory historyFault = iota
	failFixedDepositHistory
	failRecurringDepositHistory
	failLoanHistory
)

// faultyScope runs the real transaction but fails every append to one history
type faultyScope struct {
	inner ledger.TransactionScope
	fail  historyFault
}

func (s faultyScope) Execute(ctx context.Context, fn func(repos ledger.TransactionalRepositories) error) error {
	return s.inner.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		return fn(faultyRepos{TransactionalRepositories: repos, fail: s.fail})
	})
}

func (s faultyScope) ExecuteReadOnly(ctx context.Context, fn func(repos ledger.TransactionalRepositories) error) error {
	return s.inner.ExecuteReadOnly(ctx, fn)
}

type faultyRepos struct {
	ledger.TransactionalRepositories
	fail historyFault
}

func (r faultyRepos) AccountTransactionRepo() banking.AccountTransactionRepository {
	repo := r.TransactionalRepositories.AccountTransactionRepo()
	if r.fail != failAccountHistory {
		return repo
	}
	return failingHistory{repo}
}

func (r faultyRepos) FixedDepositTransactionRepo() banking.FixedDepositTransactionRepository {
	repo := r.TransactionalRepositories.FixedDepositTransactionRepo()
	if r.fail != failFixedDepositHistory {
		return repo
	}
	return failingFixedDepositHistory{repo}
}

func (r faultyRepos) RecurringDepositTransactionRepo() banking.RecurringDepositTransactionRepository {
	repo := r.TransactionalRepositories.RecurringDepositTransactionRepo()
	if r.fail != failRecurringDepositHistory {
		return repo
	}
	return failingRecurringDepositHistory{repo}
}

func (r faultyRepos) LoanTransactionRepo() banking.LoanTransactionRepository {
	repo := r.TransactionalRepositories.LoanTransactionRepo()
	if r.fail != failLoanHistory {
		return repo
	}
	return failingLoanHistory{repo}
}

var errDiskFull = errors.New("disk full")

type failingHistory struct {
	banking.AccountTransactionRepository
}

func (failingHistory) Append(context.Context, *banking.AccountTransaction) error {
	return errDiskFull
}

type failingFixedDepositHistory struct {
	banking.FixedDepositTransactionRepository
}

func (failingFixedDepositHistory) Append(context.Context, *banking.FixedDepositTransaction) error {
	return errDiskFull
}

type failingRecurringDepositHistory struct {
	banking.RecurringDepositTransactionRepository
}

func (failingRecurringDepositHistory) Append(context.Context, *banking.RecurringDepositTransaction) error {
	return errDiskFull
}

type failingLoanHistory struct {
	banking.LoanTransactionRepository
}

func (failingLoanHistory) Append(context.Context, *banking.LoanTransaction) error {
	return errDiskFull
}

func TestLedger_HistoryFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	customerID := h.customer(t)
	from := h.account(t, customerID, "1000")
	to := h.account(t, customerID, "0")

	h.build(t, faultyScope{inner: h.scope})

	_, err := h.accounts.Deposit(ctx, ledger.AccountAmountCommand{AccountID: from.ID, Amount: dec("100")})
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindIntegrity))
	assert.Equal(t, "INTERNAL_ERROR", err.(*shared.DomainError).Code)
	assert.ErrorIs(t, err, errDiskFull)

	_, err = h.accounts.Transfer(ctx, ledger.TransferCommand{FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("100")})
	assert.True(t, shared.IsKind(err, shared.KindIntegrity))

	_, err = h.loans.Create(ctx, ledger.CreateLoanCommand{
		CustomerID: customerID, Type: "personal", Principal: dec("5000"), InterestRate: dec("10"), TenureMonths: 6,
		DisbursementAccountID: &to.ID,
	})
	assert.True(t, shared.IsKind(err, shared.KindIntegrity))

	h.build(t, h.scope)
	a, err := h.accounts.GetByID(ctx, from.ID)
	require.NoError(t, err)
	b, err := h.accounts.GetByID(ctx, to.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", a.Balance.StringFixed(2))
	assert.Equal(t, "0.00", b.Balance.StringFixed(2))

	latest, err := h.accounts.LatestTransaction(ctx, from.ID)
	require.NoError(t, err)
	assert.True(t, latest.BalanceAfter.Equal(a.Balance))
}
