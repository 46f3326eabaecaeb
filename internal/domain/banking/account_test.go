package banking

import (
	"testing"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestAccount(t *testing.T) *Account {
	t.Helper()
	acc, err := NewAccount("ACC20240101000001", uuid.New(), AccountTypeSavings, dec("3.5"))
	require.NoError(t, err)
	return acc
}

func TestNewAccount(t *testing.T) {
	customerID := uuid.New()

	t.Run("successful creation", func(t *testing.T) {
		acc, err := NewAccount("ACC20240101000001", customerID, AccountTypeCurrent, dec("0"))
		require.NoError(t, err)
		assert.Equal(t, customerID, acc.CustomerID)
		assert.True(t, acc.Balance.IsZero())
		assert.True(t, acc.IsActive)
		assert.Equal(t, 1, acc.Version)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := NewAccount("ACC20240101000001", customerID, AccountType("checking"), dec("0"))
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("negative rate", func(t *testing.T) {
		_, err := NewAccount("ACC20240101000001", customerID, AccountTypeSavings, dec("-1"))
		require.Error(t, err)
	})

	t.Run("missing customer", func(t *testing.T) {
		_, err := NewAccount("ACC20240101000001", uuid.Nil, AccountTypeSavings, dec("1"))
		require.Error(t, err)
	})
}

func TestAccount_CreditDebit(t *testing.T) {
	acc := newTestAccount(t)

	m, err := acc.Credit(dec("500"))
	require.NoError(t, err)
	assert.Equal(t, "0.00", m.Before.StringFixed(2))
	assert.Equal(t, "500.00", m.After.StringFixed(2))
	assert.Equal(t, 2, acc.Version)

	m, err = acc.Debit(dec("200"))
	require.NoError(t, err)
	assert.Equal(t, "500.00", m.Before.StringFixed(2))
	assert.Equal(t, "300.00", acc.Balance.StringFixed(2))

	_, err = acc.Debit(dec("1000"))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	assert.True(t, shared.IsKind(err, shared.KindBusinessRule))
	assert.Equal(t, "300.00", acc.Balance.StringFixed(2))
	assert.Equal(t, 3, acc.Version)
}

func TestAccount_InvalidAmounts(t *testing.T) {
	acc := newTestAccount(t)

	for _, amount := range []string{"0", "-5", "1.001"} {
		_, err := acc.Credit(dec(amount))
		require.Error(t, err, amount)
		assert.True(t, shared.IsKind(err, shared.KindValidation), amount)
	}
	assert.True(t, acc.Balance.IsZero())
}

func TestAccount_Deactivate(t *testing.T) {
	acc := newTestAccount(t)
	_, err := acc.Credit(dec("10"))
	require.NoError(t, err)

	err = acc.Deactivate()
	require.Error(t, err)
	assert.True(t, acc.IsActive)

	_, err = acc.Debit(dec("10"))
	require.NoError(t, err)
	require.NoError(t, acc.Deactivate())
	assert.False(t, acc.IsActive)

	_, err = acc.Credit(dec("1"))
	assert.True(t, shared.IsKind(err, shared.KindNotFound))
}

func TestAccount_AccrueInterest(t *testing.T) {
	acc := newTestAccount(t)
	assert.True(t, acc.AccrueInterest(dec("3.65"), 1).IsZero())

	_, err := acc.Credit(dec("10000"))
	require.NoError(t, err)
	assert.Equal(t, "1.00", acc.AccrueInterest(dec("3.65"), 1).StringFixed(2))
	assert.True(t, acc.AccrueInterest(decimal.Zero, 1).IsZero())
}

func TestAccount_RestartAccrual(t *testing.T) {
	acc := newTestAccount(t)
	posted := testStart
	acc.MarkInterestPosted(posted)

	m, err := acc.Credit(dec("500"))
	require.NoError(t, err)
	refilled := testStart.AddDate(0, 10, 0)
	acc.RestartAccrual(m, refilled)
	require.NotNil(t, acc.LastInterestAt)
	assert.True(t, acc.LastInterestAt.Equal(refilled))

	m, err = acc.Credit(dec("100"))
	require.NoError(t, err)
	acc.RestartAccrual(m, refilled.AddDate(0, 0, 3))
	assert.True(t, acc.LastInterestAt.Equal(refilled), "a credit on a funded balance keeps the anchor")

	m, err = acc.Debit(dec("600"))
	require.NoError(t, err)
	acc.RestartAccrual(m, refilled.AddDate(0, 0, 5))
	assert.True(t, acc.LastInterestAt.Equal(refilled))
}
