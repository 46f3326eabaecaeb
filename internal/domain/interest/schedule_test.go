package interest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmortizationSchedule(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rows := AmortizationSchedule(dec("12000"), dec("12"), 12, start)

	require.Len(t, rows, 12)
	assert.Equal(t, "120.00", rows[0].Interest.StringFixed(2))
	assert.Equal(t, "946.19", rows[0].Principal.StringFixed(2))
	assert.Equal(t, "11053.81", rows[0].Outstanding.StringFixed(2))
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), rows[0].DueDate)

	last := rows[11]
	assert.Equal(t, 12, last.Number)
	assert.True(t, last.Outstanding.IsZero())
	assert.Equal(t, "10.56", last.Interest.StringFixed(2))
	assert.Equal(t, "1055.58", last.Principal.StringFixed(2))

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Principal)
	}
	assert.Equal(t, "12000.00", total.StringFixed(2))
}

func TestAmortizationSchedule_Empty(t *testing.T) {
	assert.Empty(t, AmortizationSchedule(dec("12000"), dec("12"), 0, time.Now()))
	assert.Empty(t, AmortizationSchedule(decimal.Zero, dec("12"), 12, time.Now()))
}

func TestAccrualSchedule(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := AccrualSchedule(dec("1000"), dec("6"), 12, start)

	require.Len(t, rows, 12)
	assert.Equal(t, "1005.00", rows[0].Value.StringFixed(2))
	assert.Equal(t, "5.00", rows[0].Interest.StringFixed(2))
	assert.Equal(t, "1061.68", rows[11].Value.StringFixed(2))

	earned := decimal.Zero
	for _, row := range rows {
		earned = earned.Add(row.Interest)
	}
	assert.Equal(t, "61.68", earned.StringFixed(2))
}

func TestRecurringSchedule(t *testing.T) {
	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	rows := RecurringSchedule(dec("1000"), 6, start)

	require.Len(t, rows, 6)
	assert.Equal(t, start, rows[0].DueDate)
	assert.Equal(t, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), rows[5].DueDate)
	assert.Equal(t, 6, rows[5].Number)
}
