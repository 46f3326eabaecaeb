package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestLedgerMetrics_Handle(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewLedgerMetrics(provider.Meter("ledger"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{banking.EventTypeTransactionPosted, banking.EventTypeDepositMatured}, m.EventTypes())

	ctx := context.Background()
	entry := banking.LedgerEntry{
		ID:     uuid.New(),
		Type:   banking.TransactionTypeDeposit,
		Amount: decimal.RequireFromString("250.50"),
	}
	for range 3 {
		require.NoError(t, m.Handle(ctx, banking.NewTransactionPostedEvent(banking.AggregateTypeAccount, uuid.New(), "ACC1", entry)))
	}
	require.NoError(t, m.Handle(ctx, banking.NewDepositMaturedEvent(banking.AggregateTypeFixedDeposit, uuid.New(), "FD1", uuid.New(), decimal.NewFromInt(1061), time.Now())))

	data := collect(t, reader)

	postings, ok := data["ledger.postings"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, postings.DataPoints, 1)
	assert.Equal(t, int64(3), postings.DataPoints[0].Value)
	txType, _ := postings.DataPoints[0].Attributes.Value("transaction_type")
	assert.Equal(t, string(banking.TransactionTypeDeposit), txType.AsString())

	amounts, ok := data["ledger.posting.amount"].(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Equal(t, uint64(3), amounts.DataPoints[0].Count)
	assert.InDelta(t, 751.5, amounts.DataPoints[0].Sum, 0.001)

	matured, ok := data["ledger.deposits.matured"].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), matured.DataPoints[0].Value)
}
