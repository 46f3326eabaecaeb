package telemetry

import (
	"context"
	"fmt"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics counts committed postings and maturities. It subscribes to
// the event bus, so only work that actually committed is measured.
type LedgerMetrics struct {
	postings metric.Int64Counter
	amount   metric.Float64Histogram
	matured  metric.Int64Counter
}

// NewLedgerMetrics creates the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	postings, err := meter.Int64Counter("ledger.postings",
		metric.WithDescription("Ledger entries committed"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create ledger.postings: %w", err)
	}
	amount, err := meter.Float64Histogram("ledger.posting.amount",
		metric.WithDescription("Amount moved by a ledger entry"),
		metric.WithExplicitBucketBoundaries(100, 1000, 10000, 100000, 1000000),
	)
	if err != nil {
		return nil, fmt.Errorf("create ledger.posting.amount: %w", err)
	}
	matured, err := meter.Int64Counter("ledger.deposits.matured",
		metric.WithDescription("Deposits paid out at maturity"),
		metric.WithUnit("{deposit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create ledger.deposits.matured: %w", err)
	}
	return &LedgerMetrics{postings: postings, amount: amount, matured: matured}, nil
}

// EventTypes implements shared.EventHandler
func (m *LedgerMetrics) EventTypes() []string {
	return []string{banking.EventTypeTransactionPosted, banking.EventTypeDepositMatured}
}

// Handle implements shared.EventHandler
func (m *LedgerMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *banking.TransactionPostedEvent:
		attrs := metric.WithAttributes(
			attribute.String("entity_type", e.AggregateType()),
			attribute.String("transaction_type", string(e.TransactionType)),
		)
		m.postings.Add(ctx, 1, attrs)
		m.amount.Record(ctx, e.Amount.InexactFloat64(), attrs)
	case *banking.DepositMaturedEvent:
		m.matured.Add(ctx, 1, metric.WithAttributes(attribute.String("entity_type", e.AggregateType())))
	}
	return nil
}
