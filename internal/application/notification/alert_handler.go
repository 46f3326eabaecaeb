package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/corebank/backend/internal/application/ledger"
	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CustomerDirectory resolves the contact details of a customer
type CustomerDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ledger.CustomerDTO, error)
}

// AlertHandler sends a transaction alert for every posted ledger entry and a
// maturity alert for every matured deposit. Customers without an email
// address are skipped.
type AlertHandler struct {
	logger    *zap.Logger
	notifier  Notifier
	customers CustomerDirectory
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(notifier Notifier, customers CustomerDirectory, logger *zap.Logger) *AlertHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertHandler{logger: logger, notifier: notifier, customers: customers}
}

// EventTypes returns the event types this handler is interested in
func (h *AlertHandler) EventTypes() []string {
	return []string{banking.EventTypeTransactionPosted, banking.EventTypeDepositMatured}
}

// Handle sends the alert for one event. A failed delivery is returned so the
// bus can log it; the ledger operation itself has already committed.
func (h *AlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *banking.TransactionPostedEvent:
		return h.send(ctx, e.CustomerID, TemplateTransactionAlert, map[string]any{
			"entity_type":        e.AggregateType(),
			"entity_number":      e.EntityNumber,
			"transaction_number": e.TransactionNumber,
			"transaction_type":   string(e.TransactionType),
			"amount":             e.Amount,
			"balance":            e.BalanceAfter,
			"description":        e.Description,
			"posted_at":          e.OccurredAt(),
		})
	case *banking.DepositMaturedEvent:
		return h.send(ctx, e.CustomerID, TemplateMaturityAlert, maturityData(e.AggregateType(), e.DepositNumber, e.MaturityAmount, e.MaturityDate, false))
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

// SendMaturityReminder warns a customer that a deposit matures soon
func (h *AlertHandler) SendMaturityReminder(ctx context.Context, customerID uuid.UUID, kind, number string, amount decimal.Decimal, maturityDate time.Time) error {
	return h.send(ctx, customerID, TemplateMaturityAlert, maturityData(kind, number, amount, maturityDate, true))
}

func maturityData(kind, number string, amount decimal.Decimal, date time.Time, upcoming bool) map[string]any {
	return map[string]any{
		"entity_type":     kind,
		"entity_number":   number,
		"maturity_amount": amount,
		"maturity_date":   date,
		"upcoming":        upcoming,
	}
}

func (h *AlertHandler) send(ctx context.Context, customerID uuid.UUID, template string, data map[string]any) error {
	customer, err := h.customers.GetByID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("look up customer %s: %w", customerID, err)
	}
	if customer.Email == "" {
		h.logger.Debug("customer has no email, alert skipped",
			zap.String("customer_number", customer.CustomerNumber),
			zap.String("template", template),
		)
		return nil
	}

	data["customer_name"] = customer.FullName
	data["customer_number"] = customer.CustomerNumber
	if err := h.notifier.Send(ctx, Notification{Recipient: customer.Email, Template: template, Data: data}); err != nil {
		return fmt.Errorf("send %s to %s: %w", template, customer.CustomerNumber, err)
	}
	h.logger.Debug("alert sent",
		zap.String("customer_number", customer.CustomerNumber),
		zap.String("template", template),
	)
	return nil
}

var _ shared.EventHandler = (*AlertHandler)(nil)
