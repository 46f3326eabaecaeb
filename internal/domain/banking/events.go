package banking

import (
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type names used in events, audit entries and errors
const (
	AggregateTypeCustomer         = "Customer"
	AggregateTypeAccount          = "Account"
	AggregateTypeFixedDeposit     = "FixedDeposit"
	AggregateTypeRecurringDeposit = "RecurringDeposit"
	AggregateTypeLoan             = "Loan"
)

// Event type constants
const (
	EventTypeTransactionPosted = "TransactionPosted"
	EventTypeDepositMatured    = "DepositMatured"
)

// TransactionPostedEvent is raised for every ledger entry once its unit of
// work has committed
type TransactionPostedEvent struct {
	shared.BaseDomainEvent
	EntityNumber      string          `json:"entity_number"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	TransactionID     uuid.UUID       `json:"transaction_id"`
	TransactionNumber string          `json:"transaction_number"`
	TransactionType   TransactionType `json:"transaction_type"`
	Amount            decimal.Decimal `json:"amount"`
	BalanceBefore     decimal.Decimal `json:"balance_before"`
	BalanceAfter      decimal.Decimal `json:"balance_after"`
	Description       string          `json:"description"`
}

// NewTransactionPostedEvent creates the event for a ledger entry
func NewTransactionPostedEvent(aggType string, aggID uuid.UUID, entityNumber string, entry LedgerEntry) *TransactionPostedEvent {
	return &TransactionPostedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeTransactionPosted, aggType, aggID),
		EntityNumber:      entityNumber,
		CustomerID:        entry.CustomerID,
		TransactionID:     entry.ID,
		TransactionNumber: entry.TransactionNumber,
		TransactionType:   entry.Type,
		Amount:            entry.Amount,
		BalanceBefore:     entry.BalanceBefore,
		BalanceAfter:      entry.BalanceAfter,
		Description:       entry.Description,
	}
}

// DepositMaturedEvent is raised when a fixed deposit matures or a recurring
// deposit receives its final installment
type DepositMaturedEvent struct {
	shared.BaseDomainEvent
	DepositNumber  string          `json:"deposit_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	MaturityAmount decimal.Decimal `json:"maturity_amount"`
	MaturityDate   time.Time       `json:"maturity_date"`
}

// NewDepositMaturedEvent creates a new DepositMaturedEvent
func NewDepositMaturedEvent(aggType string, aggID uuid.UUID, number string, customerID uuid.UUID, amount decimal.Decimal, maturityDate time.Time) *DepositMaturedEvent {
	return &DepositMaturedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepositMatured, aggType, aggID),
		DepositNumber:   number,
		CustomerID:      customerID,
		MaturityAmount:  amount,
		MaturityDate:    maturityDate,
	}
}
