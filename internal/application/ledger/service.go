// Package ledger implements the balance-mutating operations of the bank: every
// operation locks its entity, mutates it, appends a history entry and commits
// all of it as one unit of work.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/corebank/backend/internal/application/ledger")

// minTime is the open lower bound for date range queries
var minTime = time.Unix(0, 0).UTC()

// Config holds the collaborators shared by all ledger services
type Config struct {
	Scope   TransactionScope
	Numbers *banking.NumberGenerator
	// Policy defaults to banking.DefaultPolicy when nil
	Policy    *banking.Policy
	Audit     AuditLogger
	Events    shared.EventPublisher
	Validator *CommandValidator
	Logger    *zap.Logger
	// Now is the clock used for dates; defaults to time.Now
	Now func() time.Time
}

// core carries what every service needs to run a unit of work
type core struct {
	scope    TransactionScope
	numbers  *banking.NumberGenerator
	policy   banking.Policy
	audit    AuditLogger
	events   shared.EventPublisher
	validate *CommandValidator
	logger   *zap.Logger
	now      func() time.Time
}

func newCore(cfg Config) core {
	c := core{
		scope:    cfg.Scope,
		numbers:  cfg.Numbers,
		policy:   banking.DefaultPolicy(),
		audit:    cfg.Audit,
		events:   cfg.Events,
		validate: cfg.Validator,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if c.numbers == nil {
		c.numbers = banking.NewNumberGenerator(banking.DefaultNumberAttempts)
	}
	if cfg.Policy != nil {
		c.policy = *cfg.Policy
	}
	if c.audit == nil {
		c.audit = NopAuditLogger{}
	}
	if c.validate == nil {
		c.validate = NewCommandValidator()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// unitOfWork collects what must happen after a successful commit
type unitOfWork struct {
	repos      TransactionalRepositories
	aggregates []shared.AggregateRoot
	audits     []AuditEntry
}

// track registers aggregates whose pending events are published after commit
func (u *unitOfWork) track(aggs ...shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggs...)
}

func (u *unitOfWork) record(entry AuditEntry) {
	u.audits = append(u.audits, entry)
}

// execute runs fn as one transaction, then publishes events and writes audit
// entries. Expected failures come back as they are; anything else is logged
// and surfaced as an integrity error.
func (c *core) execute(ctx context.Context, op string, fn func(ctx context.Context, uow *unitOfWork) error) error {
	ctx, span := tracer.Start(ctx, "ledger."+op, trace.WithAttributes(attribute.String("ledger.operation", op)))
	defer span.End()

	var uow *unitOfWork
	err := c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		uow = &unitOfWork{repos: repos}
		return fn(ctx, uow)
	})
	if err != nil {
		return c.fail(ctx, span, op, err)
	}

	c.afterCommit(ctx, op, uow)
	return nil
}

// read runs fn in a read-only transaction
func (c *core) read(ctx context.Context, op string, fn func(repos TransactionalRepositories) error) error {
	ctx, span := tracer.Start(ctx, "ledger."+op)
	defer span.End()
	if err := c.scope.ExecuteReadOnly(ctx, fn); err != nil {
		return c.fail(ctx, span, op, err)
	}
	return nil
}

func (c *core) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var de *shared.DomainError
	if errors.As(err, &de) && de.Kind != shared.KindIntegrity {
		return de
	}
	c.logger.Error("Ledger operation failed",
		zap.String("operation", op),
		zap.Error(err),
	)
	if de != nil {
		return de
	}
	return shared.NewIntegrityError(op, err)
}

func (c *core) afterCommit(ctx context.Context, op string, uow *unitOfWork) {
	var events []shared.DomainEvent
	for _, agg := range uow.aggregates {
		events = append(events, agg.PullDomainEvents()...)
	}
	if len(events) > 0 && c.events != nil {
		if err := c.events.Publish(ctx, events...); err != nil {
			c.logger.Warn("Failed to publish ledger events",
				zap.String("operation", op),
				zap.Int("event_count", len(events)),
				zap.Error(err),
			)
		}
	}
	for _, entry := range uow.audits {
		if err := c.audit.Record(ctx, entry); err != nil {
			c.logger.Warn("Failed to record audit entry",
				zap.String("operation", op),
				zap.String("action", entry.Action),
				zap.Error(err),
			)
		}
	}
	c.logger.Debug("Ledger operation committed", zap.String("operation", op))
}

func (c *core) nextNumber(ctx context.Context, uow *unitOfWork, kind banking.NumberKind) (string, error) {
	return c.numbers.Next(ctx, uow.repos.NumberRegistry(), kind)
}

func (c *core) requireCustomer(ctx context.Context, uow *unitOfWork, id uuid.UUID) (*banking.Customer, error) {
	customer, err := uow.repos.CustomerRepo().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := customer.EnsureActive(); err != nil {
		return nil, err
	}
	return customer, nil
}

// lockAccount loads an active account and locks its row
func (c *core) lockAccount(ctx context.Context, uow *unitOfWork, id uuid.UUID) (*banking.Account, error) {
	acc, err := uow.repos.AccountRepo().FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := acc.EnsureActive(); err != nil {
		return nil, err
	}
	return acc, nil
}

// postAccount persists an already mutated account together with its history
// entry
func (c *core) postAccount(ctx context.Context, uow *unitOfWork, acc *banking.Account, txType banking.TransactionType, amount decimal.Decimal, m banking.Movement, desc, reference string, operatorID uuid.UUID) (*banking.AccountTransaction, error) {
	acc.RestartAccrual(m, c.now())
	if err := uow.repos.AccountRepo().Update(ctx, acc); err != nil {
		return nil, err
	}
	return c.appendAccountEntry(ctx, uow, acc, txType, amount, m, desc, reference, operatorID)
}

func (c *core) appendAccountEntry(ctx context.Context, uow *unitOfWork, acc *banking.Account, txType banking.TransactionType, amount decimal.Decimal, m banking.Movement, desc, reference string, operatorID uuid.UUID) (*banking.AccountTransaction, error) {
	number, err := c.nextNumber(ctx, uow, banking.NumberKindAccountTransaction)
	if err != nil {
		return nil, err
	}
	tx := banking.NewAccountTransaction(number, acc, txType, amount, m, c.now())
	tx.Annotate(desc, reference, operatorID)
	if err := uow.repos.AccountTransactionRepo().Append(ctx, tx); err != nil {
		return nil, err
	}
	acc.AddDomainEvent(banking.NewTransactionPostedEvent(banking.AggregateTypeAccount, acc.ID, acc.AccountNumber, tx.LedgerEntry))
	uow.track(acc)
	return tx, nil
}

// moveLinked credits or debits an account of the product's customer inside
// the product operation's unit of work
func (c *core) moveLinked(ctx context.Context, uow *unitOfWork, accountID, customerID uuid.UUID, txType banking.TransactionType, amount decimal.Decimal, desc, reference string, operatorID uuid.UUID) (*banking.AccountTransaction, error) {
	acc, err := c.lockAccount(ctx, uow, accountID)
	if err != nil {
		return nil, err
	}
	if acc.CustomerID != customerID {
		return nil, shared.NewDomainError("ACCOUNT_OWNER_MISMATCH", "Linked account belongs to a different customer")
	}

	var m banking.Movement
	if txType.IsCredit() {
		m, err = acc.Credit(amount)
	} else {
		m, err = acc.Debit(amount)
	}
	if err != nil {
		return nil, err
	}
	return c.postAccount(ctx, uow, acc, txType, amount, m, desc, reference, operatorID)
}

func dtoPtr(dto TransactionDTO) *TransactionDTO {
	return &dto
}

func linkedDTO(tx *banking.AccountTransaction) *TransactionDTO {
	if tx == nil {
		return nil
	}
	return dtoPtr(ToAccountTransactionDTO(tx))
}
