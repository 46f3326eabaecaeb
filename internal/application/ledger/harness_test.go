package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/corebank/backend/internal/application/ledger"
	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/infrastructure/config"
	"github.com/corebank/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testNow = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

// recordingAudit keeps every audit entry it receives
type recordingAudit struct {
	mu      sync.Mutex
	entries []ledger.AuditEntry
}

func (a *recordingAudit) Record(_ context.Context, entry ledger.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Action
	}
	return out
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type harness struct {
	db        *persistence.Database
	scope     ledger.TransactionScope
	audit     *recordingAudit
	events    *recordingPublisher
	policy    *banking.Policy
	now       time.Time
	customers *ledger.CustomerService
	accounts  *ledger.AccountService
	fds       *ledger.FixedDepositService
	rds       *ledger.RecurringDepositService
	loans     *ledger.LoanService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	h := &harness{
		db:     db,
		scope:  persistence.NewGormTransactionScope(db.DB, 5*time.Second),
		audit:  &recordingAudit{},
		events: &recordingPublisher{},
		now:    testNow,
	}
	h.build(t, h.scope)
	return h
}

// build wires the services over scope, so tests can swap in a faulty scope
func (h *harness) build(t *testing.T, scope ledger.TransactionScope) {
	cfg := ledger.Config{
		Scope:  scope,
		Policy: h.policy,
		Audit:  h.audit,
		Events: h.events,
		Logger: zaptest.NewLogger(t),
		Now:    func() time.Time { return h.now },
	}
	h.customers = ledger.NewCustomerService(cfg)
	h.accounts = ledger.NewAccountService(cfg)
	h.fds = ledger.NewFixedDepositService(cfg)
	h.rds = ledger.NewRecurringDepositService(cfg)
	h.loans = ledger.NewLoanService(cfg)
}

func (h *harness) customer(t *testing.T) uuid.UUID {
	t.Helper()
	c, err := h.customers.Register(context.Background(), ledger.RegisterCustomerCommand{
		FullName: "Meera Iyer",
		Email:    "meera@example.com",
	})
	require.NoError(t, err)
	return c.ID
}

func (h *harness) account(t *testing.T, customerID uuid.UUID, balance string) ledger.AccountDTO {
	t.Helper()
	res, err := h.accounts.Open(context.Background(), ledger.OpenAccountCommand{
		CustomerID:     customerID,
		Type:           "savings",
		InterestRate:   dec("4"),
		InitialBalance: dec(balance),
	})
	require.NoError(t, err)
	return res.Account
}

// fdHistory reads a fixed deposit's entries straight from the store
func (h *harness) fdHistory(t *testing.T, id uuid.UUID) []banking.FixedDepositTransaction {
	t.Helper()
	entries, err := persistence.NewGormFixedDepositTransactionRepository(h.db.DB).FindByFixedDeposit(context.Background(), id)
	require.NoError(t, err)
	return entries
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
