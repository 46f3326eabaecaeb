// Package report derives statements, schedules and due lists from the ledger
// history. Nothing here writes; every query runs in a read-only transaction so
// it sees one consistent snapshot.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/corebank/backend/internal/application/ledger"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/corebank/backend/internal/application/report")

// DefaultHorizonDays is used by the list reports when no horizon is given
const DefaultHorizonDays = 30

// ReportService provides the read-only ledger reports
type ReportService struct {
	scope  ledger.TransactionScope
	logger *zap.Logger
	now    func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(scope ledger.TransactionScope, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{scope: scope, logger: logger, now: time.Now}
}

// WithClock replaces the clock used for horizons and overdue checks
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

func (s *ReportService) read(ctx context.Context, name string, fn func(repos ledger.TransactionalRepositories) error) error {
	ctx, span := tracer.Start(ctx, "report."+name)
	defer span.End()

	err := s.scope.ExecuteReadOnly(ctx, fn)
	if err == nil {
		return nil
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	var de *shared.DomainError
	if errors.As(err, &de) && de.Kind != shared.KindIntegrity {
		return de
	}
	s.logger.Error("Report query failed", zap.String("report", name), zap.Error(err))
	if de != nil {
		return de
	}
	return shared.NewIntegrityError("report."+name, err)
}

// ===================== Account Statement =====================

// StatementFilter selects the statement window. A zero From starts at the
// first entry; a zero To runs to the latest.
type StatementFilter struct {
	AccountID uuid.UUID
	From      time.Time
	To        time.Time
}

// StatementLine is one entry of an account statement
type StatementLine struct {
	TransactionNumber string          `json:"transaction_number"`
	Date              time.Time       `json:"date"`
	Type              string          `json:"type"`
	Description       string          `json:"description,omitempty"`
	Reference         string          `json:"reference,omitempty"`
	Credit            decimal.Decimal `json:"credit"`
	Debit             decimal.Decimal `json:"debit"`
	Balance           decimal.Decimal `json:"balance"`
}

// AccountStatementResponse is an account statement over a window
type AccountStatementResponse struct {
	AccountID      uuid.UUID       `json:"account_id"`
	AccountNumber  string          `json:"account_number"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	TotalCredits   decimal.Decimal `json:"total_credits"`
	TotalDebits    decimal.Decimal `json:"total_debits"`
	Lines          []StatementLine `json:"lines"`
}

// GetAccountStatement returns the account's entries inside the window. The
// opening balance is the balance after the last entry before the window, or
// zero; the closing balance is the running balance at the window's end.
func (s *ReportService) GetAccountStatement(ctx context.Context, filter StatementFilter) (*AccountStatementResponse, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return nil, shared.NewValidationError("INVALID_RANGE", "Statement start must be before its end")
	}

	var result AccountStatementResponse
	err := s.read(ctx, "account_statement", func(repos ledger.TransactionalRepositories) error {
		acc, err := repos.AccountRepo().FindByID(ctx, filter.AccountID)
		if err != nil {
			return err
		}
		result = AccountStatementResponse{
			AccountID:      acc.ID,
			AccountNumber:  acc.AccountNumber,
			From:           filter.From,
			To:             filter.To,
			OpeningBalance: decimal.Zero,
			TotalCredits:   decimal.Zero,
			TotalDebits:    decimal.Zero,
			Lines:          []StatementLine{},
		}

		if !filter.From.IsZero() {
			prior, err := repos.AccountTransactionRepo().FindLatestBefore(ctx, acc.ID, filter.From)
			if err != nil {
				return err
			}
			if prior != nil {
				result.OpeningBalance = prior.BalanceAfter
			}
		}

		entries, err := repos.AccountTransactionRepo().FindByAccount(ctx, acc.ID, shared.DateRange{From: filter.From, To: filter.To})
		if err != nil {
			return err
		}
		result.ClosingBalance = result.OpeningBalance
		for i := range entries {
			e := &entries[i]
			line := StatementLine{
				TransactionNumber: e.TransactionNumber,
				Date:              e.CreatedAt,
				Type:              string(e.Type),
				Description:       e.Description,
				Reference:         e.Reference,
				Credit:            decimal.Zero,
				Debit:             decimal.Zero,
				Balance:           e.BalanceAfter,
			}
			if e.Type.IsCredit() {
				line.Credit = e.Amount
				result.TotalCredits = result.TotalCredits.Add(e.Amount)
			} else {
				line.Debit = e.Amount
				result.TotalDebits = result.TotalDebits.Add(e.Amount)
			}
			result.Lines = append(result.Lines, line)
			result.ClosingBalance = e.BalanceAfter
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
