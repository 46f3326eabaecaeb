package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corebank/backend/internal/application/ledger"
	"github.com/corebank/backend/internal/application/report"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Job names
const (
	JobDailyInterest  = "daily_interest"
	JobMaturitySweep  = "maturity_sweep"
	JobMaturityAlerts = "maturity_alerts"
)

// InterestPoster is the part of the account service the interest job drives
type InterestPoster interface {
	InterestBearingAccounts(ctx context.Context, filter shared.Filter) ([]ledger.AccountDTO, error)
	ApplyInterest(ctx context.Context, cmd ledger.ApplyInterestCommand) (*ledger.InterestResult, error)
}

// DepositMaturer closes fixed deposits that reached maturity
type DepositMaturer interface {
	MatureDue(ctx context.Context) (int, error)
}

// MaturityReporter lists deposits maturing soon
type MaturityReporter interface {
	GetMaturingDeposits(ctx context.Context, horizonDays int) (*report.MaturingDepositsResponse, error)
}

// MaturityNotifier warns a customer about an upcoming maturity
type MaturityNotifier interface {
	SendMaturityReminder(ctx context.Context, customerID uuid.UUID, kind, number string, amount decimal.Decimal, maturityDate time.Time) error
}

const (
	interestPageSize = 200
	// keys outlive the day they guard so a late rerun still sees them
	dailyKeyTTL = 48 * time.Hour
	alertKeyTTL = 8 * 24 * time.Hour
)

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// daysSince counts the calendar days between the last posting and today. An
// account that never earned interest gets one day.
func daysSince(last *time.Time, today time.Time) int {
	if last == nil {
		return 1
	}
	from := startOfDay(*last)
	return int(startOfDay(today).Sub(from).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// postDailyInterest credits interest to every interest-bearing account once
// per calendar day. Days missed since the last posting are caught up in one
// credit. Each account is its own unit of work, so one failure does not stop
// the run.
func (s *LedgerScheduler) postDailyInterest(ctx context.Context, log *zap.Logger) (int, error) {
	today := s.now()
	posted, failed := 0, 0

	var accounts []ledger.AccountDTO
	for page := 1; ; page++ {
		batch, err := s.interest.InterestBearingAccounts(ctx, shared.Filter{Page: page, PageSize: interestPageSize, OrderDir: "asc"})
		if err != nil {
			return posted, fmt.Errorf("list interest-bearing accounts: %w", err)
		}
		accounts = append(accounts, batch...)
		if len(batch) < interestPageSize {
			break
		}
	}

	for _, acc := range accounts {
		if err := ctx.Err(); err != nil {
			return posted, err
		}
		days := daysSince(acc.LastInterestAt, today)
		if days <= 0 {
			continue
		}
		if days > 366 {
			days = 366
		}

		key := fmt.Sprintf("interest:%s:%s", acc.ID, dayKey(today))
		claimed, err := s.store.MarkProcessed(ctx, key, dailyKeyTTL)
		if err != nil {
			return posted, fmt.Errorf("claim %s: %w", key, err)
		}
		if !claimed {
			continue
		}

		res, err := s.interest.ApplyInterest(ctx, ledger.ApplyInterestCommand{
			AccountID:   acc.ID,
			Days:        days,
			Description: fmt.Sprintf("Daily interest for %s", dayKey(today)),
		})
		if err != nil {
			failed++
			if relErr := s.store.Release(ctx, key); relErr != nil {
				log.Warn("Failed to release interest key", zap.String("key", key), zap.Error(relErr))
			}
			log.Error("Interest posting failed",
				zap.String("account_number", acc.AccountNumber),
				zap.Error(err),
			)
			continue
		}
		if res.Credited {
			posted++
		}
	}

	if failed > 0 {
		return posted, fmt.Errorf("interest posting failed for %d account(s)", failed)
	}
	return posted, nil
}

// matureDeposits pays out fixed deposits whose maturity date has passed
func (s *LedgerScheduler) matureDeposits(ctx context.Context, _ *zap.Logger) (int, error) {
	return s.maturer.MatureDue(ctx)
}

// sendMaturityAlerts reminds customers of deposits maturing within the
// configured horizon. Each deposit is reminded at most once a day.
func (s *LedgerScheduler) sendMaturityAlerts(ctx context.Context, log *zap.Logger) (int, error) {
	list, err := s.reports.GetMaturingDeposits(ctx, s.alertDays)
	if err != nil {
		return 0, fmt.Errorf("list maturing deposits: %w", err)
	}

	today := dayKey(s.now())
	sent := 0
	var errs []error
	for _, d := range list.Deposits {
		key := fmt.Sprintf("maturity-alert:%s:%s", d.ID, today)
		claimed, err := s.store.MarkProcessed(ctx, key, alertKeyTTL)
		if err != nil {
			return sent, fmt.Errorf("claim %s: %w", key, err)
		}
		if !claimed {
			continue
		}
		if err := s.alerts.SendMaturityReminder(ctx, d.CustomerID, string(d.Kind), d.Number, d.MaturityAmount, d.MaturityDate); err != nil {
			_ = s.store.Release(ctx, key)
			log.Warn("Maturity alert failed", zap.String("number", d.Number), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}
