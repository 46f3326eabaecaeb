// Package scheduler runs the ledger's recurring jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/infrastructure/config"
	"github.com/corebank/backend/internal/infrastructure/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobStatus represents the outcome of a job run
type JobStatus string

const (
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobRun records the latest run of one job
type JobRun struct {
	Job         string     `json:"job"`
	Status      JobStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Processed   int        `json:"processed"`
	Error       string     `json:"error,omitempty"`
}

type jobFunc func(ctx context.Context, log *zap.Logger) (int, error)

type job struct {
	name string
	spec string
	run  jobFunc
	mu   sync.Mutex // held while the job runs
}

// Deps are the services the jobs drive
type Deps struct {
	Interest InterestPoster
	Maturer  DepositMaturer
	Reports  MaturityReporter
	Alerts   MaturityNotifier
	Store    shared.IdempotencyStore
}

// LedgerScheduler posts daily interest, matures fixed deposits and sends
// maturity reminders. Runs of the same job never overlap, and the
// idempotency store keeps a rerun on the same day from posting twice.
type LedgerScheduler struct {
	interest  InterestPoster
	maturer   DepositMaturer
	reports   MaturityReporter
	alerts    MaturityNotifier
	store     shared.IdempotencyStore
	alertDays int
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time

	cron *cron.Cron
	jobs map[string]*job

	mu   sync.RWMutex
	runs map[string]JobRun
}

// Option configures a LedgerScheduler
type Option func(*LedgerScheduler)

// WithClock replaces the clock used for day keys
func WithClock(now func() time.Time) Option {
	return func(s *LedgerScheduler) {
		s.now = now
	}
}

// New registers the jobs named in cfg. A job with an empty spec is not
// scheduled but can still be run with RunNow.
func New(cfg config.SchedulerConfig, deps Deps, log *zap.Logger, opts ...Option) (*LedgerScheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("scheduler")

	s := &LedgerScheduler{
		interest:  deps.Interest,
		maturer:   deps.Maturer,
		reports:   deps.Reports,
		alerts:    deps.Alerts,
		store:     deps.Store,
		alertDays: cfg.MaturityAlertDays,
		timeout:   cfg.JobTimeout,
		logger:    log,
		now:       time.Now,
		jobs:      make(map[string]*job),
		runs:      make(map[string]JobRun),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Minute
	}

	cl := cronLogger{log.Sugar()}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)

	for _, j := range []*job{
		{name: JobDailyInterest, spec: cfg.InterestSchedule, run: s.postDailyInterest},
		{name: JobMaturitySweep, spec: cfg.MaturitySchedule, run: s.matureDeposits},
		{name: JobMaturityAlerts, spec: cfg.AlertSchedule, run: s.sendMaturityAlerts},
	} {
		s.jobs[j.name] = j
		if j.spec == "" {
			continue
		}
		name := j.name
		if _, err := s.cron.AddFunc(j.spec, func() { s.trigger(name) }); err != nil {
			return nil, fmt.Errorf("%w: %s spec %q: %v", ErrInvalidConfig, name, j.spec, err)
		}
	}
	return s, nil
}

// Start begins running jobs on their schedules
func (s *LedgerScheduler) Start() {
	s.cron.Start()
	s.logger.Info("Ledger scheduler started", zap.Int("scheduled_jobs", len(s.cron.Entries())))
}

// Stop stops scheduling and waits for running jobs until ctx ends
func (s *LedgerScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Ledger scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Ledger scheduler stop timed out")
		return ctx.Err()
	}
}

// trigger is the cron entry point; a run still in progress makes it skip
func (s *LedgerScheduler) trigger(name string) {
	if _, err := s.RunNow(context.Background(), name); err != nil {
		s.logger.Warn("Scheduled job did not complete", zap.String("job", name), zap.Error(err))
	}
}

// RunNow runs a job immediately and returns its record
func (s *LedgerScheduler) RunNow(ctx context.Context, name string) (JobRun, error) {
	j, ok := s.jobs[name]
	if !ok {
		return JobRun{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if !j.mu.TryLock() {
		return JobRun{}, fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	defer j.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ctx, log := logger.WithJob(ctx, s.logger, name)

	run := JobRun{Job: name, Status: JobStatusRunning, StartedAt: time.Now()}
	s.record(run)
	log.Info("Job started")

	processed, err := j.run(ctx, log)

	completed := time.Now()
	run.CompletedAt = &completed
	run.Processed = processed
	run.Status = JobStatusSuccess
	if err != nil {
		run.Status = JobStatusFailed
		run.Error = err.Error()
		log.Error("Job failed", zap.Int("processed", processed), zap.Error(err))
	} else {
		log.Info("Job completed",
			zap.Int("processed", processed),
			zap.Duration("elapsed", completed.Sub(run.StartedAt)),
		)
	}
	s.record(run)
	return run, err
}

func (s *LedgerScheduler) record(run JobRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.Job] = run
}

// LastRuns returns the latest run of every job that has run, by name
func (s *LedgerScheduler) LastRuns() []JobRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]JobRun, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Job < runs[j].Job })
	return runs
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
