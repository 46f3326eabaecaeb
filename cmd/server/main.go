package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corebank/backend/internal/application/ledger"
	appnotification "github.com/corebank/backend/internal/application/notification"
	"github.com/corebank/backend/internal/application/report"
	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/infrastructure/audit"
	"github.com/corebank/backend/internal/infrastructure/cache"
	"github.com/corebank/backend/internal/infrastructure/config"
	"github.com/corebank/backend/internal/infrastructure/event"
	"github.com/corebank/backend/internal/infrastructure/logger"
	"github.com/corebank/backend/internal/infrastructure/notification"
	"github.com/corebank/backend/internal/infrastructure/persistence"
	"github.com/corebank/backend/internal/infrastructure/scheduler"
	"github.com/corebank/backend/internal/infrastructure/telemetry"
	"github.com/corebank/backend/internal/interfaces/http/handler"
	"github.com/corebank/backend/internal/interfaces/http/middleware"
	"github.com/corebank/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		Endpoint:          cfg.Telemetry.Endpoint,
		Insecure:          cfg.Telemetry.Insecure,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.App.Name,
		ServiceVersion:    version,
		TraceSQLVariables: cfg.Telemetry.TraceSQLVariables,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if tel.Enabled() {
		log = zap.New(zapcore.NewTee(log.Core(), tel.LogCore(logger.ParseLevel(cfg.Log.Level))),
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		)
	}

	runErr := run(ctx, cfg, tel, log)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}
	if runErr != nil {
		log.Fatal("Server exited with error", zap.Error(runErr))
	}
}

func run(ctx context.Context, cfg *config.Config, tel *telemetry.Providers, log *zap.Logger) error {
	log.Info("Starting ledger server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	// Storage
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Database.SlowQuery)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			return err
		}
	}
	if err := tel.InstrumentDB(db.DB); err != nil {
		return err
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	store := cache.NewIdempotencyStore(ctx, cfg.Redis, log)
	defer func() { _ = store.Close() }()

	// Events and collaborators
	bus := event.NewInMemoryEventBus(log)
	scope := persistence.NewGormTransactionScope(db.DB, cfg.Ledger.TxTimeout)
	ledgerCfg := ledger.Config{
		Scope:   scope,
		Numbers: banking.NewNumberGenerator(cfg.Ledger.NumberingAttempts),
		Policy: &banking.Policy{
			PenaltyPoints:        cfg.Ledger.PrematurePenaltyPoints,
			LoanClosureTolerance: cfg.Ledger.LoanClosureTolerance,
		},
		Audit:     audit.NewZapAuditLogger(log),
		Events:    bus,
		Validator: ledger.NewCommandValidator(),
		Logger:    log,
	}

	customers := ledger.NewCustomerService(ledgerCfg)
	accounts := ledger.NewAccountService(ledgerCfg)
	fixedDeposits := ledger.NewFixedDepositService(ledgerCfg)
	reports := report.NewReportService(scope, log)

	notifier, err := notification.New(cfg.SMTP, log)
	if err != nil {
		return err
	}
	alerts := appnotification.NewAlertHandler(notifier, customers, log)
	bus.Subscribe(event.NewIdempotentHandler(alerts, store, event.DefaultIdempotencyTTL, log))
	metrics, err := telemetry.NewLedgerMetrics(tel.Meter("corebank/ledger"))
	if err != nil {
		return err
	}
	bus.Subscribe(metrics)
	if err := bus.Start(ctx); err != nil {
		return err
	}

	// Scheduled jobs
	var jobs handler.JobRunner
	var sched *scheduler.LedgerScheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(cfg.Scheduler, scheduler.Deps{
			Interest: accounts,
			Maturer:  fixedDeposits,
			Reports:  reports,
			Alerts:   alerts,
			Store:    store,
		}, log)
		if err != nil {
			return err
		}
		sched.Start()
		jobs = sched
	}

	// Ops endpoints
	ops := handler.NewOpsHandler(cfg.App.Name, version, jobs).
		AddCheck("database", db.Ping)
	if pinger, ok := store.(interface{ Ping(context.Context) error }); ok {
		ops.AddCheck("redis", pinger.Ping)
	}
	mode := gin.ReleaseMode
	if cfg.App.Env == "development" {
		mode = gin.DebugMode
	}
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.HTTP.HSTSEnabled
	engine := router.NewRouter(router.NewEngine(log, mode,
		otelgin.Middleware(cfg.App.Name),
		middleware.Secure(security),
		middleware.BodyLimit(cfg.HTTP.MaxBodyBytes),
	)).
		RegisterProbes(ops).
		Register(ops).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}

	return shutdown(cfg.HTTP.ShutdownTimeout, log, srv, sched, bus)
}

// shutdown stops intake first, then lets running jobs and queued events
// finish within the timeout
func shutdown(timeout time.Duration, log *zap.Logger, srv *http.Server, sched *scheduler.LedgerScheduler, bus *event.InMemoryEventBus) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("scheduler stop: %w", err))
		}
	}
	if err := bus.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("event bus stop: %w", err))
	}
	log.Info("Server stopped")
	return errors.Join(errs...)
}
