package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"archivist/internal/casefile"
	casefilehandler "archivist/internal/casefile/handler"
	"archivist/internal/container"
	containerhandler "archivist/internal/container/handler"
	"archivist/internal/disposition"
	dispositionhandler "archivist/internal/disposition/handler"
	httpapi "archivist/internal/http"
	"archivist/internal/platform/config"
	"archivist/internal/platform/lock"
	"archivist/internal/platform/logger"
	"archivist/internal/platform/postgres"
	platformredis "archivist/internal/platform/redis"
	recordsstore "archivist/internal/records/store/postgres"
	"archivist/internal/retention"
	retentionhandler "archivist/internal/retention/handler"
	"archivist/internal/schedule"
	schedulehandler "archivist/internal/schedule/handler"
	"archivist/internal/sequence"
	"archivist/pkg/platform/audit/publisher"
	auditstore "archivist/pkg/platform/audit/store/postgres"
	txcontext "archivist/pkg/platform/tx"
)

// bootstrap loads the configuration named by the persistent --config flag
// and builds the process logger.
func bootstrap(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	return cfg, log, nil
}

// app holds the collaborators every command builds from one configuration.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *platformredis.Client
	tx     *txcontext.SQLRunner

	records    *recordsstore.Store
	auditStore *auditstore.Store
	auditor    *publisher.Publisher

	allocator    *sequence.Allocator
	containers   *container.Manager
	orchestrator *casefile.Orchestrator
	caseFiles    *casefile.Service
	engine       *retention.Engine
	scheduler    *retention.Scheduler
	alerts       *retention.Alerts
	dispositions *disposition.Processor
	schedule     *schedule.Service
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &app{
		cfg:        cfg,
		logger:     log,
		db:         db,
		redis:      rdb,
		tx:         txcontext.NewSQLRunner(db, cfg.Database.TxTimeout),
		records:    recordsstore.New(db),
		auditStore: auditstore.New(db),
	}
	a.auditor = publisher.New(a.auditStore,
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics()),
	)

	a.allocator = sequence.New(a.records,
		sequence.WithLogger(log),
		sequence.WithMetrics(sequence.NewMetrics()),
	)
	a.containers = container.New(a.records, a.allocator, a.tx, a.auditor,
		container.WithLogger(log),
		container.WithMetrics(container.NewMetrics()),
		container.WithDefaults(cfg.Containers),
	)
	a.orchestrator = casefile.NewOrchestrator(a.records, a.allocator, a.containers, a.tx, a.auditor,
		casefile.WithLogger(log),
		casefile.WithMetrics(casefile.NewMetrics()),
	)
	a.caseFiles = casefile.NewService(a.records, a.allocator, a.containers, a.tx, a.auditor, log)

	retentionMetrics := retention.NewMetrics()
	a.engine = retention.NewEngine(a.records, a.tx, a.auditor,
		retention.WithLogger(log),
		retention.WithMetrics(retentionMetrics),
		retention.WithConfig(cfg.Retention),
	)
	a.scheduler = retention.NewScheduler(a.engine, a.locker(),
		retention.WithSchedulerLogger(log),
		retention.WithSchedulerMetrics(retentionMetrics),
		retention.WithSchedule(cfg.Retention),
	)
	a.alerts = retention.NewAlerts(a.records)
	a.dispositions = disposition.New(a.records, a.tx, a.auditor,
		disposition.WithLogger(log),
		disposition.WithMetrics(disposition.NewMetrics()),
	)
	a.schedule = schedule.New(a.records, a.tx, a.auditor, log)
	return a, nil
}

// locker returns the lease backend named by lock.backend.
func (a *app) locker() lock.Locker {
	if a.cfg.Lock.Backend == config.LockRedis && a.redis != nil {
		return lock.NewRedis(a.redis.Client, a.cfg.Lock.TTL)
	}
	return lock.NewPostgres(a.db)
}

func (a *app) handlers() []httpapi.Registrar {
	return []httpapi.Registrar{
		casefilehandler.New(a.orchestrator, a.caseFiles, a.logger),
		containerhandler.New(a.containers, a.logger),
		retentionhandler.New(a.scheduler, a.alerts, a.logger),
		dispositionhandler.New(a.dispositions, a.logger),
		schedulehandler.New(a.schedule, a.logger),
	}
}

func (a *app) checkers() []httpapi.HealthChecker {
	checkers := []httpapi.HealthChecker{postgres.NewHealthChecker(a.db)}
	if a.redis != nil {
		checkers = append(checkers, a.redis)
	}
	return checkers
}

func (a *app) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.db.Close())
	return errors.Join(errs...)
}
