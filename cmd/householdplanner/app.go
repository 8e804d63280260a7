package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"household-planner/internal/analytics"
	"household-planner/internal/config"
	"household-planner/internal/legacy"
	"household-planner/internal/logger"
	"household-planner/internal/metrics"
	"household-planner/internal/repository"
	"household-planner/internal/service"
	"household-planner/internal/timewindow"
)

// app holds everything one process needs, built from config.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	clock   timewindow.Clock
	metrics *metrics.Metrics
	stores  service.Stores
	closers []func() error

	members  *service.MemberService
	ledger   *service.LedgerService
	tasks    *service.TaskService
	rollover *service.RolloverService
	gate     *service.RolloverGate
	insights *service.InsightsService
	reminder *service.ReminderService
}

// loadApp builds the app from config. With seed set, an empty roster gets
// the configured members.
func loadApp(ctx context.Context, seed bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Env)
	log.Info().
		Str("env", cfg.Env).
		Str("storage", cfg.Storage.Driver).
		Msg("read config")

	a := &app{
		cfg:     cfg,
		logger:  log,
		clock:   timewindow.SystemClock{},
		metrics: metrics.New(),
	}
	if err := a.openStores(); err != nil {
		return nil, err
	}
	a.stores.Tasks = service.NewCheckedTaskStore(a.stores.Tasks, log, a.metrics)

	a.members = service.NewMemberService(a.stores.Members, log)
	a.ledger = service.NewLedgerService(a.stores.Profiles, a.clock, log)
	a.tasks = service.NewTaskService(a.stores.Tasks, a.stores.Members, a.ledger, a.clock, log, a.metrics)
	a.rollover = service.NewRolloverService(a.stores.Tasks, a.stores.Members, a.clock, log, a.metrics)
	a.gate = service.NewRolloverGate(a.rollover, a.clock, log)
	a.insights = service.NewInsightsService(a.stores.Members, a.stores.Tasks, a.stores.Profiles, analytics.New(log), a.clock)
	a.reminder = service.NewReminderService(a.stores.Tasks, a.insights, a.clock)

	if !seed {
		return a, nil
	}
	if err := a.members.Seed(ctx, cfg.Members); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("seed members: %w", err)
	}
	return a, nil
}

func (a *app) openStores() error {
	switch a.cfg.Storage.Driver {
	case config.DriverJSON:
		store, err := legacy.NewStore(a.cfg.Storage.DataDir, a.logger)
		if err != nil {
			return err
		}
		a.stores = service.Stores{Members: store, Tasks: store.Tasks(), Profiles: store.Profiles()}
	default:
		stores, closeDB, err := openSQLite(a.cfg.Storage.DatabaseURL, a.logger)
		if err != nil {
			return err
		}
		a.stores = stores
		a.closers = append(a.closers, closeDB)
	}
	return nil
}

func openSQLite(dsn string, log zerolog.Logger) (service.Stores, func() error, error) {
	db, err := repository.NewDB(dsn, log)
	if err != nil {
		return service.Stores{}, nil, fmt.Errorf("db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return service.Stores{}, nil, fmt.Errorf("db handle: %w", err)
	}
	return service.Stores{
		Members:  repository.NewMemberRepository(db),
		Tasks:    repository.NewTaskRepository(db),
		Profiles: repository.NewProfileRepository(db),
	}, sqlDB.Close, nil
}

func (a *app) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
