package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/tuluyhansozen/Lexical-sub002/internal/config"
	"github.com/tuluyhansozen/Lexical-sub002/internal/events"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/postgres"
	"github.com/tuluyhansozen/Lexical-sub002/internal/scheduler"
	"github.com/tuluyhansozen/Lexical-sub002/internal/service"
	"github.com/tuluyhansozen/Lexical-sub002/internal/service/rank"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
	syncengine "github.com/tuluyhansozen/Lexical-sub002/internal/sync"
	"github.com/tuluyhansozen/Lexical-sub002/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	eventStore   store.EventStore
	stateStore   store.WordStateStore
	profileStore store.ProfileStore
	remoteStore  store.RemoteSnapshotStore

	reviewService      *service.ReviewService
	calibrationService *service.CalibrationService
	governor           *rank.Governor
	syncEngine         *syncengine.Engine

	cooldowns    *rank.CooldownTracker
	eventEmitter *events.InMemoryEmitter
	taskRunner   *task.Runner
	scheduler    *scheduler.Scheduler
}

// newApplication creates an application instance with all dependencies
// initialized. The database connection must already be established and
// migrated.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Stores
	app.eventStore = postgres.NewPostgresEventStore(db, logger)
	app.stateStore = postgres.NewPostgresWordStateStore(db, logger)
	app.profileStore = postgres.NewPostgresProfileStore(db, logger)
	app.remoteStore = postgres.NewPostgresSnapshotStore(db, logger)

	// Rank governor
	governorCfg := rank.DefaultConfig()
	app.cooldowns = rank.NewCooldownTracker(governorCfg.Cooldown)
	app.governor = rank.NewGovernor(governorCfg, app.eventStore, app.profileStore, app.cooldowns, logger)

	// Reconciliation engine
	app.syncEngine = syncengine.NewEngine(
		app.eventStore, app.stateStore, app.profileStore, app.remoteStore, logger)

	// Background task processing: sync requests flow from services
	// through the emitter into the runner.
	app.taskRunner = task.NewRunner(task.RunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, logger)
	app.taskRunner.Start()

	app.eventEmitter = events.NewInMemoryEmitter(logger)
	app.eventEmitter.RegisterHandler(task.NewSyncEventHandler(app.syncEngine, app.taskRunner, logger))

	// Services
	app.reviewService = service.NewReviewService(
		app.eventStore, app.stateStore, app.profileStore, app.governor, app.eventEmitter, logger)
	app.calibrationService = service.NewCalibrationService(app.profileStore, logger)

	// Recurring sweeps
	app.scheduler = scheduler.New(scheduler.Config{
		GovernorCron: cfg.Governor.SweepCron,
		SyncInterval: cfg.Sync.SweepInterval,
	}, app.profileStore, app.governor, app.syncEngine, logger)
	if err := app.scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.cooldowns != nil {
		app.cooldowns.Close()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
