// Package scheduler runs the periodic background jobs: the nightly rank
// governor sweep and the recurring reconciliation sweep. Both jobs
// iterate every known user; per-user failures are logged and skipped so
// one bad profile never stalls the sweep.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/tuluyhansozen/Lexical-sub002/internal/service/rank"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
	syncengine "github.com/tuluyhansozen/Lexical-sub002/internal/sync"
)

// Config holds the scheduling knobs.
type Config struct {
	// GovernorCron is the cron expression for the nightly rank sweep.
	GovernorCron string

	// SyncInterval is the period of the background reconciliation sweep.
	SyncInterval time.Duration
}

// Scheduler manages the application's recurring jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cfg       Config
	profiles  store.ProfileStore
	governor  *rank.Governor
	engine    *syncengine.Engine
	logger    *slog.Logger
}

// New creates a scheduler. The governor and engine may not be nil; the
// sweeps exist to drive them.
func New(
	cfg Config,
	profiles store.ProfileStore,
	governor *rank.Governor,
	engine *syncengine.Engine,
	logger *slog.Logger,
) *Scheduler {
	if profiles == nil {
		panic("profiles cannot be nil")
	}
	if governor == nil {
		panic("governor cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		cfg:       cfg,
		profiles:  profiles,
		governor:  governor,
		engine:    engine,
		logger:    logger.With(slog.String("component", "scheduler")),
	}
}

// Start registers the jobs and begins running them in the background.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Cron(s.cfg.GovernorCron).Do(s.runGovernorSweep); err != nil {
		return err
	}
	if _, err := s.scheduler.Every(s.cfg.SyncInterval).Do(s.runSyncSweep); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("background jobs scheduled",
		slog.String("governor_cron", s.cfg.GovernorCron),
		slog.Duration("sync_interval", s.cfg.SyncInterval))
	return nil
}

// Stop halts the scheduler. Running jobs finish their current user.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runGovernorSweep() {
	ctx := context.Background()
	now := time.Now().UTC()

	userIDs, err := s.profiles.ListUserIDs(ctx)
	if err != nil {
		s.logger.Error("governor sweep failed to list users", slog.String("error", err.Error()))
		return
	}

	var adjusted int
	for _, userID := range userIDs {
		adj, err := s.governor.Adjust(ctx, userID, now)
		if err != nil {
			s.logger.Warn("governor sweep skipped user",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
			continue
		}
		if adj != nil && adj.Applied {
			adjusted++
		}
	}

	s.logger.Info("governor sweep finished",
		slog.Int("users", len(userIDs)),
		slog.Int("adjusted", adjusted))
}

func (s *Scheduler) runSyncSweep() {
	ctx := context.Background()

	userIDs, err := s.profiles.ListUserIDs(ctx)
	if err != nil {
		s.logger.Error("sync sweep failed to list users", slog.String("error", err.Error()))
		return
	}

	var applied int
	for _, userID := range userIDs {
		report, err := s.engine.Reconcile(ctx, userID)
		if err != nil {
			s.logger.Warn("sync sweep skipped user",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
			continue
		}
		if report.Outcome == syncengine.OutcomeApplied {
			applied++
		}
	}

	s.logger.Info("sync sweep finished",
		slog.Int("users", len(userIDs)),
		slog.Int("applied", applied))
}
