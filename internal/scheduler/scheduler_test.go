package scheduler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/memory"
	"github.com/tuluyhansozen/Lexical-sub002/internal/service/rank"
	syncengine "github.com/tuluyhansozen/Lexical-sub002/internal/sync"
)

func newTestScheduler(t *testing.T) (*Scheduler, *memory.ProfileStore, *memory.SnapshotStore) {
	t.Helper()

	events := memory.NewEventStore()
	states := memory.NewWordStateStore()
	profiles := memory.NewProfileStore()
	remote := memory.NewSnapshotStore()

	cooldowns := rank.NewCooldownTracker(24 * time.Hour)
	t.Cleanup(cooldowns.Close)

	governor := rank.NewGovernor(rank.DefaultConfig(), events, profiles, cooldowns, slog.Default())
	engine := syncengine.NewEngine(events, states, profiles, remote, slog.Default())

	sched := New(Config{
		GovernorCron: "0 3 * * *",
		SyncInterval: time.Minute,
	}, profiles, governor, engine, slog.Default())

	return sched, profiles, remote
}

func TestSyncSweepReconcilesEveryUser(t *testing.T) {
	sched, profiles, remote := newTestScheduler(t)
	ctx := context.Background()

	for _, userID := range []string{"user-a", "user-b"} {
		profile, err := domain.NewLearnerProfile(userID, 1500)
		require.NoError(t, err)
		require.NoError(t, profiles.Save(ctx, profile))
	}

	sched.runSyncSweep()

	for _, userID := range []string{"user-a", "user-b"} {
		_, _, err := remote.Fetch(ctx, userID)
		assert.NoError(t, err, "expected a pushed snapshot for %s", userID)
	}
}

func TestGovernorSweepSkipsUsersBelowGate(t *testing.T) {
	sched, profiles, _ := newTestScheduler(t)
	ctx := context.Background()

	profile, err := domain.NewLearnerProfile("user-a", 1500)
	require.NoError(t, err)
	require.NoError(t, profiles.Save(ctx, profile))

	// No reviews recorded: the sweep must leave the rank alone.
	sched.runGovernorSweep()

	got, err := profiles.Get(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, 1500, got.Rank)
}
