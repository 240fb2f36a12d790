package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/memory"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

func newTestEngine(remote store.RemoteSnapshotStore) (*Engine, *memory.EventStore, *memory.WordStateStore, *memory.ProfileStore) {
	events := memory.NewEventStore()
	states := memory.NewWordStateStore()
	profiles := memory.NewProfileStore()
	engine := NewEngine(events, states, profiles, remote, nil).
		WithClock(func() time.Time { return mergeNow })
	return engine, events, states, profiles
}

func TestReconcileFirstSyncPushesLocalState(t *testing.T) {
	ctx := context.Background()
	remote := memory.NewSnapshotStore()
	engine, events, states, _ := newTestEngine(remote)

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, "user-1", "ephemeral", domain.GradeGood, base)
	require.NoError(t, events.Append(ctx, &event))

	report, err := engine.Reconcile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, report.Outcome)
	assert.Equal(t, 1, report.Stats.MergedEvents)

	// The replayed word state landed locally.
	state, err := states.Get(ctx, "user-1", "ephemeral")
	require.NoError(t, err)
	assert.Equal(t, 1, state.ReviewCount)

	// And the remote now holds a decodable snapshot.
	payload, version, err := remote.Fetch(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, version)
	snapshot, err := Decode(payload)
	require.NoError(t, err)
	assert.Len(t, snapshot.Events, 1)
}

func TestReconcilePullsRemoteEvents(t *testing.T) {
	ctx := context.Background()
	remote := memory.NewSnapshotStore()
	engine, events, states, _ := newTestEngine(remote)

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	localEvent := makeEvent(t, "user-1", "ephemeral", domain.GradeGood, base)
	require.NoError(t, events.Append(ctx, &localEvent))

	remoteEvent := makeEvent(t, "user-1", "ossify", domain.GradeEasy, base.Add(time.Hour))
	payload, err := Snapshot{Events: []domain.ReviewEvent{remoteEvent}}.Encode()
	require.NoError(t, err)
	_, err = remote.Save(ctx, "user-1", payload, "")
	require.NoError(t, err)

	report, err := engine.Reconcile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, report.Outcome)
	assert.Equal(t, 2, report.Stats.MergedEvents)
	assert.Equal(t, 1, report.Stats.NewEvents)

	// The remote event is now part of the local log and its state exists.
	merged, err := events.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, merged, 2)

	state, err := states.Get(ctx, "user-1", "ossify")
	require.NoError(t, err)
	assert.Equal(t, 1, state.ReviewCount)
}

func TestReconcileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	remote := memory.NewSnapshotStore()
	engine, events, states, _ := newTestEngine(remote)

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, "user-1", "ephemeral", domain.GradeGood, base)
	require.NoError(t, events.Append(ctx, &event))

	first, err := engine.Reconcile(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, first.Outcome)

	stateAfterFirst, err := states.Get(ctx, "user-1", "ephemeral")
	require.NoError(t, err)

	second, err := engine.Reconcile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, second.Outcome)
	assert.Equal(t, 0, second.Stats.NewEvents)

	stateAfterSecond, err := states.Get(ctx, "user-1", "ephemeral")
	require.NoError(t, err)
	assert.Equal(t, stateAfterFirst, stateAfterSecond)
}

func TestReconcileSkipsWhenInFlight(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	remote := &blockingRemote{release: release, started: started}
	engine, events, _, _ := newTestEngine(remote)

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, "user-1", "ephemeral", domain.GradeGood, base)
	require.NoError(t, events.Append(ctx, &event))

	done := make(chan *Report, 1)
	go func() {
		report, _ := engine.Reconcile(ctx, "user-1")
		done <- report
	}()

	<-started
	second, err := engine.Reconcile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkippedInFlight, second.Outcome)

	close(release)
	first := <-done
	assert.Equal(t, OutcomeApplied, first.Outcome)

	// The guard clears once the pass completes.
	third, err := engine.Reconcile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, third.Outcome)
}

func TestReconcileRetriesOnceOnConflict(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewSnapshotStore()
	remote := &conflictingRemote{inner: inner, conflicts: 1}
	engine, events, _, _ := newTestEngine(remote)

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, "user-1", "ephemeral", domain.GradeGood, base)
	require.NoError(t, events.Append(ctx, &event))

	report, err := engine.Reconcile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, report.Outcome)
	assert.True(t, report.Retried)
}

func TestReconcileGivesUpAfterSecondConflict(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewSnapshotStore()
	remote := &conflictingRemote{inner: inner, conflicts: 2}
	engine, events, states, _ := newTestEngine(remote)

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, "user-1", "ephemeral", domain.GradeGood, base)
	require.NoError(t, events.Append(ctx, &event))

	report, err := engine.Reconcile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSyncSkipped, report.Outcome)
	assert.True(t, report.Retried)
	assert.Contains(t, report.Reason, "conflict")

	// Local state is intact and usable despite the failed push.
	state, err := states.Get(ctx, "user-1", "ephemeral")
	require.NoError(t, err)
	assert.Equal(t, 1, state.ReviewCount)
}

func TestReconcileSkipsWhenRemoteUnavailable(t *testing.T) {
	ctx := context.Background()
	remote := &unavailableRemote{}
	engine, events, _, _ := newTestEngine(remote)

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, "user-1", "ephemeral", domain.GradeGood, base)
	require.NoError(t, events.Append(ctx, &event))

	report, err := engine.Reconcile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSyncSkipped, report.Outcome)
	assert.Contains(t, report.Reason, "remote fetch failed")
}

func TestReconcileTreatsMalformedRemoteAsEmpty(t *testing.T) {
	ctx := context.Background()
	remote := memory.NewSnapshotStore()
	engine, events, _, _ := newTestEngine(remote)

	_, err := remote.Save(ctx, "user-1", []byte("{corrupt"), "")
	require.NoError(t, err)

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	event := makeEvent(t, "user-1", "ephemeral", domain.GradeGood, base)
	require.NoError(t, events.Append(ctx, &event))

	report, err := engine.Reconcile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, report.Outcome)
	assert.Equal(t, 1, report.Stats.MergedEvents)

	// The corrupt payload was replaced by a valid one.
	payload, _, err := remote.Fetch(ctx, "user-1")
	require.NoError(t, err)
	_, err = Decode(payload)
	assert.NoError(t, err)
}

// blockingRemote parks the first Fetch until released, to hold a pass in
// flight.
type blockingRemote struct {
	release chan struct{}
	started chan struct{}
	fetched bool
}

func (r *blockingRemote) Fetch(ctx context.Context, key string) ([]byte, string, error) {
	if !r.fetched {
		r.fetched = true
		close(r.started)
		<-r.release
	}
	return nil, "", store.ErrSnapshotNotFound
}

func (r *blockingRemote) Save(ctx context.Context, key string, payload []byte, expectedVersion string) (string, error) {
	return "v1", nil
}

// conflictingRemote reports a version conflict on the first N saves.
type conflictingRemote struct {
	inner     *memory.SnapshotStore
	conflicts int
	saves     int
}

func (r *conflictingRemote) Fetch(ctx context.Context, key string) ([]byte, string, error) {
	return r.inner.Fetch(ctx, key)
}

func (r *conflictingRemote) Save(ctx context.Context, key string, payload []byte, expectedVersion string) (string, error) {
	r.saves++
	if r.saves <= r.conflicts {
		return "", store.ErrRemoteConflict
	}
	return r.inner.Save(ctx, key, payload, expectedVersion)
}

// unavailableRemote fails every call.
type unavailableRemote struct{}

func (r *unavailableRemote) Fetch(ctx context.Context, key string) ([]byte, string, error) {
	return nil, "", store.ErrRemoteUnavailable
}

func (r *unavailableRemote) Save(ctx context.Context, key string, payload []byte, expectedVersion string) (string, error) {
	return "", errors.New("unreachable")
}
