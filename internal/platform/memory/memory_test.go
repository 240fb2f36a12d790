package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

func newEvent(t *testing.T, userID, lemma string, grade domain.Grade, at time.Time) *domain.ReviewEvent {
	t.Helper()
	event, err := domain.NewReviewEvent(
		userID, lemma, grade, domain.ReviewStateForGrade(grade), at, 1000, 1, "device-a",
	)
	require.NoError(t, err)
	return event
}

func TestEventStoreAppendIdempotent(t *testing.T) {
	ctx := context.Background()
	eventStore := NewEventStore()
	event := newEvent(t, "user-1", "word", domain.GradeGood, time.Now().UTC())

	require.NoError(t, eventStore.Append(ctx, event))
	require.NoError(t, eventStore.Append(ctx, event))

	events, err := eventStore.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, events, 1, "duplicate append must be a no-op")
}

func TestEventStoreListOrdering(t *testing.T) {
	ctx := context.Background()
	eventStore := NewEventStore()
	base := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, eventStore.Append(ctx, newEvent(t, "user-1", "b", domain.GradeGood, base.Add(2*time.Hour))))
	require.NoError(t, eventStore.Append(ctx, newEvent(t, "user-1", "a", domain.GradeGood, base)))
	require.NoError(t, eventStore.Append(ctx, newEvent(t, "user-1", "c", domain.GradeGood, base.Add(time.Hour))))

	events, err := eventStore.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "a", events[0].Lemma)
	assert.Equal(t, "c", events[1].Lemma)
	assert.Equal(t, "b", events[2].Lemma)

	recent, err := eventStore.ListRecent(ctx, "user-1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].Lemma, "ListRecent returns newest first")
}

func TestEventStoreExistsImplicitOn(t *testing.T) {
	ctx := context.Background()
	eventStore := NewEventStore()
	day := time.Date(2025, 4, 1, 15, 30, 0, 0, time.UTC)

	exposure, err := domain.NewReviewEvent(
		"user-1", "word", domain.GradeGood, domain.ReviewStateImplicitExposure, day, 0, 0, "device-a",
	)
	require.NoError(t, err)
	require.NoError(t, eventStore.Append(ctx, exposure))

	found, err := eventStore.ExistsImplicitOn(ctx, "user-1", "word", day.Add(5*time.Hour))
	require.NoError(t, err)
	assert.True(t, found, "same calendar day must match")

	found, err = eventStore.ExistsImplicitOn(ctx, "user-1", "word", day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, found, "next day must not match")

	found, err = eventStore.ExistsImplicitOn(ctx, "user-1", "other", day)
	require.NoError(t, err)
	assert.False(t, found, "other lemma must not match")
}

func TestWordStateStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	stateStore := NewWordStateStore()

	_, err := stateStore.Get(ctx, "user-1", "word")
	assert.ErrorIs(t, err, store.ErrNotFound)

	state := domain.NewBaselineWordMemoryState("user-1", "word")
	state.Difficulty = 4
	require.NoError(t, stateStore.Upsert(ctx, state))

	got, err := stateStore.Get(ctx, "user-1", "Word")
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Difficulty)

	// The store hands out copies, not aliases.
	got.Difficulty = 9
	again, err := stateStore.Get(ctx, "user-1", "word")
	require.NoError(t, err)
	assert.Equal(t, 4.0, again.Difficulty)
}

func TestWordStateStoreListDue(t *testing.T) {
	ctx := context.Background()
	stateStore := NewWordStateStore()
	now := time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)

	due := domain.NewBaselineWordMemoryState("user-1", "due")
	dueAt := now.Add(-time.Hour)
	due.NextReviewAt = &dueAt
	require.NoError(t, stateStore.Upsert(ctx, due))

	future := domain.NewBaselineWordMemoryState("user-1", "future")
	futureAt := now.Add(48 * time.Hour)
	future.NextReviewAt = &futureAt
	require.NoError(t, stateStore.Upsert(ctx, future))

	ignored := domain.NewBaselineWordMemoryState("user-1", "ignored")
	ignored.Status = domain.WordStatusIgnored
	ignored.NextReviewAt = &dueAt
	require.NoError(t, stateStore.Upsert(ctx, ignored))

	states, err := stateStore.ListDue(ctx, "user-1", now)
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, "due", states[0].Lemma)
}

func TestProfileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	profileStore := NewProfileStore()

	_, err := profileStore.Get(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrProfileNotFound)

	profile, err := domain.NewLearnerProfile("user-1", 2500)
	require.NoError(t, err)
	require.NoError(t, profileStore.Save(ctx, profile))

	got, err := profileStore.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2500, got.Rank)

	got.Rank = 9999
	again, err := profileStore.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2500, again.Rank, "store must hand out copies")
}

func TestSnapshotStoreOptimisticConcurrency(t *testing.T) {
	ctx := context.Background()
	snapshotStore := NewSnapshotStore()

	_, _, err := snapshotStore.Fetch(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)

	v1, err := snapshotStore.Save(ctx, "user-1", []byte("one"), "")
	require.NoError(t, err)
	require.NotEmpty(t, v1)

	// A second first-write loses.
	_, err = snapshotStore.Save(ctx, "user-1", []byte("race"), "")
	assert.ErrorIs(t, err, store.ErrRemoteConflict)

	payload, version, err := snapshotStore.Fetch(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), payload)
	assert.Equal(t, v1, version)

	v2, err := snapshotStore.Save(ctx, "user-1", []byte("two"), v1)
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)

	// Stale token after the successful save.
	_, err = snapshotStore.Save(ctx, "user-1", []byte("stale"), v1)
	assert.ErrorIs(t, err, store.ErrRemoteConflict)
}
