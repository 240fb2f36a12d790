package store

import (
	"context"
	"time"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
)

// WordStateStore defines the interface for derived word-state
// persistence. Rows here are a materialized projection of the event log:
// callers only write states produced by the transition engine or the
// reconciliation replay, never hand-edited values.
type WordStateStore interface {
	// Get retrieves the state for one (user, lemma) key.
	// Returns ErrWordStateNotFound if no state exists yet.
	Get(ctx context.Context, userID, lemma string) (*domain.WordMemoryState, error)

	// Upsert creates or replaces the state for its key.
	// Returns validation errors if the state data is invalid.
	Upsert(ctx context.Context, state *domain.WordMemoryState) error

	// UpsertMultiple creates or replaces a batch of states atomically.
	// Used by the reconciliation engine to apply a replayed snapshot.
	UpsertMultiple(ctx context.Context, states []*domain.WordMemoryState) error

	// ListByUser returns every stored state for a user.
	ListByUser(ctx context.Context, userID string) ([]domain.WordMemoryState, error)

	// ListDue returns the user's non-ignored states whose next review
	// date is at or before now, soonest first.
	ListDue(ctx context.Context, userID string, now time.Time) ([]domain.WordMemoryState, error)
}
