package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
)

// EventStore defines the interface for review event persistence. Events
// form a grow-only set: there is no update and no delete. Appending an
// event whose ID already exists is a no-op, which makes replicated
// appends idempotent.
type EventStore interface {
	// Append saves one event. Duplicate IDs are silently skipped.
	// Returns validation errors if the event data is invalid.
	Append(ctx context.Context, event *domain.ReviewEvent) error

	// AppendMultiple saves a batch of events atomically, skipping IDs
	// that already exist. Used by the reconciliation engine to apply a
	// merged event set in one shot.
	AppendMultiple(ctx context.Context, events []*domain.ReviewEvent) error

	// GetByID retrieves an event by its unique ID.
	// Returns ErrEventNotFound if the event does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewEvent, error)

	// ListByUser returns every event for a user, ordered by
	// (reviewed_at, id) ascending.
	ListByUser(ctx context.Context, userID string) ([]domain.ReviewEvent, error)

	// ListByUserLemma returns every event for one (user, lemma) key,
	// ordered by (reviewed_at, id) ascending.
	ListByUserLemma(ctx context.Context, userID, lemma string) ([]domain.ReviewEvent, error)

	// ListRecent returns the user's most recent events, newest first,
	// capped at limit. The rank governor reads its rolling window here.
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.ReviewEvent, error)

	// ExistsImplicitOn reports whether an implicit-exposure event already
	// exists for the key on the given UTC calendar day. Enforces the
	// one-exposure-per-lemma-per-day rule.
	ExistsImplicitOn(ctx context.Context, userID, lemma string, day time.Time) (bool, error)
}
