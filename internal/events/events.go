package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the review path.
const (
	// TypeSyncRequested asks for a reconciliation pass for one user.
	TypeSyncRequested = "sync_requested"
)

// SyncRequestedEvent signals that a user's local state changed enough to
// warrant a reconciliation pass. Triggers are advisory: the sync
// engine's in-flight guard collapses bursts into a single pass.
type SyncRequestedEvent struct {
	// ID is a unique identifier for this event.
	ID uuid.UUID `json:"id"`

	// UserID identifies whose state should be reconciled.
	UserID string `json:"user_id"`

	// Trigger records what caused the request (review burst, ignore
	// action, schedule), for logs only.
	Trigger string `json:"trigger"`

	// CreatedAt is when the event was emitted.
	CreatedAt time.Time `json:"created_at"`
}

// NewSyncRequestedEvent creates a sync request for the given user.
func NewSyncRequestedEvent(userID, trigger string) *SyncRequestedEvent {
	return &SyncRequestedEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Trigger:   trigger,
		CreatedAt: time.Now().UTC(),
	}
}

// Handler processes emitted events and takes appropriate action.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *SyncRequestedEvent) error
}

// Emitter publishes events to registered handlers, letting services
// request background work without knowing who performs it.
type Emitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *SyncRequestedEvent) error
}
