package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/projection"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

// EventStore is an in-memory implementation of store.EventStore.
type EventStore struct {
	mu     sync.RWMutex
	events map[uuid.UUID]domain.ReviewEvent
}

// NewEventStore creates an empty in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		events: make(map[uuid.UUID]domain.ReviewEvent),
	}
}

// Ensure EventStore implements store.EventStore interface
var _ store.EventStore = (*EventStore)(nil)

// Append implements store.EventStore.Append.
func (s *EventStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	if event == nil {
		return fmt.Errorf("%w: nil event", store.ErrInvalidEntity)
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Grow-only set: an existing ID is a replicated duplicate, not an error.
	if _, ok := s.events[event.ID]; ok {
		return nil
	}
	s.events[event.ID] = *event
	return nil
}

// AppendMultiple implements store.EventStore.AppendMultiple. The batch
// is validated up front so the write is all-or-nothing.
func (s *EventStore) AppendMultiple(ctx context.Context, events []*domain.ReviewEvent) error {
	for _, event := range events {
		if event == nil {
			return fmt.Errorf("%w: nil event", store.ErrInvalidEntity)
		}
		if err := event.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, event := range events {
		if _, ok := s.events[event.ID]; ok {
			continue
		}
		s.events[event.ID] = *event
	}
	return nil
}

// GetByID implements store.EventStore.GetByID.
func (s *EventStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return nil, store.ErrEventNotFound
	}
	return &event, nil
}

// ListByUser implements store.EventStore.ListByUser.
func (s *EventStore) ListByUser(ctx context.Context, userID string) ([]domain.ReviewEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []domain.ReviewEvent
	for _, event := range s.events {
		if event.UserID == userID {
			events = append(events, event)
		}
	}
	projection.SortEvents(events)
	return events, nil
}

// ListByUserLemma implements store.EventStore.ListByUserLemma.
func (s *EventStore) ListByUserLemma(ctx context.Context, userID, lemma string) ([]domain.ReviewEvent, error) {
	lemma = domain.NormalizeLemma(lemma)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []domain.ReviewEvent
	for _, event := range s.events {
		if event.UserID == userID && event.Lemma == lemma {
			events = append(events, event)
		}
	}
	projection.SortEvents(events)
	return events, nil
}

// ListRecent implements store.EventStore.ListRecent.
func (s *EventStore) ListRecent(ctx context.Context, userID string, limit int) ([]domain.ReviewEvent, error) {
	events, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// ListByUser returns ascending; reverse into newest-first and cap.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// ExistsImplicitOn implements store.EventStore.ExistsImplicitOn.
func (s *EventStore) ExistsImplicitOn(ctx context.Context, userID, lemma string, day time.Time) (bool, error) {
	lemma = domain.NormalizeLemma(lemma)
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, event := range s.events {
		if event.UserID != userID || event.Lemma != lemma {
			continue
		}
		if !event.ReviewState.Implicit() {
			continue
		}
		if !event.ReviewedAt.Before(dayStart) && event.ReviewedAt.Before(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}
