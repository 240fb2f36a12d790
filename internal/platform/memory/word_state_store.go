package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

// WordStateStore is an in-memory implementation of store.WordStateStore.
type WordStateStore struct {
	mu     sync.RWMutex
	states map[domain.StateKey]*domain.WordMemoryState
}

// NewWordStateStore creates an empty in-memory word-state store.
func NewWordStateStore() *WordStateStore {
	return &WordStateStore{
		states: make(map[domain.StateKey]*domain.WordMemoryState),
	}
}

// Ensure WordStateStore implements store.WordStateStore interface
var _ store.WordStateStore = (*WordStateStore)(nil)

// Get implements store.WordStateStore.Get.
func (s *WordStateStore) Get(ctx context.Context, userID, lemma string) (*domain.WordMemoryState, error) {
	key := domain.StateKey{UserID: userID, Lemma: domain.NormalizeLemma(lemma)}

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[key]
	if !ok {
		return nil, store.ErrWordStateNotFound
	}
	return state.Clone(), nil
}

// Upsert implements store.WordStateStore.Upsert.
func (s *WordStateStore) Upsert(ctx context.Context, state *domain.WordMemoryState) error {
	if state == nil {
		return fmt.Errorf("%w: nil state", store.ErrInvalidEntity)
	}
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.Key()] = state.Clone()
	return nil
}

// UpsertMultiple implements store.WordStateStore.UpsertMultiple. The
// batch is validated up front so the write is all-or-nothing.
func (s *WordStateStore) UpsertMultiple(ctx context.Context, states []*domain.WordMemoryState) error {
	for _, state := range states {
		if state == nil {
			return fmt.Errorf("%w: nil state", store.ErrInvalidEntity)
		}
		if err := state.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, state := range states {
		s.states[state.Key()] = state.Clone()
	}
	return nil
}

// ListByUser implements store.WordStateStore.ListByUser.
func (s *WordStateStore) ListByUser(ctx context.Context, userID string) ([]domain.WordMemoryState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var states []domain.WordMemoryState
	for key, state := range s.states {
		if key.UserID == userID {
			states = append(states, *state.Clone())
		}
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].Lemma < states[j].Lemma
	})
	return states, nil
}

// ListDue implements store.WordStateStore.ListDue.
func (s *WordStateStore) ListDue(ctx context.Context, userID string, now time.Time) ([]domain.WordMemoryState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []domain.WordMemoryState
	for key, state := range s.states {
		if key.UserID != userID || state.Status == domain.WordStatusIgnored {
			continue
		}
		if state.NextReviewAt != nil && !state.NextReviewAt.After(now) {
			due = append(due, *state.Clone())
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextReviewAt.Before(*due[j].NextReviewAt)
	})
	return due, nil
}
