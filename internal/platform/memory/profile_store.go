package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

// ProfileStore is an in-memory implementation of store.ProfileStore.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*domain.LearnerProfile
}

// NewProfileStore creates an empty in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]*domain.LearnerProfile),
	}
}

// Ensure ProfileStore implements store.ProfileStore interface
var _ store.ProfileStore = (*ProfileStore)(nil)

// Get implements store.ProfileStore.Get.
func (s *ProfileStore) Get(ctx context.Context, userID string) (*domain.LearnerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return nil, store.ErrProfileNotFound
	}
	return profile.Clone(), nil
}

// Save implements store.ProfileStore.Save.
func (s *ProfileStore) Save(ctx context.Context, profile *domain.LearnerProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: nil profile", store.ErrInvalidEntity)
	}
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.UserID] = profile.Clone()
	return nil
}

// ListUserIDs implements store.ProfileStore.ListUserIDs.
func (s *ProfileStore) ListUserIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.profiles))
	for userID := range s.profiles {
		ids = append(ids, userID)
	}
	sort.Strings(ids)
	return ids, nil
}
