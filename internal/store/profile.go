package store

import (
	"context"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
)

// ProfileStore defines the interface for learner profile persistence.
type ProfileStore interface {
	// Get retrieves a user's profile.
	// Returns ErrProfileNotFound if the profile does not exist.
	Get(ctx context.Context, userID string) (*domain.LearnerProfile, error)

	// Save creates or replaces the profile.
	// Returns validation errors if the profile data is invalid.
	Save(ctx context.Context, profile *domain.LearnerProfile) error

	// ListUserIDs returns the IDs of all users with a profile, sorted
	// ascending. Background sweeps iterate this list.
	ListUserIDs(ctx context.Context) ([]string, error)
}
