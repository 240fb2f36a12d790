package sync

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
)

// Snapshot is the full exportable state bundle for merge: the review
// event log, the derived word states, and the learner profiles it covers
// (one per user; a multi-profile bundle supports household exports).
// The remote store treats the encoded form as an opaque payload.
type Snapshot struct {
	Events     []domain.ReviewEvent     `json:"events"`
	WordStates []domain.WordMemoryState `json:"word_states"`
	Profiles   []domain.LearnerProfile  `json:"profiles"`
	ExportedAt time.Time                `json:"exported_at"`
}

// Empty reports whether the snapshot carries no data at all.
func (s Snapshot) Empty() bool {
	return len(s.Events) == 0 && len(s.WordStates) == 0 && len(s.Profiles) == 0
}

// Profile returns the snapshot's profile for one user, or nil.
func (s Snapshot) Profile(userID string) *domain.LearnerProfile {
	for i := range s.Profiles {
		if s.Profiles[i].UserID == userID {
			return &s.Profiles[i]
		}
	}
	return nil
}

// Encode serializes the snapshot for the remote store.
func (s Snapshot) Encode() ([]byte, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return payload, nil
}

// Decode parses a remote payload. A malformed payload yields an empty
// snapshot and the decode error: the caller logs it and merges against
// empty, so a corrupt remote record degrades to "local wins" instead of
// failing the sync.
func Decode(payload []byte) (Snapshot, error) {
	if len(payload) == 0 {
		return Snapshot{}, nil
	}

	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snapshot, nil
}
