package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

// snapshotRecord is one stored remote snapshot with its version token.
type snapshotRecord struct {
	payload []byte
	version string
}

// SnapshotStore is an in-memory implementation of
// store.RemoteSnapshotStore with the same optimistic-concurrency
// semantics as the PostgreSQL one. Tests use it to stage write races.
type SnapshotStore struct {
	mu      sync.Mutex
	records map[string]snapshotRecord
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		records: make(map[string]snapshotRecord),
	}
}

// Ensure SnapshotStore implements store.RemoteSnapshotStore interface
var _ store.RemoteSnapshotStore = (*SnapshotStore)(nil)

// Fetch implements store.RemoteSnapshotStore.Fetch.
func (s *SnapshotStore) Fetch(ctx context.Context, key string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[key]
	if !ok {
		return nil, "", store.ErrSnapshotNotFound
	}

	payload := make([]byte, len(record.payload))
	copy(payload, record.payload)
	return payload, record.version, nil
}

// Save implements store.RemoteSnapshotStore.Save. An empty
// expectedVersion asserts the record does not exist yet.
func (s *SnapshotStore) Save(ctx context.Context, key string, payload []byte, expectedVersion string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[key]
	switch {
	case !exists && expectedVersion != "":
		return "", store.ErrRemoteConflict
	case exists && record.version != expectedVersion:
		return "", store.ErrRemoteConflict
	}

	stored := make([]byte, len(payload))
	copy(stored, payload)

	version := uuid.NewString()
	s.records[key] = snapshotRecord{payload: stored, version: version}
	return version, nil
}
