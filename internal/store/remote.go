package store

import "context"

// RemoteSnapshotStore is the cross-device exchange point: one opaque
// serialized snapshot per user record key, guarded by optimistic
// concurrency. The payload is opaque to the store — encoding and merge
// semantics belong to the sync engine.
type RemoteSnapshotStore interface {
	// Fetch returns the stored snapshot payload and its version token.
	// Returns ErrSnapshotNotFound when no snapshot exists for the key.
	Fetch(ctx context.Context, key string) (payload []byte, version string, err error)

	// Save writes a snapshot expecting the given version token
	// (empty string for a first write). Returns the new version token,
	// or ErrRemoteConflict if the stored version no longer matches —
	// another device saved since the fetch.
	Save(ctx context.Context, key string, payload []byte, expectedVersion string) (string, error)
}
