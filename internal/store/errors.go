package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g. a review event with an existing ID).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrRemoteConflict is returned by the remote snapshot store when a
	// save carries a stale version token: another device wrote the
	// record since it was fetched. The sync engine re-fetches, re-merges
	// and retries exactly once on this error.
	ErrRemoteConflict = errors.New("remote version conflict")

	// ErrRemoteUnavailable is returned when the remote store cannot be
	// reached. Sync failure is never fatal to the learning flow.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// Entity-specific "not found" errors

	// ErrEventNotFound indicates that the requested review event does not exist.
	ErrEventNotFound = fmt.Errorf("%w: review event", ErrNotFound)

	// ErrWordStateNotFound indicates that the requested word memory state does not exist.
	ErrWordStateNotFound = fmt.Errorf("%w: word memory state", ErrNotFound)

	// ErrProfileNotFound indicates that the requested learner profile does not exist.
	ErrProfileNotFound = fmt.Errorf("%w: learner profile", ErrNotFound)

	// ErrSnapshotNotFound indicates that no remote snapshot exists for the
	// user yet. The first sync of a fresh account starts from here.
	ErrSnapshotNotFound = fmt.Errorf("%w: snapshot", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError checks if the error signals a remote write race.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrRemoteConflict)
}
