// Package store defines the persistence interfaces of the learning-state
// engine and the sentinel errors implementations share.
//
// The local store holds the append-only review event log, the derived
// word states, and the learner profile; the remote snapshot store is the
// cross-device exchange point with optimistic concurrency. Implementations
// live under internal/platform.
package store
