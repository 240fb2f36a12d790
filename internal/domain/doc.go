// Package domain defines the core entities of the learning-state engine:
// the append-only review event log, the derived per-word memory state,
// the mutable learner profile, and the ephemeral calibration result.
//
// Entities in this package carry their own validation and hold no
// references to storage, transport, or scheduling concerns. ReviewEvent
// is immutable once created; WordMemoryState is a pure projection of the
// event log and must never be hand-edited independent of an event.
package domain
