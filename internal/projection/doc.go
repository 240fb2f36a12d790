// Package projection rebuilds derived per-word memory state from the
// append-only review event log.
//
// The event log is the source of truth. A word's state is reconstructed
// by sorting its events by (review date, event ID) and replaying them
// through the transition engine from a fixed baseline. The replay is
// structurally idempotent: no wall clock, no randomness, no dependence on
// input order — the same event set always yields bit-identical state.
// The reconciliation engine leans on this to make snapshot merges
// order-independent.
package projection
