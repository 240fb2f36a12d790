// Package sync implements the cross-device reconciliation engine. A
// device's full learning state travels as a Snapshot (events, word
// states, profiles); two snapshots merge deterministically — grow-only
// event union with a total-order tie-break, last-writer-wins-with-union
// profile merge, field-wise word-state base merge — and the merged event
// set is then replayed through the transition engine so the resulting
// word states are a pure function of the merged log. Merge is
// commutative and idempotent, which lets devices sync in any order
// without coordination.
package sync
