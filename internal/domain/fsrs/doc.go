// Package fsrs implements the spaced-repetition transition engine: a pure
// function from (memory state, grade, elapsed time, parameter vector) to
// the next memory state and review interval.
//
// The model follows the FSRS family: retrievability decays along a
// power-law forgetting curve, stability grows multiplicatively on
// successful recall and is recomputed from a post-lapse formula on
// failure, and difficulty is nudged per grade with mean reversion.
//
// Everything in this package is deterministic and side-effect free, which
// the reconciliation engine depends on: replaying the same event stream
// through the same parameter vector must always produce bit-identical
// state.
package fsrs
