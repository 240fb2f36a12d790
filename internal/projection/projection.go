package projection

import (
	"bytes"
	"sort"
	"time"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/domain/fsrs"
)

// Input carries everything a replay depends on. Weights and retention are
// resolved once per user before replaying so every key sees the same
// parameters.
type Input struct {
	Weights   fsrs.Weights
	Retention float64

	// Ignored marks keys whose merged status is ignored: they are still
	// replayed (history is preserved) but forced back to ignored.
	Ignored map[domain.StateKey]bool
}

// SortEvents orders events by (review date, event ID) in place. The event
// ID tie-break makes the order total, so two replicas holding the same
// event set always replay in the same sequence.
func SortEvents(events []domain.ReviewEvent) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].ReviewedAt.Equal(events[j].ReviewedAt) {
			return events[i].ReviewedAt.Before(events[j].ReviewedAt)
		}
		return bytes.Compare(events[i].ID[:], events[j].ID[:]) < 0
	})
}

// Rebuild reconstructs one key's memory state from its events. Events for
// other keys are ignored; a key with no events yields the baseline state.
func Rebuild(key domain.StateKey, events []domain.ReviewEvent, input Input) *domain.WordMemoryState {
	own := make([]domain.ReviewEvent, 0, len(events))
	for i := range events {
		if events[i].Key() == key {
			own = append(own, events[i])
		}
	}
	return replay(key, own, input)
}

// RebuildAll reconstructs the memory state of every key present in the
// event set. This is the replay step of the reconciliation pipeline: it
// runs over the merged event set and its output overrides any base-merged
// word state.
func RebuildAll(events []domain.ReviewEvent, input Input) map[domain.StateKey]*domain.WordMemoryState {
	byKey := make(map[domain.StateKey][]domain.ReviewEvent)
	for i := range events {
		key := events[i].Key()
		byKey[key] = append(byKey[key], events[i])
	}

	states := make(map[domain.StateKey]*domain.WordMemoryState, len(byKey))
	for key, group := range byKey {
		states[key] = replay(key, group, input)
	}
	return states
}

// replay folds a key's events, in total order, through the transition
// engine starting from the fixed baseline.
//
// Replay must be total: events were validated on append, and a malformed
// straggler (possible with legacy imports) is skipped rather than allowed
// to branch the outcome on an error path.
func replay(key domain.StateKey, events []domain.ReviewEvent, input Input) *domain.WordMemoryState {
	SortEvents(events)

	params := fsrs.NewDefaultParams().WithWeights(input.Weights)
	svc := fsrs.NewServiceWithParams(params)

	retention := input.Retention
	if retention <= 0 || retention >= 1 {
		retention = domain.DefaultRetentionTarget
	}

	state := domain.NewBaselineWordMemoryState(key.UserID, key.Lemma)
	var lastApplied time.Time

	for i := range events {
		event := &events[i]
		if event.Validate() != nil {
			continue
		}

		var next *domain.WordMemoryState
		var err error
		if event.ReviewState.Implicit() {
			next, err = svc.ApplyImplicitExposure(state, event.ReviewedAt)
		} else {
			next, err = svc.ApplyReview(state, event.Grade, event.ReviewedAt, retention)
		}
		if err != nil {
			continue
		}
		state = next
		lastApplied = event.ReviewedAt
	}

	if input.Ignored[key] {
		state.Status = domain.WordStatusIgnored
	}
	if !lastApplied.IsZero() {
		state.UpdatedAt = lastApplied.UTC()
	}

	return state
}
