package projection

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/domain/fsrs"
)

var base = time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

func event(lemma string, grade domain.Grade, at time.Time) domain.ReviewEvent {
	state := domain.ReviewStateForGrade(grade)
	e, _ := domain.NewReviewEvent("user-1", lemma, grade, state, at, 1500, 1, "device-a")
	return *e
}

func implicitEvent(lemma string, at time.Time) domain.ReviewEvent {
	e, _ := domain.NewReviewEvent(
		"user-1", lemma, domain.GradeGood, domain.ReviewStateImplicitExposure, at, 0, 0, "device-a",
	)
	return *e
}

func defaultInput() Input {
	return Input{
		Weights:   fsrs.DefaultWeights(),
		Retention: 0.9,
		Ignored:   map[domain.StateKey]bool{},
	}
}

func TestRebuildEmptyYieldsBaseline(t *testing.T) {
	t.Parallel()

	key := domain.StateKey{UserID: "user-1", Lemma: "word"}
	state := Rebuild(key, nil, defaultInput())

	if state.Status != domain.WordStatusNew {
		t.Errorf("Expected status new, got %q", state.Status)
	}
	if state.Stability != domain.BaselineStability {
		t.Errorf("Expected baseline stability, got %f", state.Stability)
	}
	if state.ReviewCount != 0 {
		t.Errorf("Expected zero reviews, got %d", state.ReviewCount)
	}
}

func TestRebuildReplaysInDateOrder(t *testing.T) {
	t.Parallel()

	key := domain.StateKey{UserID: "user-1", Lemma: "word"}
	events := []domain.ReviewEvent{
		event("word", domain.GradeGood, base.Add(48*time.Hour)),
		event("word", domain.GradeGood, base),
		event("word", domain.GradeEasy, base.Add(120*time.Hour)),
	}

	state := Rebuild(key, events, defaultInput())

	if state.ReviewCount != 3 {
		t.Errorf("Expected 3 reviews, got %d", state.ReviewCount)
	}
	want := base.Add(120 * time.Hour)
	if state.LastReviewedAt == nil || !state.LastReviewedAt.Equal(want) {
		t.Errorf("Expected last review at %v, got %v", want, state.LastReviewedAt)
	}
	if state.UpdatedAt != want {
		t.Errorf("Expected UpdatedAt pinned to the last event, got %v", state.UpdatedAt)
	}
}

func TestRebuildOrderIndependent(t *testing.T) {
	t.Parallel()

	key := domain.StateKey{UserID: "user-1", Lemma: "word"}
	events := []domain.ReviewEvent{
		event("word", domain.GradeGood, base),
		event("word", domain.GradeAgain, base.Add(24*time.Hour)),
		event("word", domain.GradeHard, base.Add(72*time.Hour)),
		implicitEvent("word", base.Add(96*time.Hour)),
	}
	shuffled := []domain.ReviewEvent{events[3], events[1], events[0], events[2]}

	first := Rebuild(key, events, defaultInput())
	second := Rebuild(key, shuffled, defaultInput())

	if first.Stability != second.Stability ||
		first.Difficulty != second.Difficulty ||
		first.Retrievability != second.Retrievability ||
		first.ReviewCount != second.ReviewCount ||
		first.LapseCount != second.LapseCount ||
		first.Status != second.Status {
		t.Errorf("Replay must be order independent: %+v vs %+v", first, second)
	}
}

func TestRebuildDeterministicAcrossRuns(t *testing.T) {
	t.Parallel()

	key := domain.StateKey{UserID: "user-1", Lemma: "word"}
	events := []domain.ReviewEvent{
		event("word", domain.GradeGood, base),
		event("word", domain.GradeGood, base.Add(3*24*time.Hour)),
		event("word", domain.GradeAgain, base.Add(9*24*time.Hour)),
	}

	first := Rebuild(key, append([]domain.ReviewEvent(nil), events...), defaultInput())
	second := Rebuild(key, append([]domain.ReviewEvent(nil), events...), defaultInput())

	if first.Stability != second.Stability ||
		first.Difficulty != second.Difficulty ||
		first.Retrievability != second.Retrievability {
		t.Error("Replaying the same event set twice must yield bit-identical state")
	}
}

func TestRebuildTieBreaksOnEventID(t *testing.T) {
	t.Parallel()

	key := domain.StateKey{UserID: "user-1", Lemma: "word"}

	// Two events at the same instant: order must come from the ID, not
	// from slice position.
	a := event("word", domain.GradeAgain, base)
	b := event("word", domain.GradeEasy, base)

	first := Rebuild(key, []domain.ReviewEvent{a, b}, defaultInput())
	second := Rebuild(key, []domain.ReviewEvent{b, a}, defaultInput())

	if first.Stability != second.Stability || first.Status != second.Status {
		t.Error("Same-instant events must replay in ID order regardless of input order")
	}
}

func TestRebuildLapseCount(t *testing.T) {
	t.Parallel()

	key := domain.StateKey{UserID: "user-1", Lemma: "word"}
	events := []domain.ReviewEvent{
		event("word", domain.GradeGood, base),
		event("word", domain.GradeAgain, base.Add(24*time.Hour)),
		event("word", domain.GradeAgain, base.Add(48*time.Hour)),
	}

	state := Rebuild(key, events, defaultInput())
	if state.LapseCount != 2 {
		t.Errorf("Expected 2 lapses, got %d", state.LapseCount)
	}
}

func TestRebuildIgnoredForcedBack(t *testing.T) {
	t.Parallel()

	key := domain.StateKey{UserID: "user-1", Lemma: "word"}
	input := defaultInput()
	input.Ignored[key] = true

	events := []domain.ReviewEvent{
		event("word", domain.GradeEasy, base),
		event("word", domain.GradeEasy, base.Add(30*24*time.Hour)),
	}

	state := Rebuild(key, events, input)
	if state.Status != domain.WordStatusIgnored {
		t.Errorf("Expected ignored status to be forced, got %q", state.Status)
	}
	// History is preserved under the ignored flag.
	if state.ReviewCount != 2 {
		t.Errorf("Expected replayed review count 2, got %d", state.ReviewCount)
	}
}

func TestRebuildSkipsOtherKeys(t *testing.T) {
	t.Parallel()

	key := domain.StateKey{UserID: "user-1", Lemma: "word"}
	events := []domain.ReviewEvent{
		event("word", domain.GradeGood, base),
		event("other", domain.GradeGood, base),
	}

	state := Rebuild(key, events, defaultInput())
	if state.ReviewCount != 1 {
		t.Errorf("Expected only the key's events to replay, got %d reviews", state.ReviewCount)
	}
}

func TestRebuildAllGroupsByKey(t *testing.T) {
	t.Parallel()

	events := []domain.ReviewEvent{
		event("alpha", domain.GradeGood, base),
		event("alpha", domain.GradeGood, base.Add(24*time.Hour)),
		event("beta", domain.GradeAgain, base),
		implicitEvent("gamma", base),
	}

	states := RebuildAll(events, defaultInput())
	if len(states) != 3 {
		t.Fatalf("Expected 3 keys, got %d", len(states))
	}

	alpha := states[domain.StateKey{UserID: "user-1", Lemma: "alpha"}]
	if alpha == nil || alpha.ReviewCount != 2 {
		t.Errorf("Expected alpha with 2 reviews, got %+v", alpha)
	}

	gamma := states[domain.StateKey{UserID: "user-1", Lemma: "gamma"}]
	if gamma == nil || gamma.ReviewCount != 0 {
		t.Errorf("Expected gamma untouched by explicit reviews, got %+v", gamma)
	}
	if gamma != nil && gamma.Stability <= 0 {
		t.Errorf("Expected gamma seeded by the exposure, got stability %f", gamma.Stability)
	}
}

func TestSortEventsTotalOrder(t *testing.T) {
	t.Parallel()

	a := event("word", domain.GradeGood, base)
	b := event("word", domain.GradeGood, base)
	a.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b.ID = uuid.MustParse("00000000-0000-0000-0000-000000000002")

	events := []domain.ReviewEvent{b, a}
	SortEvents(events)

	if events[0].ID != a.ID {
		t.Error("Expected the lower ID to sort first at equal timestamps")
	}
}
