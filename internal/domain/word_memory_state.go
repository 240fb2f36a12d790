package domain

import (
	"errors"
	"time"
)

// WordStatus describes where a word sits in the learning lifecycle.
type WordStatus string

// Possible word status values.
const (
	WordStatusNew      WordStatus = "new"
	WordStatusLearning WordStatus = "learning"
	WordStatusKnown    WordStatus = "known"
	WordStatusIgnored  WordStatus = "ignored"
)

// Valid reports whether the status is one of the known values.
func (s WordStatus) Valid() bool {
	switch s {
	case WordStatusNew, WordStatusLearning, WordStatusKnown, WordStatusIgnored:
		return true
	}
	return false
}

// Baseline memory parameters. Replays always start from these values, so
// derived state is a pure function of the event log.
const (
	BaselineStability      = 0.0
	BaselineDifficulty     = 0.3
	BaselineRetrievability = 1.0
)

// Difficulty bounds. The baseline sits below the post-review floor; once a
// word has been reviewed its difficulty lives in [1, 10].
const (
	MinDifficulty = 0.3
	MaxDifficulty = 10.0
)

// Common validation errors for WordMemoryState.
var (
	ErrInvalidWordStatus     = errors.New("invalid word status")
	ErrInvalidStability      = errors.New("stability must be greater than or equal to 0")
	ErrInvalidDifficulty     = errors.New("difficulty must be within [0.3, 10]")
	ErrInvalidRetrievability = errors.New("retrievability must be within [0, 1]")
	ErrNegativeReviewCount   = errors.New("review count must be greater than or equal to 0")
	ErrNegativeLapseCount    = errors.New("lapse count must be greater than or equal to 0")
)

// StateKey identifies one word's memory state for one learner.
type StateKey struct {
	UserID string
	Lemma  string
}

// WordMemoryState tracks a learner's spaced-repetition memory state for a
// single word. It is a materialized projection of the review event log:
// replaying every non-ignored event for the key, in event-date order,
// through the transition engine from the baseline must reproduce it
// exactly. The one exception is the ignored status, a separate user action
// that suppresses further projection while preserving history.
type WordMemoryState struct {
	UserID         string     `json:"user_id"`
	Lemma          string     `json:"lemma"`
	Status         WordStatus `json:"status"`
	Stability      float64    `json:"stability"`       // Expected days until retrievability decays to ~90%
	Difficulty     float64    `json:"difficulty"`      // Intrinsic hardness, [1, 10] after first review
	Retrievability float64    `json:"retrievability"`  // Modeled recall probability, [0, 1]
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt   *time.Time `json:"next_review_at,omitempty"`
	ReviewCount    int        `json:"review_count"`
	LapseCount     int        `json:"lapse_count"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewBaselineWordMemoryState returns the fixed starting state every replay
// begins from: zero stability, baseline difficulty, full retrievability,
// zero counts.
func NewBaselineWordMemoryState(userID, lemma string) *WordMemoryState {
	return &WordMemoryState{
		UserID:         userID,
		Lemma:          NormalizeLemma(lemma),
		Status:         WordStatusNew,
		Stability:      BaselineStability,
		Difficulty:     BaselineDifficulty,
		Retrievability: BaselineRetrievability,
		ReviewCount:    0,
		LapseCount:     0,
	}
}

// Validate checks if the WordMemoryState has valid data.
// Returns an error if any field fails validation.
func (s *WordMemoryState) Validate() error {
	if s.UserID == "" {
		return ErrEmptyUserID
	}

	if s.Lemma == "" {
		return ErrEmptyLemma
	}

	if !s.Status.Valid() {
		return ErrInvalidWordStatus
	}

	if s.Stability < 0 {
		return ErrInvalidStability
	}

	if s.Difficulty < MinDifficulty || s.Difficulty > MaxDifficulty {
		return ErrInvalidDifficulty
	}

	if s.Retrievability < 0 || s.Retrievability > 1 {
		return ErrInvalidRetrievability
	}

	if s.ReviewCount < 0 {
		return ErrNegativeReviewCount
	}

	if s.LapseCount < 0 {
		return ErrNegativeLapseCount
	}

	return nil
}

// Key returns the (userID, lemma) key for this state.
func (s *WordMemoryState) Key() StateKey {
	return StateKey{UserID: s.UserID, Lemma: s.Lemma}
}

// Clone returns a deep copy. Time pointers are duplicated so the copy can
// be mutated without aliasing the original.
func (s *WordMemoryState) Clone() *WordMemoryState {
	clone := *s
	if s.LastReviewedAt != nil {
		t := *s.LastReviewedAt
		clone.LastReviewedAt = &t
	}
	if s.NextReviewAt != nil {
		t := *s.NextReviewAt
		clone.NextReviewAt = &t
	}
	return &clone
}
