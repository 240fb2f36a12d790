package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Grade represents the discrete outcome of a review: 1=again (fail),
// 2=hard, 3=good, 4=easy.
type Grade int

// Possible grade values.
const (
	GradeAgain Grade = 1
	GradeHard  Grade = 2
	GradeGood  Grade = 3
	GradeEasy  Grade = 4
)

// Valid reports whether the grade is within the supported 1..4 range.
func (g Grade) Valid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

// ReviewState tags how a review event was produced.
type ReviewState string

// Possible review state values. The first four mirror the explicit grades;
// ReviewStateImplicitExposure records a passive encounter during reading
// rather than an answered prompt.
const (
	ReviewStateAgain            ReviewState = "again"
	ReviewStateHard             ReviewState = "hard"
	ReviewStateGood             ReviewState = "good"
	ReviewStateEasy             ReviewState = "easy"
	ReviewStateImplicitExposure ReviewState = "implicit_exposure"
)

// Valid reports whether the review state is one of the known tags.
func (s ReviewState) Valid() bool {
	switch s {
	case ReviewStateAgain, ReviewStateHard, ReviewStateGood, ReviewStateEasy,
		ReviewStateImplicitExposure:
		return true
	}
	return false
}

// Implicit reports whether the event records a passive exposure rather
// than an explicit graded review.
func (s ReviewState) Implicit() bool {
	return s == ReviewStateImplicitExposure
}

// ReviewStateForGrade maps an explicit grade to its review state tag.
func ReviewStateForGrade(g Grade) ReviewState {
	switch g {
	case GradeAgain:
		return ReviewStateAgain
	case GradeHard:
		return ReviewStateHard
	case GradeGood:
		return ReviewStateGood
	default:
		return ReviewStateEasy
	}
}

// ReviewEvent is a single entry in the append-only review log. Events are
// the source of truth for all derived memory state: they are never mutated
// or deleted, only unioned across device replicas (a grow-only set keyed
// by ID).
type ReviewEvent struct {
	ID             uuid.UUID   `json:"id"`
	UserID         string      `json:"user_id"`
	Lemma          string      `json:"lemma"` // lowercased word key
	Grade          Grade       `json:"grade"`
	ReviewedAt     time.Time   `json:"reviewed_at"`
	DurationMs     int64       `json:"duration_ms"`
	ScheduledDays  float64     `json:"scheduled_days"`
	ReviewState    ReviewState `json:"review_state"`
	DeviceID       string      `json:"device_id"`
	LegacySourceID string      `json:"legacy_source_id,omitempty"`
}

// NormalizeLemma lowercases and trims a word key. All event and state
// lookups go through the normalized form.
func NormalizeLemma(lemma string) string {
	return strings.ToLower(strings.TrimSpace(lemma))
}

// NewReviewEvent creates a validated review event with a fresh ID and the
// lemma normalized. reviewedAt is truncated to UTC for stable ordering
// across devices in different time zones.
func NewReviewEvent(
	userID, lemma string,
	grade Grade,
	state ReviewState,
	reviewedAt time.Time,
	durationMs int64,
	scheduledDays float64,
	deviceID string,
) (*ReviewEvent, error) {
	event := &ReviewEvent{
		ID:            uuid.New(),
		UserID:        userID,
		Lemma:         NormalizeLemma(lemma),
		Grade:         grade,
		ReviewedAt:    reviewedAt.UTC(),
		DurationMs:    durationMs,
		ScheduledDays: scheduledDays,
		ReviewState:   state,
		DeviceID:      deviceID,
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the ReviewEvent has valid data.
// Returns an error if any field fails validation.
func (e *ReviewEvent) Validate() error {
	if e.UserID == "" {
		return ErrEmptyUserID
	}

	if e.Lemma == "" {
		return ErrEmptyLemma
	}

	if !e.Grade.Valid() {
		return ErrInvalidGrade
	}

	if !e.ReviewState.Valid() {
		return ErrInvalidReviewState
	}

	if e.DurationMs < 0 {
		return ErrInvalidDuration
	}

	if e.ScheduledDays < 0 {
		return ErrInvalidScheduledDays
	}

	return nil
}

// Key returns the (userID, lemma) projection key the event belongs to.
func (e *ReviewEvent) Key() StateKey {
	return StateKey{UserID: e.UserID, Lemma: e.Lemma}
}
