package fsrs

import (
	"errors"
	"time"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
)

// Common errors
var (
	ErrNilState         = errors.New("word memory state cannot be nil")
	ErrInvalidGrade     = errors.New("invalid review grade")
	ErrInvalidRetention = errors.New("retention target must be in (0, 1)")
)

// Service defines the interface for transition-engine operations over
// whole word states. All methods follow immutability principles: they
// return new instances rather than modifying their inputs.
type Service interface {
	// ApplyReview applies one explicit graded review to a word state and
	// returns the updated state, scheduled to the given retention target.
	ApplyReview(
		state *domain.WordMemoryState,
		grade domain.Grade,
		reviewedAt time.Time,
		retention float64,
	) (*domain.WordMemoryState, error)

	// ApplyImplicitExposure applies a passive reading encounter: a
	// reduced-strength stability gain that never promotes the word to
	// known and never reschedules a due review.
	ApplyImplicitExposure(
		state *domain.WordMemoryState,
		seenAt time.Time,
	) (*domain.WordMemoryState, error)

	// Params exposes the active parameter set (for interval previews).
	Params() *Params
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a transition service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a transition service with custom
// parameters, typically carrying a personalized weight vector.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// Params implements Service.Params.
func (s *defaultService) Params() *Params {
	return s.params
}

// ApplyReview implements the Service interface for explicit reviews.
func (s *defaultService) ApplyReview(
	state *domain.WordMemoryState,
	grade domain.Grade,
	reviewedAt time.Time,
	retention float64,
) (*domain.WordMemoryState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if !grade.Valid() {
		return nil, ErrInvalidGrade
	}

	if retention <= 0 || retention >= 1 {
		return nil, ErrInvalidRetention
	}

	reviewedAt = reviewedAt.UTC()
	next := state.Clone()

	stability, difficulty, retrievability := NextState(
		state.Stability,
		state.Difficulty,
		grade,
		s.elapsedDays(state, reviewedAt),
		s.params,
	)

	next.Stability = stability
	next.Difficulty = difficulty
	next.Retrievability = retrievability
	next.ReviewCount++
	if grade == domain.GradeAgain {
		next.LapseCount++
	}

	next.Status = s.nextStatus(state.Status, grade, stability)

	interval := NextInterval(stability, retention, s.params)
	due := reviewedAt.Add(time.Duration(interval * 24 * float64(time.Hour)))
	next.LastReviewedAt = &reviewedAt
	next.NextReviewAt = &due
	next.UpdatedAt = reviewedAt

	return next, nil
}

// ApplyImplicitExposure implements the Service interface for passive
// encounters. An exposure on a never-reviewed word seeds a small fraction
// of the first-review "good" stability; on a reviewed word it contributes
// a fraction of the gain a good review would have produced now. The next
// review date is left untouched.
func (s *defaultService) ApplyImplicitExposure(
	state *domain.WordMemoryState,
	seenAt time.Time,
) (*domain.WordMemoryState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	seenAt = seenAt.UTC()
	next := state.Clone()
	w := &s.params.Weights

	if state.Stability <= s.params.Epsilon {
		next.Stability = clampStability(s.params.ImplicitStrength * initStability(domain.GradeGood, w))
		next.Difficulty = clampDifficulty(initDifficulty(domain.GradeGood, w))
		next.Retrievability = 1.0
	} else {
		elapsed := s.elapsedDays(state, seenAt)
		r := Retrievability(elapsed, state.Stability, s.params)
		next.Stability = clampStability(
			implicitStabilityGain(state.Difficulty, state.Stability, r, elapsed, s.params),
		)
		next.Retrievability = r
	}

	next.LastReviewedAt = &seenAt
	next.UpdatedAt = seenAt

	return next, nil
}

// nextStatus computes the lifecycle transition for an explicit review:
// any lapse sends the word (back) to learning; a good-or-better answer on
// a memory stable past the known threshold promotes it; ignored words
// stay ignored.
func (s *defaultService) nextStatus(
	current domain.WordStatus,
	grade domain.Grade,
	stability float64,
) domain.WordStatus {
	if current == domain.WordStatusIgnored {
		return domain.WordStatusIgnored
	}

	if grade == domain.GradeAgain {
		return domain.WordStatusLearning
	}

	if grade >= domain.GradeGood && stability >= s.params.KnownStabilityDays {
		return domain.WordStatusKnown
	}

	if current == domain.WordStatusKnown {
		return domain.WordStatusKnown
	}

	return domain.WordStatusLearning
}

// elapsedDays returns the non-negative fractional days since the word was
// last seen, or zero for a first encounter.
func (s *defaultService) elapsedDays(state *domain.WordMemoryState, now time.Time) float64 {
	if state.LastReviewedAt == nil {
		return 0
	}
	elapsed := now.Sub(*state.LastReviewedAt).Hours() / 24
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
