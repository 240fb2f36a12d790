package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/domain/fsrs"
	appevents "github.com/tuluyhansozen/Lexical-sub002/internal/events"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/logger"
	"github.com/tuluyhansozen/Lexical-sub002/internal/projection"
	"github.com/tuluyhansozen/Lexical-sub002/internal/service/rank"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

// DefaultSeedRank is the starting rank for a learner who reviews before
// taking the calibration quiz.
const DefaultSeedRank = 1000

// ReviewService is the write path of the learning engine: it appends
// review events, advances the derived word state synchronously, keeps
// the ignored set in step, and opportunistically runs the rank governor.
// Remote sync is only ever triggered, never awaited, so submission stays
// fast and offline-safe.
type ReviewService struct {
	eventStore   store.EventStore
	stateStore   store.WordStateStore
	profileStore store.ProfileStore
	governor     *rank.Governor
	emitter      appevents.Emitter
	logger       *slog.Logger
	clock        func() time.Time
	locks        *userLocks
}

// NewReviewService creates the review service. governor and emitter may
// be nil in reduced deployments (no rank adjustments / no sync
// triggers). If logger is nil, a default logger will be used.
func NewReviewService(
	eventStore store.EventStore,
	stateStore store.WordStateStore,
	profileStore store.ProfileStore,
	governor *rank.Governor,
	emitter appevents.Emitter,
	logger *slog.Logger,
) *ReviewService {
	if eventStore == nil {
		panic("eventStore cannot be nil")
	}
	if stateStore == nil {
		panic("stateStore cannot be nil")
	}
	if profileStore == nil {
		panic("profileStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewService{
		eventStore:   eventStore,
		stateStore:   stateStore,
		profileStore: profileStore,
		governor:     governor,
		emitter:      emitter,
		logger:       logger.With(slog.String("component", "review_service")),
		clock:        func() time.Time { return time.Now().UTC() },
		locks:        newUserLocks(),
	}
}

// WithClock overrides the service's time source, for tests.
func (s *ReviewService) WithClock(clock func() time.Time) *ReviewService {
	s.clock = clock
	return s
}

// SubmitReview records one explicit graded review and synchronously
// advances the word's memory state. Returns the updated state and, when
// the governor ran, its rank decision. Governor and sync failures never
// fail the submission.
func (s *ReviewService) SubmitReview(
	ctx context.Context,
	userID, lemma string,
	grade domain.Grade,
	durationMs int64,
	deviceID string,
) (*domain.WordMemoryState, *rank.Adjustment, error) {
	lemma = domain.NormalizeLemma(lemma)

	unlock := s.locks.acquire(userID)
	defer unlock()

	now := s.clock()
	log := logger.FromContext(ctx)

	profile, err := s.loadOrSeedProfile(ctx, userID, now)
	if err != nil {
		return nil, nil, err
	}

	state, err := s.loadOrBaselineState(ctx, userID, lemma)
	if err != nil {
		return nil, nil, err
	}

	event, err := domain.NewReviewEvent(
		userID, lemma, grade, domain.ReviewStateForGrade(grade),
		now, durationMs, scheduledDays(state), deviceID)
	if err != nil {
		return nil, nil, err
	}

	svc, err := s.transitionService(ctx, profile, now)
	if err != nil {
		return nil, nil, err
	}

	next, err := svc.ApplyReview(state, grade, now, profile.RetentionTarget)
	if err != nil {
		return nil, nil, err
	}
	if profile.IsIgnored(lemma) {
		next.Status = domain.WordStatusIgnored
	}

	if err := s.eventStore.Append(ctx, event); err != nil {
		return nil, nil, fmt.Errorf("failed to append review event: %w", err)
	}
	if err := s.stateStore.Upsert(ctx, next); err != nil {
		return nil, nil, fmt.Errorf("failed to save word state: %w", err)
	}

	var adjustment *rank.Adjustment
	if s.governor != nil {
		adjustment, err = s.governor.Adjust(ctx, userID, now)
		if err != nil {
			log.Warn("rank governor failed, review still recorded",
				"user_id", userID,
				"error", err)
			adjustment = nil
		}
	}

	s.requestSync(ctx, userID, "review")
	return next, adjustment, nil
}

// SubmitImplicitExposure records a passive reading encounter. At most
// one exposure per lemma per UTC calendar day is recorded; the boolean
// reports whether this call recorded one.
func (s *ReviewService) SubmitImplicitExposure(
	ctx context.Context,
	userID, lemma, deviceID string,
) (bool, error) {
	lemma = domain.NormalizeLemma(lemma)

	unlock := s.locks.acquire(userID)
	defer unlock()

	now := s.clock()

	exists, err := s.eventStore.ExistsImplicitOn(ctx, userID, lemma, now)
	if err != nil {
		return false, fmt.Errorf("failed to check implicit exposure: %w", err)
	}
	if exists {
		return false, nil
	}

	profile, err := s.loadOrSeedProfile(ctx, userID, now)
	if err != nil {
		return false, err
	}

	state, err := s.loadOrBaselineState(ctx, userID, lemma)
	if err != nil {
		return false, err
	}

	event, err := domain.NewReviewEvent(
		userID, lemma, domain.GradeGood, domain.ReviewStateImplicitExposure,
		now, 0, 0, deviceID)
	if err != nil {
		return false, err
	}

	svc, err := s.transitionService(ctx, profile, now)
	if err != nil {
		return false, err
	}

	next, err := svc.ApplyImplicitExposure(state, now)
	if err != nil {
		return false, err
	}
	if profile.IsIgnored(lemma) {
		next.Status = domain.WordStatusIgnored
	}

	if err := s.eventStore.Append(ctx, event); err != nil {
		return false, fmt.Errorf("failed to append exposure event: %w", err)
	}
	if err := s.stateStore.Upsert(ctx, next); err != nil {
		return false, fmt.Errorf("failed to save word state: %w", err)
	}

	return true, nil
}

// IgnoreWord adds the lemma to the profile's ignored set and marks its
// state ignored. History is preserved: reviews stay in the log and the
// word can be unignored later.
func (s *ReviewService) IgnoreWord(ctx context.Context, userID, lemma string) error {
	lemma = domain.NormalizeLemma(lemma)
	if lemma == "" {
		return domain.ErrEmptyLemma
	}

	unlock := s.locks.acquire(userID)
	defer unlock()

	now := s.clock()

	profile, err := s.loadOrSeedProfile(ctx, userID, now)
	if err != nil {
		return err
	}

	profile.IgnoredWords[lemma] = struct{}{}
	profile.UpdatedAt = now
	if err := s.profileStore.Save(ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	state, err := s.loadOrBaselineState(ctx, userID, lemma)
	if err != nil {
		return err
	}
	state.Status = domain.WordStatusIgnored
	state.UpdatedAt = now
	if err := s.stateStore.Upsert(ctx, state); err != nil {
		return fmt.Errorf("failed to save word state: %w", err)
	}

	s.requestSync(ctx, userID, "ignore_word")
	return nil
}

// UnignoreWord removes the lemma from the ignored set and rebuilds its
// state from the event log, so the word re-enters the schedule exactly
// where its history left it.
func (s *ReviewService) UnignoreWord(ctx context.Context, userID, lemma string) error {
	lemma = domain.NormalizeLemma(lemma)
	if lemma == "" {
		return domain.ErrEmptyLemma
	}

	unlock := s.locks.acquire(userID)
	defer unlock()

	now := s.clock()

	profile, err := s.loadOrSeedProfile(ctx, userID, now)
	if err != nil {
		return err
	}

	delete(profile.IgnoredWords, lemma)
	profile.UpdatedAt = now
	if err := s.profileStore.Save(ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	events, err := s.eventStore.ListByUserLemma(ctx, userID, lemma)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	allEvents, err := s.eventStore.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	rebuilt := projection.Rebuild(
		domain.StateKey{UserID: userID, Lemma: lemma},
		events,
		projection.Input{
			Weights:   fsrs.ResolveWeights(profile, allEvents, now),
			Retention: profile.RetentionTarget,
		},
	)
	if err := s.stateStore.Upsert(ctx, rebuilt); err != nil {
		return fmt.Errorf("failed to save word state: %w", err)
	}

	s.requestSync(ctx, userID, "unignore_word")
	return nil
}

// DueWords returns the user's words due for review, soonest first.
func (s *ReviewService) DueWords(ctx context.Context, userID string, now time.Time) ([]domain.WordMemoryState, error) {
	return s.stateStore.ListDue(ctx, userID, now)
}

// Profile returns the user's learner profile.
// Returns store.ErrProfileNotFound if the user has none yet.
func (s *ReviewService) Profile(ctx context.Context, userID string) (*domain.LearnerProfile, error) {
	return s.profileStore.Get(ctx, userID)
}

// loadOrSeedProfile fetches the profile, creating a default one on first
// contact.
func (s *ReviewService) loadOrSeedProfile(ctx context.Context, userID string, now time.Time) (*domain.LearnerProfile, error) {
	profile, err := s.profileStore.Get(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	profile, err = domain.NewLearnerProfile(userID, DefaultSeedRank)
	if err != nil {
		return nil, err
	}
	profile.UpdatedAt = now
	if err := s.profileStore.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to seed profile: %w", err)
	}
	return profile, nil
}

func (s *ReviewService) loadOrBaselineState(ctx context.Context, userID, lemma string) (*domain.WordMemoryState, error) {
	state, err := s.stateStore.Get(ctx, userID, lemma)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to load word state: %w", err)
	}
	return domain.NewBaselineWordMemoryState(userID, lemma), nil
}

// transitionService builds the transition engine with the user's
// resolved weight vector.
func (s *ReviewService) transitionService(ctx context.Context, profile *domain.LearnerProfile, now time.Time) (fsrs.Service, error) {
	weights := fsrs.DefaultWeights()
	if profile.PersonalizedWeights && profile.IsPremium(now) {
		events, err := s.eventStore.ListByUser(ctx, profile.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load events: %w", err)
		}
		weights = fsrs.ResolveWeights(profile, events, now)
	}
	return fsrs.NewServiceWithParams(fsrs.NewDefaultParams().WithWeights(weights)), nil
}

// requestSync emits an advisory sync trigger; failures are logged only.
func (s *ReviewService) requestSync(ctx context.Context, userID, trigger string) {
	if s.emitter == nil {
		return
	}
	event := appevents.NewSyncRequestedEvent(userID, trigger)
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("failed to emit sync trigger",
			"user_id", userID,
			"trigger", trigger,
			"error", err)
	}
}

// scheduledDays reports how many days ahead the word was scheduled when
// it was last reviewed, for retention analytics on the event.
func scheduledDays(state *domain.WordMemoryState) float64 {
	if state.LastReviewedAt == nil || state.NextReviewAt == nil {
		return 0
	}
	days := state.NextReviewAt.Sub(*state.LastReviewedAt).Hours() / 24
	if days < 0 {
		return 0
	}
	return days
}
