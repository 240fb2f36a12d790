package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/domain/calibration"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/logger"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

// CalibrationService turns placement-quiz responses into a learner
// profile rank. The first calibration creates the profile; a repeat
// calibration anchors the estimate on the current rank as a prior.
type CalibrationService struct {
	profileStore store.ProfileStore
	logger       *slog.Logger
	clock        func() time.Time
	locks        *userLocks
}

// NewCalibrationService creates the calibration service.
// If logger is nil, a default logger will be used.
func NewCalibrationService(profileStore store.ProfileStore, logger *slog.Logger) *CalibrationService {
	if profileStore == nil {
		panic("profileStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CalibrationService{
		profileStore: profileStore,
		logger:       logger.With(slog.String("component", "calibration_service")),
		clock:        func() time.Time { return time.Now().UTC() },
		locks:        newUserLocks(),
	}
}

// WithClock overrides the service's time source, for tests.
func (s *CalibrationService) WithClock(clock func() time.Time) *CalibrationService {
	s.clock = clock
	return s
}

// Calibrate estimates the user's proficiency rank from quiz responses
// and seeds (or re-anchors) the profile with it.
func (s *CalibrationService) Calibrate(
	ctx context.Context,
	userID string,
	responses []calibration.Response,
) (*domain.CalibrationResult, error) {
	if userID == "" {
		return nil, domain.ErrEmptyUserID
	}

	unlock := s.locks.acquire(userID)
	defer unlock()

	now := s.clock()
	log := logger.FromContext(ctx)

	opts := calibration.DefaultOptions()

	profile, err := s.profileStore.Get(ctx, userID)
	switch {
	case err == nil:
		// Repeat calibration: the current rank anchors the estimate.
		opts.PriorRank = profile.Rank
	case errors.Is(err, store.ErrNotFound):
		profile = nil
	default:
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	result, err := calibration.Estimate(responses, opts)
	if err != nil {
		return nil, err
	}

	if profile == nil {
		profile, err = domain.NewLearnerProfile(userID, result.EstimatedRank)
		if err != nil {
			return nil, err
		}
	} else {
		profile.Rank = domain.ClampRank(result.EstimatedRank)
	}
	profile.UpdatedAt = now

	if err := s.profileStore.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	log.Info("calibration complete",
		"user_id", userID,
		"estimated_rank", result.EstimatedRank,
		"confidence", result.Confidence,
		"overclaim_rate", result.OverclaimRate)
	return result, nil
}
