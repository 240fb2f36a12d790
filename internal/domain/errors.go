package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidGrade is returned when a review grade is outside 1..4.
	ErrInvalidGrade = errors.New("grade must be between 1 and 4")

	// ErrEmptyLemma is returned when a word key is empty after normalization.
	ErrEmptyLemma = errors.New("lemma cannot be empty")

	// ErrEmptyUserID is returned when a user identifier is missing.
	ErrEmptyUserID = errors.New("user ID cannot be empty")

	// ErrInvalidReviewState is returned when a review state tag is not one
	// of the known values.
	ErrInvalidReviewState = errors.New("invalid review state")

	// ErrInvalidDuration is returned when a review duration is negative.
	ErrInvalidDuration = errors.New("duration must be greater than or equal to 0")

	// ErrInvalidScheduledDays is returned when scheduled days is negative.
	ErrInvalidScheduledDays = errors.New("scheduled days must be greater than or equal to 0")

	// ErrRankOutOfBounds is returned when a proficiency rank falls outside
	// the supported [MinRank, MaxRank] domain.
	ErrRankOutOfBounds = errors.New("rank out of bounds")

	// ErrInvalidRetentionTarget is returned when a scheduling retention
	// target is outside the open interval (0, 1).
	ErrInvalidRetentionTarget = errors.New("retention target must be in (0, 1)")
)
