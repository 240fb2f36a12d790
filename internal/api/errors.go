package api

import (
	"errors"
	"net/http"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/domain/calibration"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes. Unknown errors never leak their details: they map to 500 and
// the generic message.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrRemoteConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyLemma),
		errors.Is(err, domain.ErrEmptyUserID),
		errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, domain.ErrInvalidReviewState),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrRankOutOfBounds),
		errors.Is(err, calibration.ErrNoResponses),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrProfileNotFound):
		return "Profile not found"

	case errors.Is(err, store.ErrWordStateNotFound):
		return "Word not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrRemoteConflict):
		return "Sync conflict, try again"

	case errors.Is(err, domain.ErrEmptyLemma):
		return "Lemma is required"

	case errors.Is(err, domain.ErrEmptyUserID):
		return "User ID is required"

	case errors.Is(err, domain.ErrInvalidGrade):
		return "Grade must be between 1 and 4"

	case errors.Is(err, domain.ErrInvalidDuration):
		return "Duration must not be negative"

	case errors.Is(err, calibration.ErrNoResponses):
		return "Calibration requires at least one non-control response"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}
