package api

import (
	"sort"
	"time"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/service/rank"
)

// Common request/response structures

// SubmitReviewRequest defines the payload for the review submission endpoint.
type SubmitReviewRequest struct {
	UserID     string `json:"user_id"     validate:"required"`
	Lemma      string `json:"lemma"       validate:"required"`
	Grade      int    `json:"grade"       validate:"required,min=1,max=4"`
	DurationMs int64  `json:"duration_ms" validate:"min=0"`
	DeviceID   string `json:"device_id"`
}

// SubmitReviewResponse returns the updated word state and, when the
// governor evaluated, its rank decision.
type SubmitReviewResponse struct {
	State      WordStateResponse `json:"state"`
	Adjustment *rank.Adjustment  `json:"rank_adjustment,omitempty"`
}

// SubmitExposureRequest defines the payload for the implicit exposure endpoint.
type SubmitExposureRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Lemma    string `json:"lemma"   validate:"required"`
	DeviceID string `json:"device_id"`
}

// SubmitExposureResponse reports whether the exposure was recorded
// (at most one per lemma per calendar day).
type SubmitExposureResponse struct {
	Recorded bool `json:"recorded"`
}

// IgnoreWordRequest defines the payload for the ignore/unignore endpoints.
type IgnoreWordRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Lemma  string `json:"lemma"   validate:"required"`
}

// CalibrationItemRequest is one quiz answer in a calibration submission.
type CalibrationItemRequest struct {
	ItemRank   int  `json:"item_rank"  validate:"min=0"`
	Recognized bool `json:"recognized"`
	Control    bool `json:"control"`
}

// CalibrateRequest defines the payload for the calibration endpoint.
type CalibrateRequest struct {
	UserID    string                   `json:"user_id"   validate:"required"`
	Responses []CalibrationItemRequest `json:"responses" validate:"required,min=1,dive"`
}

// SyncRequest defines the payload for the manual sync trigger endpoint.
type SyncRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// WordStateResponse represents the response data for a word's memory state.
type WordStateResponse struct {
	Lemma          string     `json:"lemma"`
	Status         string     `json:"status"`
	Stability      float64    `json:"stability"`
	Difficulty     float64    `json:"difficulty"`
	Retrievability float64    `json:"retrievability"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt   *time.Time `json:"next_review_at,omitempty"`
	ReviewCount    int        `json:"review_count"`
	LapseCount     int        `json:"lapse_count"`
}

// newWordStateResponse converts a domain state into its API shape.
func newWordStateResponse(state *domain.WordMemoryState) WordStateResponse {
	return WordStateResponse{
		Lemma:          state.Lemma,
		Status:         string(state.Status),
		Stability:      state.Stability,
		Difficulty:     state.Difficulty,
		Retrievability: state.Retrievability,
		LastReviewedAt: state.LastReviewedAt,
		NextReviewAt:   state.NextReviewAt,
		ReviewCount:    state.ReviewCount,
		LapseCount:     state.LapseCount,
	}
}

// ProfileResponse represents the response data for a learner profile.
type ProfileResponse struct {
	UserID           string    `json:"user_id"`
	Rank             int       `json:"rank"`
	EasyVelocity     float64   `json:"easy_velocity"`
	CycleCount       int       `json:"cycle_count"`
	SubscriptionTier string    `json:"subscription_tier"`
	RetentionTarget  float64   `json:"retention_target"`
	IgnoredWords     []string  `json:"ignored_words"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newProfileResponse(profile *domain.LearnerProfile) ProfileResponse {
	ignored := make([]string, 0, len(profile.IgnoredWords))
	for lemma := range profile.IgnoredWords {
		ignored = append(ignored, lemma)
	}
	sort.Strings(ignored)

	return ProfileResponse{
		UserID:           profile.UserID,
		Rank:             profile.Rank,
		EasyVelocity:     profile.EasyVelocity,
		CycleCount:       profile.CycleCount,
		SubscriptionTier: string(profile.SubscriptionTier),
		RetentionTarget:  profile.RetentionTarget,
		IgnoredWords:     ignored,
		UpdatedAt:        profile.UpdatedAt,
	}
}
