package fsrs

import (
	"testing"
	"time"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
)

func TestApplyReviewFirstReview(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	state := domain.NewBaselineWordMemoryState("user-1", "word")
	next, err := svc.ApplyReview(state, domain.GradeGood, now, 0.9)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if next.Status != domain.WordStatusLearning {
		t.Errorf("Expected status learning after first review, got %q", next.Status)
	}
	if next.ReviewCount != 1 {
		t.Errorf("Expected review count 1, got %d", next.ReviewCount)
	}
	if next.LapseCount != 0 {
		t.Errorf("Expected lapse count 0, got %d", next.LapseCount)
	}
	if next.LastReviewedAt == nil || !next.LastReviewedAt.Equal(now) {
		t.Errorf("Expected last reviewed at %v, got %v", now, next.LastReviewedAt)
	}
	if next.NextReviewAt == nil || !next.NextReviewAt.After(now) {
		t.Error("Expected a future next review date")
	}

	// The input state is untouched.
	if state.ReviewCount != 0 || state.Stability != domain.BaselineStability {
		t.Error("ApplyReview must not mutate its input")
	}
}

func TestApplyReviewLapseIncrementsLapseCount(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	state := domain.NewBaselineWordMemoryState("user-1", "word")
	state.Status = domain.WordStatusKnown
	state.Stability = 30
	state.Difficulty = 4
	reviewed := now.Add(-10 * 24 * time.Hour)
	state.LastReviewedAt = &reviewed

	next, err := svc.ApplyReview(state, domain.GradeAgain, now, 0.9)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if next.LapseCount != 1 {
		t.Errorf("Expected lapse count 1, got %d", next.LapseCount)
	}
	if next.Status != domain.WordStatusLearning {
		t.Errorf("Expected lapsed known word to demote to learning, got %q", next.Status)
	}
	if next.Stability >= state.Stability {
		t.Errorf("Expected stability to drop on lapse: %f >= %f", next.Stability, state.Stability)
	}
}

func TestApplyReviewPromotesToKnown(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	state := domain.NewBaselineWordMemoryState("user-1", "word")
	state.Status = domain.WordStatusLearning
	state.Stability = 25
	state.Difficulty = 3
	state.ReviewCount = 6
	reviewed := now.Add(-20 * 24 * time.Hour)
	state.LastReviewedAt = &reviewed

	next, err := svc.ApplyReview(state, domain.GradeGood, now, 0.9)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if next.Status != domain.WordStatusKnown {
		t.Errorf("Expected promotion to known, got %q", next.Status)
	}
}

func TestApplyReviewKeepsIgnoredStatus(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now().UTC()

	state := domain.NewBaselineWordMemoryState("user-1", "word")
	state.Status = domain.WordStatusIgnored

	next, err := svc.ApplyReview(state, domain.GradeEasy, now, 0.9)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if next.Status != domain.WordStatusIgnored {
		t.Errorf("Expected ignored to stay ignored, got %q", next.Status)
	}
}

func TestApplyReviewValidation(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now().UTC()
	state := domain.NewBaselineWordMemoryState("user-1", "word")

	if _, err := svc.ApplyReview(nil, domain.GradeGood, now, 0.9); err != ErrNilState {
		t.Errorf("Expected %v, got %v", ErrNilState, err)
	}
	if _, err := svc.ApplyReview(state, domain.Grade(9), now, 0.9); err != ErrInvalidGrade {
		t.Errorf("Expected %v, got %v", ErrInvalidGrade, err)
	}
	if _, err := svc.ApplyReview(state, domain.GradeGood, now, 1.5); err != ErrInvalidRetention {
		t.Errorf("Expected %v, got %v", ErrInvalidRetention, err)
	}
}

func TestApplyImplicitExposureSeedsUnseenWord(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now().UTC()

	state := domain.NewBaselineWordMemoryState("user-1", "word")
	next, err := svc.ApplyImplicitExposure(state, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if next.Stability <= 0 {
		t.Errorf("Expected positive seeded stability, got %f", next.Stability)
	}
	if next.ReviewCount != 0 {
		t.Errorf("Implicit exposure must not count as a review, got %d", next.ReviewCount)
	}
	if next.Status == domain.WordStatusKnown {
		t.Error("Implicit exposure must never promote to known")
	}
	if next.NextReviewAt != nil {
		t.Error("Implicit exposure must not schedule a review")
	}
}

func TestApplyImplicitExposureWeakerThanExplicitGood(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	state := domain.NewBaselineWordMemoryState("user-1", "word")
	state.Stability = 5
	state.Difficulty = 4
	reviewed := now.Add(-5 * 24 * time.Hour)
	state.LastReviewedAt = &reviewed

	implicit, err := svc.ApplyImplicitExposure(state, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	explicit, err := svc.ApplyReview(state, domain.GradeGood, now, 0.9)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if implicit.Stability <= state.Stability {
		t.Errorf("Expected exposure to grow stability, got %f", implicit.Stability)
	}
	if implicit.Stability >= explicit.Stability {
		t.Errorf("Exposure gain (%f) must stay below an explicit good review (%f)",
			implicit.Stability, explicit.Stability)
	}
}
