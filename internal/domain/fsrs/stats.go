package fsrs

import (
	"time"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
)

// CollectAggregateStats reduces a learner's review events to the
// aggregate rates the personalization variant consumes. Implicit
// exposures are skipped entirely: they carry no grade signal.
//
// The result depends only on the multiset of events, not their order, so
// any replica replaying the same merged event set resolves the same
// personalized weight vector.
func CollectAggregateStats(events []domain.ReviewEvent) AggregateStats {
	var stats AggregateStats
	var success, hard, lapse, easy int

	for i := range events {
		if events[i].ReviewState.Implicit() {
			continue
		}
		stats.ExplicitReviews++
		switch events[i].Grade {
		case domain.GradeAgain:
			lapse++
		case domain.GradeHard:
			hard++
			success++
		case domain.GradeGood:
			success++
		case domain.GradeEasy:
			easy++
			success++
		}
	}

	if stats.ExplicitReviews == 0 {
		return stats
	}

	n := float64(stats.ExplicitReviews)
	stats.SuccessRate = float64(success) / n
	stats.HardRate = float64(hard) / n
	stats.LapseRate = float64(lapse) / n
	stats.EasyRate = float64(easy) / n

	return stats
}

// ResolveWeights returns the parameter vector a profile is entitled to:
// the personalized vector when the profile opted in, holds an active paid
// tier, and has enough history; the default vector otherwise.
func ResolveWeights(
	profile *domain.LearnerProfile,
	events []domain.ReviewEvent,
	now time.Time,
) Weights {
	base := DefaultWeights()
	if profile == nil || !profile.PersonalizedWeights || !profile.IsPremium(now) {
		return base
	}
	return PersonalizedWeights(CollectAggregateStats(events), base)
}
