package domain

import (
	"time"
)

// Proficiency rank bounds. Ranks follow a word-frequency scale: rank 1 is
// the most common word, MaxRank the rarest the app targets.
const (
	MinRank = 1
	MaxRank = 50000
)

// DefaultRetentionTarget is the scheduling retention used when a profile
// has not been tuned.
const DefaultRetentionTarget = 0.9

// SubscriptionTier orders entitlement levels. Higher tiers never regress
// during snapshot merges, whatever the clocks say.
type SubscriptionTier string

// Possible subscription tier values.
const (
	TierFree    SubscriptionTier = "free"
	TierPlus    SubscriptionTier = "plus"
	TierPremium SubscriptionTier = "premium"
)

// Priority returns the tier's merge precedence; higher wins.
func (t SubscriptionTier) Priority() int {
	switch t {
	case TierPremium:
		return 2
	case TierPlus:
		return 1
	default:
		return 0
	}
}

// Valid reports whether the tier is one of the known values.
func (t SubscriptionTier) Valid() bool {
	switch t {
	case TierFree, TierPlus, TierPremium:
		return true
	}
	return false
}

// LearnerProfile holds the mutable per-user learning configuration: the
// proficiency rank the content targets, topic interest weights, the
// ignored-word set, and the rolling statistics the rank governor feeds on.
// Profiles are merged across devices, so updates must be monotonically
// timestamped.
type LearnerProfile struct {
	UserID                string              `json:"user_id"`
	Rank                  int                 `json:"rank"`
	InterestWeights       map[string]float64  `json:"interest_weights"`
	IgnoredWords          map[string]struct{} `json:"ignored_words"`
	EasyVelocity          float64             `json:"easy_velocity"` // EWMA of easy ratings, [0, 1]
	CycleCount            int                 `json:"cycle_count"`
	SubscriptionTier      SubscriptionTier    `json:"subscription_tier"`
	SubscriptionExpiresAt *time.Time          `json:"subscription_expires_at,omitempty"`
	PersonalizedWeights   bool                `json:"personalized_weights"`
	RetentionTarget       float64             `json:"retention_target"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// NewLearnerProfile creates a profile with default scheduling settings and
// the given starting rank (clamped to bounds).
func NewLearnerProfile(userID string, rank int) (*LearnerProfile, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	profile := &LearnerProfile{
		UserID:           userID,
		Rank:             ClampRank(rank),
		InterestWeights:  make(map[string]float64),
		IgnoredWords:     make(map[string]struct{}),
		EasyVelocity:     0,
		CycleCount:       0,
		SubscriptionTier: TierFree,
		RetentionTarget:  DefaultRetentionTarget,
		UpdatedAt:        time.Now().UTC(),
	}

	return profile, nil
}

// ClampRank bounds a rank to [MinRank, MaxRank].
func ClampRank(rank int) int {
	if rank < MinRank {
		return MinRank
	}
	if rank > MaxRank {
		return MaxRank
	}
	return rank
}

// Validate checks if the LearnerProfile has valid data.
// Returns an error if any field fails validation.
func (p *LearnerProfile) Validate() error {
	if p.UserID == "" {
		return ErrEmptyUserID
	}

	if p.Rank < MinRank || p.Rank > MaxRank {
		return ErrRankOutOfBounds
	}

	if p.RetentionTarget <= 0 || p.RetentionTarget >= 1 {
		return ErrInvalidRetentionTarget
	}

	if !p.SubscriptionTier.Valid() {
		return ErrValidation
	}

	return nil
}

// IsPremium reports whether the profile currently holds an active paid
// entitlement. Expired subscriptions fall back to free behavior while the
// stored tier is preserved for merge monotonicity.
func (p *LearnerProfile) IsPremium(now time.Time) bool {
	if p.SubscriptionTier.Priority() == 0 {
		return false
	}
	if p.SubscriptionExpiresAt != nil && p.SubscriptionExpiresAt.Before(now) {
		return false
	}
	return true
}

// IsIgnored reports whether the lemma is in the profile's ignored set.
func (p *LearnerProfile) IsIgnored(lemma string) bool {
	_, ok := p.IgnoredWords[NormalizeLemma(lemma)]
	return ok
}

// Clone returns a deep copy of the profile, including its maps.
func (p *LearnerProfile) Clone() *LearnerProfile {
	clone := *p
	clone.InterestWeights = make(map[string]float64, len(p.InterestWeights))
	for k, v := range p.InterestWeights {
		clone.InterestWeights[k] = v
	}
	clone.IgnoredWords = make(map[string]struct{}, len(p.IgnoredWords))
	for k := range p.IgnoredWords {
		clone.IgnoredWords[k] = struct{}{}
	}
	if p.SubscriptionExpiresAt != nil {
		t := *p.SubscriptionExpiresAt
		clone.SubscriptionExpiresAt = &t
	}
	return &clone
}
