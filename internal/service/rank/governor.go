package rank

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/logger"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

// Reason classifies a governor decision, including the ones that change
// nothing. Suppressed and no-op decisions still carry their reason so
// logs can explain why a rank sat still.
type Reason string

// Possible governor decision reasons.
const (
	ReasonPromoted         Reason = "promoted"
	ReasonDemoted          Reason = "demoted"
	ReasonSteady           Reason = "steady"
	ReasonInsufficientData Reason = "insufficient_data"
	ReasonCooldown         Reason = "cooldown"
)

// Adjustment is the outcome of one governor evaluation. Delta and
// NewRank describe what the rates call for; Applied records whether it
// actually landed (a cooldown suppresses application but not the
// computation).
type Adjustment struct {
	UserID        string    `json:"user_id"`
	OldRank       int       `json:"old_rank"`
	NewRank       int       `json:"new_rank"`
	Delta         int       `json:"delta"`
	EasyRate      float64   `json:"easy_rate"`
	RetentionRate float64   `json:"retention_rate"`
	StruggleRate  float64   `json:"struggle_rate"`
	SampleSize    int       `json:"sample_size"` // explicit reviews in the window
	Reason        Reason    `json:"reason"`
	Applied       bool      `json:"applied"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
}

// Config holds the governor's tuning knobs.
type Config struct {
	// Window is how many recent events the rates are computed over.
	Window int

	// MinExplicit gates evaluation: fewer explicit reviews than this in
	// the window and the governor declines to move at all.
	MinExplicit int

	// ImplicitWeight scales how much a passive exposure counts in the
	// rates relative to an explicit review.
	ImplicitWeight float64

	// Decay is the per-step EWMA decay; the newest event weighs 1, the
	// one before it Decay, and so on.
	Decay float64

	// PromoteStep and DemoteStep are the fixed rank deltas. Demotion is
	// deliberately the smaller magnitude.
	PromoteStep int
	DemoteStep  int

	// Promotion requires all three: easy rate at or above PromoteEasy,
	// retention at or above PromoteRetention, struggle at or below
	// PromoteStruggle.
	PromoteEasy      float64
	PromoteRetention float64
	PromoteStruggle  float64

	// Demotion triggers on either: retention below DemoteRetention or
	// struggle above DemoteStruggle.
	DemoteRetention float64
	DemoteStruggle  float64

	// Cooldown suppresses applied adjustments after one lands.
	Cooldown time.Duration
}

// DefaultConfig returns the production governor tuning.
func DefaultConfig() Config {
	return Config{
		Window:           50,
		MinExplicit:      10,
		ImplicitWeight:   0.3,
		Decay:            0.9,
		PromoteStep:      5,
		DemoteStep:       3,
		PromoteEasy:      0.30,
		PromoteRetention: 0.85,
		PromoteStruggle:  0.15,
		DemoteRetention:  0.60,
		DemoteStruggle:   0.40,
		Cooldown:         24 * time.Hour,
	}
}

// Governor evaluates a learner's recent review outcomes and applies
// bounded rank adjustments. Evaluation is a pure function; Apply is the
// only side-effecting path.
type Governor struct {
	cfg       Config
	events    store.EventStore
	profiles  store.ProfileStore
	cooldowns *CooldownTracker
	logger    *slog.Logger
}

// NewGovernor creates a governor over the given stores and cooldown
// tracker. If logger is nil, a default logger will be used.
func NewGovernor(
	cfg Config,
	events store.EventStore,
	profiles store.ProfileStore,
	cooldowns *CooldownTracker,
	logger *slog.Logger,
) *Governor {
	if events == nil || profiles == nil || cooldowns == nil {
		panic("governor dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Governor{
		cfg:       cfg,
		events:    events,
		profiles:  profiles,
		cooldowns: cooldowns,
		logger:    logger.With(slog.String("component", "rank_governor")),
	}
}

// Evaluate computes the rank decision for a profile from its recent
// events. Pure: no store access, no cooldown consultation. events may be
// in any order; only the newest Window entries are considered.
func (g *Governor) Evaluate(events []domain.ReviewEvent, profile *domain.LearnerProfile, now time.Time) *Adjustment {
	adj := &Adjustment{
		UserID:      profile.UserID,
		OldRank:     profile.Rank,
		NewRank:     profile.Rank,
		Reason:      ReasonSteady,
		EvaluatedAt: now.UTC(),
	}

	window := newestFirst(events)
	if len(window) > g.cfg.Window {
		window = window[:g.cfg.Window]
	}

	explicit := 0
	for i := range window {
		if !window[i].ReviewState.Implicit() {
			explicit++
		}
	}
	adj.SampleSize = explicit

	if explicit < g.cfg.MinExplicit {
		adj.Reason = ReasonInsufficientData
		return adj
	}

	adj.EasyRate, adj.RetentionRate, adj.StruggleRate = g.rates(window)

	switch {
	case adj.EasyRate >= g.cfg.PromoteEasy &&
		adj.RetentionRate >= g.cfg.PromoteRetention &&
		adj.StruggleRate <= g.cfg.PromoteStruggle:
		adj.Delta = g.cfg.PromoteStep
		adj.Reason = ReasonPromoted
	case adj.RetentionRate < g.cfg.DemoteRetention ||
		adj.StruggleRate > g.cfg.DemoteStruggle:
		adj.Delta = -g.cfg.DemoteStep
		adj.Reason = ReasonDemoted
	}

	adj.NewRank = domain.ClampRank(adj.OldRank + adj.Delta)
	if adj.NewRank == adj.OldRank && adj.Delta != 0 {
		// Clamped away: already pinned at a bound.
		adj.Delta = 0
		adj.Reason = ReasonSteady
	}
	return adj
}

// rates computes the EWMA easy, retention (grade >= good) and struggle
// (grade <= hard) rates over the window, newest first. Implicit
// exposures contribute at reduced weight.
func (g *Governor) rates(window []domain.ReviewEvent) (easy, retention, struggle float64) {
	var totalWeight, easySum, retainSum, struggleSum float64

	weight := 1.0
	for i := range window {
		eventWeight := weight
		if window[i].ReviewState.Implicit() {
			eventWeight *= g.cfg.ImplicitWeight
		}
		totalWeight += eventWeight

		if window[i].Grade >= domain.GradeGood {
			retainSum += eventWeight
		} else {
			struggleSum += eventWeight
		}
		if window[i].Grade == domain.GradeEasy {
			easySum += eventWeight
		}

		weight *= g.cfg.Decay
	}

	if totalWeight == 0 {
		return 0, 0, 0
	}
	return easySum / totalWeight, retainSum / totalWeight, struggleSum / totalWeight
}

// Apply persists an adjustment that calls for a change: new rank, easy
// velocity, cycle count, and the cooldown stamp. A zero-delta adjustment
// is a no-op.
func (g *Governor) Apply(ctx context.Context, adj *Adjustment, profile *domain.LearnerProfile) error {
	if adj.Delta == 0 {
		return nil
	}

	profile.Rank = adj.NewRank
	profile.EasyVelocity = adj.EasyRate
	profile.CycleCount++
	profile.UpdatedAt = adj.EvaluatedAt

	if err := g.profiles.Save(ctx, profile); err != nil {
		return fmt.Errorf("failed to persist rank adjustment: %w", err)
	}

	g.cooldowns.Stamp(adj.UserID, adj.EvaluatedAt)
	adj.Applied = true

	logger.FromContext(ctx).Info("rank adjusted",
		"user_id", adj.UserID,
		"old_rank", adj.OldRank,
		"new_rank", adj.NewRank,
		"reason", adj.Reason,
		"easy_rate", adj.EasyRate,
		"retention_rate", adj.RetentionRate,
		"struggle_rate", adj.StruggleRate)
	return nil
}

// Adjust runs the full governor cycle for one user: load the recent
// window and profile, evaluate, honor the cooldown, apply. The returned
// adjustment is never nil when err is nil, so callers always see the
// decision and its reason.
func (g *Governor) Adjust(ctx context.Context, userID string, now time.Time) (*Adjustment, error) {
	profile, err := g.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	events, err := g.events.ListRecent(ctx, userID, g.cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent events: %w", err)
	}

	adj := g.Evaluate(events, profile, now)
	if adj.Delta == 0 {
		return adj, nil
	}

	if g.cooldowns.Active(userID, now) {
		adj.Applied = false
		adj.Reason = ReasonCooldown
		return adj, nil
	}

	if err := g.Apply(ctx, adj, profile); err != nil {
		return adj, err
	}
	return adj, nil
}

// newestFirst returns a copy of events sorted newest first with ties
// broken on ID so the EWMA weighting is deterministic.
func newestFirst(events []domain.ReviewEvent) []domain.ReviewEvent {
	sorted := make([]domain.ReviewEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].ReviewedAt.Equal(sorted[j].ReviewedAt) {
			return sorted[i].ReviewedAt.After(sorted[j].ReviewedAt)
		}
		return bytes.Compare(sorted[i].ID[:], sorted[j].ID[:]) > 0
	})
	return sorted
}
