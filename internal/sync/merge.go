package sync

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/domain/fsrs"
	"github.com/tuluyhansozen/Lexical-sub002/internal/projection"
)

// Merge combines two snapshots into one deterministic result. The
// algorithm runs in a fixed order: event union, profile merge, word-state
// base merge, then a full replay of the merged event set that overrides
// the base-merged state for every key that has events. now is only
// consulted for entitlement expiry when resolving personalized weights;
// both sides of a retry must pass the same instant for bit-identical
// output.
//
// Merge is pure: it never touches a store, so a conflicted save can
// simply re-fetch and re-merge.
func Merge(local, remote Snapshot, now time.Time) (Snapshot, MergeStats) {
	var stats MergeStats
	stats.LocalEvents = len(local.Events)
	stats.RemoteEvents = len(remote.Events)

	events := mergeEvents(local.Events, remote.Events)
	stats.MergedEvents = len(events)
	stats.NewEvents = len(events) - len(local.Events)

	profiles := mergeProfiles(local.Profiles, remote.Profiles)
	stats.MergedProfiles = len(profiles)

	base := mergeWordStates(local.WordStates, remote.WordStates)

	states := replayOverride(events, base, profiles, now)
	stats.ReplayedKeys = countKeys(events)

	merged := Snapshot{
		Events:     events,
		WordStates: states,
		Profiles:   profiles,
		ExportedAt: now.UTC(),
	}
	return merged, stats
}

// MergeStats summarizes what a merge did, for the reconciliation report.
type MergeStats struct {
	LocalEvents    int
	RemoteEvents   int
	MergedEvents   int
	NewEvents      int
	MergedProfiles int
	ReplayedKeys   int
}

// mergeEvents unions two event sets keyed by ID. Divergent payloads under
// the same ID (broken clients, partial imports) resolve through a total
// tie-break chain so both merge directions pick the same winner.
func mergeEvents(local, remote []domain.ReviewEvent) []domain.ReviewEvent {
	byID := make(map[uuid.UUID]domain.ReviewEvent, len(local)+len(remote))
	for i := range local {
		byID[local[i].ID] = local[i]
	}
	for i := range remote {
		if existing, ok := byID[remote[i].ID]; ok {
			byID[remote[i].ID] = pickEvent(existing, remote[i])
		} else {
			byID[remote[i].ID] = remote[i]
		}
	}

	merged := make([]domain.ReviewEvent, 0, len(byID))
	for _, event := range byID {
		merged = append(merged, event)
	}
	projection.SortEvents(merged)
	return merged
}

// pickEvent resolves two payloads carrying the same event ID: later review
// date, then higher grade, then longer duration, then longer scheduled
// interval, then lexicographically greater review state, device ID and
// legacy source ID. The chain is total, so pickEvent(a,b) == pickEvent(b,a).
func pickEvent(a, b domain.ReviewEvent) domain.ReviewEvent {
	if !a.ReviewedAt.Equal(b.ReviewedAt) {
		if a.ReviewedAt.After(b.ReviewedAt) {
			return a
		}
		return b
	}
	if a.Grade != b.Grade {
		if a.Grade > b.Grade {
			return a
		}
		return b
	}
	if a.DurationMs != b.DurationMs {
		if a.DurationMs > b.DurationMs {
			return a
		}
		return b
	}
	if a.ScheduledDays != b.ScheduledDays {
		if a.ScheduledDays > b.ScheduledDays {
			return a
		}
		return b
	}
	if a.ReviewState != b.ReviewState {
		if a.ReviewState > b.ReviewState {
			return a
		}
		return b
	}
	if a.DeviceID != b.DeviceID {
		if a.DeviceID > b.DeviceID {
			return a
		}
		return b
	}
	if a.LegacySourceID > b.LegacySourceID {
		return a
	}
	return b
}

// mergeProfiles pairs profiles by user ID and merges each pair. Profiles
// present on only one side pass through unchanged.
func mergeProfiles(local, remote []domain.LearnerProfile) []domain.LearnerProfile {
	byUser := make(map[string]*domain.LearnerProfile, len(local)+len(remote))
	for i := range local {
		byUser[local[i].UserID] = local[i].Clone()
	}
	for i := range remote {
		if existing, ok := byUser[remote[i].UserID]; ok {
			byUser[remote[i].UserID] = MergeProfiles(existing, &remote[i])
		} else {
			byUser[remote[i].UserID] = remote[i].Clone()
		}
	}

	merged := make([]domain.LearnerProfile, 0, len(byUser))
	for _, profile := range byUser {
		merged = append(merged, *profile)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].UserID < merged[j].UserID })
	return merged
}

// MergeProfiles merges two versions of one user's profile. Scalar fields
// follow last-writer-wins on UpdatedAt; interest weights take the per-key
// max, ignored words union, and entitlement fields are monotone: the
// higher tier and the personalization opt-in survive whichever side's
// clock is ahead. Equal timestamps fall back to field-wise max so neither
// side is picked arbitrarily.
func MergeProfiles(a, b *domain.LearnerProfile) *domain.LearnerProfile {
	var winner, loser *domain.LearnerProfile
	switch {
	case a.UpdatedAt.After(b.UpdatedAt):
		winner, loser = a, b
	case b.UpdatedAt.After(a.UpdatedAt):
		winner, loser = b, a
	default:
		// Equal clocks: deterministic field-wise max for scalars.
		winner, loser = a, b
		merged := winner.Clone()
		merged.Rank = domain.ClampRank(maxInt(a.Rank, b.Rank))
		merged.EasyVelocity = maxFloat(a.EasyVelocity, b.EasyVelocity)
		merged.CycleCount = maxInt(a.CycleCount, b.CycleCount)
		merged.RetentionTarget = maxFloat(a.RetentionTarget, b.RetentionTarget)
		applyUnionRules(merged, loser)
		return merged
	}

	merged := winner.Clone()
	applyUnionRules(merged, loser)
	return merged
}

// applyUnionRules folds the loser's union/max/monotone fields into the
// merged profile.
func applyUnionRules(merged, other *domain.LearnerProfile) {
	if merged.InterestWeights == nil {
		merged.InterestWeights = make(map[string]float64)
	}
	for topic, weight := range other.InterestWeights {
		if existing, ok := merged.InterestWeights[topic]; !ok || weight > existing {
			merged.InterestWeights[topic] = weight
		}
	}

	if merged.IgnoredWords == nil {
		merged.IgnoredWords = make(map[string]struct{})
	}
	for lemma := range other.IgnoredWords {
		merged.IgnoredWords[lemma] = struct{}{}
	}

	// Entitlement never regresses on a stale-clock merge.
	if other.SubscriptionTier.Priority() > merged.SubscriptionTier.Priority() {
		merged.SubscriptionTier = other.SubscriptionTier
		merged.SubscriptionExpiresAt = copyTime(other.SubscriptionExpiresAt)
	} else if other.SubscriptionTier.Priority() == merged.SubscriptionTier.Priority() {
		merged.SubscriptionExpiresAt = laterExpiry(merged.SubscriptionExpiresAt, other.SubscriptionExpiresAt)
	}
	if other.PersonalizedWeights {
		merged.PersonalizedWeights = true
	}

	if other.UpdatedAt.After(merged.UpdatedAt) {
		merged.UpdatedAt = other.UpdatedAt
	}
}

// mergeWordStates performs the base merge: last-writer-wins per key with
// counters and memory parameters taking the max, the next review date
// taking the earlier side (a due review is never postponed) and the last
// review date the later. Replay overrides this result wherever events
// exist; the base merge only survives for keys with no event history,
// such as states imported from a legacy backup.
func mergeWordStates(local, remote []domain.WordMemoryState) map[domain.StateKey]domain.WordMemoryState {
	byKey := make(map[domain.StateKey]domain.WordMemoryState, len(local)+len(remote))
	for i := range local {
		byKey[local[i].Key()] = local[i]
	}
	for i := range remote {
		if existing, ok := byKey[remote[i].Key()]; ok {
			byKey[remote[i].Key()] = baseMergeWordState(existing, remote[i])
		} else {
			byKey[remote[i].Key()] = remote[i]
		}
	}
	return byKey
}

func baseMergeWordState(a, b domain.WordMemoryState) domain.WordMemoryState {
	winner := a
	if b.UpdatedAt.After(a.UpdatedAt) {
		winner = b
	}
	merged := *winner.Clone()

	// Ignored sticks whichever side set it.
	if a.Status == domain.WordStatusIgnored || b.Status == domain.WordStatusIgnored {
		merged.Status = domain.WordStatusIgnored
	}

	merged.Stability = maxFloat(a.Stability, b.Stability)
	merged.Difficulty = maxFloat(a.Difficulty, b.Difficulty)
	merged.Retrievability = maxFloat(a.Retrievability, b.Retrievability)
	merged.ReviewCount = maxInt(a.ReviewCount, b.ReviewCount)
	merged.LapseCount = maxInt(a.LapseCount, b.LapseCount)
	merged.NextReviewAt = earlierTime(a.NextReviewAt, b.NextReviewAt)
	merged.LastReviewedAt = laterTime(a.LastReviewedAt, b.LastReviewedAt)
	if a.UpdatedAt.After(merged.UpdatedAt) {
		merged.UpdatedAt = a.UpdatedAt
	}
	if b.UpdatedAt.After(merged.UpdatedAt) {
		merged.UpdatedAt = b.UpdatedAt
	}
	return merged
}

// replayOverride recomputes word state from the merged event log, per
// user, with that user's resolved weight vector and retention target.
// Keys carrying events get the replayed state; keys without events keep
// their base-merged state. A key whose merged status is ignored replays
// normally but is forced back to ignored.
func replayOverride(
	events []domain.ReviewEvent,
	base map[domain.StateKey]domain.WordMemoryState,
	profiles []domain.LearnerProfile,
	now time.Time,
) []domain.WordMemoryState {
	byUser := make(map[string][]domain.ReviewEvent)
	for i := range events {
		byUser[events[i].UserID] = append(byUser[events[i].UserID], events[i])
	}

	result := make(map[domain.StateKey]domain.WordMemoryState, len(base))
	for key, state := range base {
		result[key] = state
	}

	for userID, userEvents := range byUser {
		var profile *domain.LearnerProfile
		for i := range profiles {
			if profiles[i].UserID == userID {
				profile = &profiles[i]
				break
			}
		}

		input := projection.Input{
			Weights:   fsrs.ResolveWeights(profile, userEvents, now),
			Retention: domain.DefaultRetentionTarget,
			Ignored:   make(map[domain.StateKey]bool),
		}
		if profile != nil {
			input.Retention = profile.RetentionTarget
		}

		for key, state := range base {
			if key.UserID == userID && state.Status == domain.WordStatusIgnored {
				input.Ignored[key] = true
			}
		}
		if profile != nil {
			for lemma := range profile.IgnoredWords {
				input.Ignored[domain.StateKey{UserID: userID, Lemma: lemma}] = true
			}
		}

		for key, state := range projection.RebuildAll(userEvents, input) {
			result[key] = *state
		}
	}

	states := make([]domain.WordMemoryState, 0, len(result))
	for _, state := range result {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		if states[i].UserID != states[j].UserID {
			return states[i].UserID < states[j].UserID
		}
		return states[i].Lemma < states[j].Lemma
	})
	return states
}

func countKeys(events []domain.ReviewEvent) int {
	keys := make(map[domain.StateKey]struct{})
	for i := range events {
		keys[events[i].Key()] = struct{}{}
	}
	return len(keys)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// laterExpiry treats a nil expiry as unbounded, so it beats any date.
func laterExpiry(a, b *time.Time) *time.Time {
	if a == nil || b == nil {
		return nil
	}
	if a.After(*b) {
		return copyTime(a)
	}
	return copyTime(b)
}

func earlierTime(a, b *time.Time) *time.Time {
	if a == nil {
		return copyTime(b)
	}
	if b == nil {
		return copyTime(a)
	}
	if a.Before(*b) {
		return copyTime(a)
	}
	return copyTime(b)
}

func laterTime(a, b *time.Time) *time.Time {
	if a == nil {
		return copyTime(b)
	}
	if b == nil {
		return copyTime(a)
	}
	if a.After(*b) {
		return copyTime(a)
	}
	return copyTime(b)
}
