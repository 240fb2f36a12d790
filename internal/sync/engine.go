package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

// Engine orchestrates the five-step reconciliation pass: build the local
// snapshot, fetch-and-decode the remote one, merge, apply the merged
// snapshot locally, and push it back under optimistic concurrency. A
// detected remote write race triggers exactly one re-fetch/re-merge/retry
// before the pass reports sync_skipped.
//
// Remote failure is never fatal: the local merge still lands, the learner
// keeps working offline, and the next trigger tries again.
type Engine struct {
	events   store.EventStore
	states   store.WordStateStore
	profiles store.ProfileStore
	remote   store.RemoteSnapshotStore
	logger   *slog.Logger
	clock    func() time.Time

	mu       gosync.Mutex
	inFlight map[string]struct{}
}

// NewEngine creates a reconciliation engine over the given stores.
// If logger is nil, a default logger will be used.
func NewEngine(
	events store.EventStore,
	states store.WordStateStore,
	profiles store.ProfileStore,
	remote store.RemoteSnapshotStore,
	logger *slog.Logger,
) *Engine {
	if events == nil || states == nil || profiles == nil || remote == nil {
		panic("sync engine stores cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		events:   events,
		states:   states,
		profiles: profiles,
		remote:   remote,
		logger:   logger.With(slog.String("component", "sync_engine")),
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the engine's time source. Used by tests to pin the
// merge instant.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// Reconcile runs one full reconciliation pass for the user. At most one
// pass per user is in flight at a time: a second trigger while one runs
// returns immediately with OutcomeSkippedInFlight instead of queuing a
// duplicate.
//
// Local persistence errors are returned to the caller; remote transport
// and conflict failures degrade to OutcomeSyncSkipped with a reason.
func (e *Engine) Reconcile(ctx context.Context, userID string) (*Report, error) {
	if userID == "" {
		return nil, domain.ErrEmptyUserID
	}

	report := &Report{UserID: userID}

	if !e.begin(userID) {
		report.Outcome = OutcomeSkippedInFlight
		return report, nil
	}
	defer e.end(userID)

	now := e.clock()

	local, err := e.localSnapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build local snapshot: %w", err)
	}

	remote, version, fetchErr := e.fetchRemote(ctx, userID)
	if fetchErr != nil {
		// Remote unreachable: skip the exchange, local state untouched.
		report.Outcome = OutcomeSyncSkipped
		report.Reason = fmt.Sprintf("remote fetch failed: %v", fetchErr)
		e.logger.Warn("sync skipped",
			"user_id", userID,
			"reason", report.Reason)
		return report, nil
	}

	merged, stats := Merge(local, remote, now)
	report.Stats = stats

	if err := e.applyLocal(ctx, userID, merged); err != nil {
		return report, fmt.Errorf("failed to apply merged snapshot: %w", err)
	}

	newVersion, pushErr := e.push(ctx, userID, merged, version)
	if errors.Is(pushErr, store.ErrRemoteConflict) {
		// Another device saved since our fetch. Re-fetch, re-merge (pure,
		// so re-entry is safe), re-apply, and retry the save exactly once.
		report.Retried = true

		remote, version, fetchErr = e.fetchRemote(ctx, userID)
		if fetchErr != nil {
			report.Outcome = OutcomeSyncSkipped
			report.Reason = fmt.Sprintf("re-fetch after conflict failed: %v", fetchErr)
			return report, nil
		}

		merged, stats = Merge(merged, remote, now)
		report.Stats = stats

		if err := e.applyLocal(ctx, userID, merged); err != nil {
			return report, fmt.Errorf("failed to apply re-merged snapshot: %w", err)
		}

		newVersion, pushErr = e.push(ctx, userID, merged, version)
	}

	if pushErr != nil {
		report.Outcome = OutcomeSyncSkipped
		if errors.Is(pushErr, store.ErrRemoteConflict) {
			report.Reason = "remote conflict persisted after retry"
		} else {
			report.Reason = fmt.Sprintf("remote save failed: %v", pushErr)
		}
		e.logger.Warn("sync skipped",
			"user_id", userID,
			"reason", report.Reason,
			"retried", report.Retried)
		return report, nil
	}

	report.Outcome = OutcomeApplied
	e.logger.Info("reconciliation applied",
		"user_id", userID,
		"merged_events", stats.MergedEvents,
		"new_events", stats.NewEvents,
		"replayed_keys", stats.ReplayedKeys,
		"version", newVersion,
		"retried", report.Retried)
	return report, nil
}

// begin marks the user's pass as in flight; returns false if one already is.
func (e *Engine) begin(userID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight == nil {
		e.inFlight = make(map[string]struct{})
	}
	if _, running := e.inFlight[userID]; running {
		return false
	}
	e.inFlight[userID] = struct{}{}
	return true
}

func (e *Engine) end(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, userID)
}

// localSnapshot assembles the user's full local state bundle.
func (e *Engine) localSnapshot(ctx context.Context, userID string) (Snapshot, error) {
	events, err := e.events.ListByUser(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	states, err := e.states.ListByUser(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		Events:     events,
		WordStates: states,
		ExportedAt: e.clock(),
	}

	profile, err := e.profiles.Get(ctx, userID)
	switch {
	case err == nil:
		snapshot.Profiles = []domain.LearnerProfile{*profile}
	case store.IsNotFoundError(err):
		// No profile yet; the remote side may still carry one.
	default:
		return Snapshot{}, err
	}

	return snapshot, nil
}

// fetchRemote loads and decodes the remote snapshot. A missing record is
// a first sync and merges as empty; a corrupt payload also merges as
// empty so local state wins.
func (e *Engine) fetchRemote(ctx context.Context, userID string) (Snapshot, string, error) {
	payload, version, err := e.remote.Fetch(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return Snapshot{}, "", nil
		}
		return Snapshot{}, "", err
	}

	snapshot, err := Decode(payload)
	if err != nil {
		e.logger.Warn("malformed remote snapshot, merging as empty",
			"user_id", userID,
			"error", err)
		return Snapshot{}, version, nil
	}
	return snapshot, version, nil
}

// applyLocal persists the merged snapshot. The event append is idempotent
// and the word-state writes are full replacements, so re-applying after a
// conflicted push converges rather than double-counting.
func (e *Engine) applyLocal(ctx context.Context, userID string, merged Snapshot) error {
	toAppend := make([]*domain.ReviewEvent, 0, len(merged.Events))
	for i := range merged.Events {
		toAppend = append(toAppend, &merged.Events[i])
	}
	if err := e.events.AppendMultiple(ctx, toAppend); err != nil {
		return err
	}

	toUpsert := make([]*domain.WordMemoryState, 0, len(merged.WordStates))
	for i := range merged.WordStates {
		toUpsert = append(toUpsert, &merged.WordStates[i])
	}
	if err := e.states.UpsertMultiple(ctx, toUpsert); err != nil {
		return err
	}

	if profile := merged.Profile(userID); profile != nil {
		if err := e.profiles.Save(ctx, profile); err != nil {
			return err
		}
	}

	return nil
}

// push encodes and saves the merged snapshot under the fetched version
// token.
func (e *Engine) push(ctx context.Context, userID string, merged Snapshot, expectedVersion string) (string, error) {
	payload, err := merged.Encode()
	if err != nil {
		return "", err
	}
	return e.remote.Save(ctx, userID, payload, expectedVersion)
}
