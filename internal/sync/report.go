package sync

// Outcome classifies how a reconciliation pass ended.
type Outcome string

// Possible reconciliation outcomes.
const (
	// OutcomeApplied means the merged snapshot was persisted locally and
	// pushed to the remote store.
	OutcomeApplied Outcome = "applied"

	// OutcomeSkippedInFlight means another pass for the same user was
	// already running; this trigger was a no-op.
	OutcomeSkippedInFlight Outcome = "skipped_in_flight"

	// OutcomeSyncSkipped means the local merge was applied (when one ran)
	// but the remote exchange failed; local state remains intact and the
	// Reason field explains what went wrong.
	OutcomeSyncSkipped Outcome = "sync_skipped"
)

// Report summarizes one reconciliation pass for callers and logs.
type Report struct {
	UserID  string     `json:"user_id"`
	Outcome Outcome    `json:"outcome"`
	Reason  string     `json:"reason,omitempty"`
	Stats   MergeStats `json:"stats"`
	Retried bool       `json:"retried"`
}
